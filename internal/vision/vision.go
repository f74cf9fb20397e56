// Package vision wraps the generative-AI capability the pipeline
// consumes: describing a design image and generating project content
// from the description.
package vision

import (
	"context"
	"errors"

	"designify/internal/projecttree"
)

var (
	ErrDescriptionFailed = errors.New("vision: image description failed")
	ErrGenerationFailed  = errors.New("vision: project generation failed")
)

// Client is the consumed AI surface. Implementations must validate the
// generation output for top-level shape only; file contents are trusted
// verbatim.
type Client interface {
	DescribeImage(ctx context.Context, image []byte, mimeType string) (string, error)
	GenerateProject(ctx context.Context, description string) (projecttree.Payload, error)
}
