package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	genai "google.golang.org/genai"

	"designify/internal/projecttree"
)

const defaultModel = "gemini-2.5-flash"

const describePrompt = `You are a UI analyst. Describe the attached design mockup in enough
detail that a frontend developer could rebuild it without seeing the image:
layout structure, navigation, sections, typography, color palette,
interactive elements, and spacing. Answer in plain text.`

const generatePrompt = `You are a React developer. From the UI description below, produce a
complete Vite + React implementation. Respond with a single JSON object
with exactly three keys:
  "components": filenames (e.g. "Nav.jsx") mapped to full file contents,
  "styles": CSS filenames mapped to full file contents,
  "pages": entry files (must include "main.jsx") mapped to full file contents.
Every value must be the complete text of the file. Do not include any key
other than those three.`

// GeminiClient implements the AI capability on the official genai
// client. It focuses on the API calls; caching is layered on top.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient builds a client. The genai SDK reads GEMINI_API_KEY
// from the environment when no key is configured explicitly.
func NewGeminiClient(ctx context.Context, model string) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

// DescribeImage turns a design image into a textual description.
func (g *GeminiClient) DescribeImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/png"
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{
			{Text: describePrompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
		}}},
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDescriptionFailed, err)
	}
	text := firstText(resp)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty model response", ErrDescriptionFailed)
	}
	return text, nil
}

// GenerateProject asks for JSON constrained to the three-section schema
// and parses it into a merge payload.
func (g *GeminiClient) GenerateProject(ctx context.Context, description string) (projecttree.Payload, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{
			{Text: generatePrompt + "\n\n[UI DESCRIPTION]\n" + description},
		}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return projecttree.Payload{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	text := firstText(resp)
	if strings.TrimSpace(text) == "" {
		return projecttree.Payload{}, fmt.Errorf("%w: empty model response", ErrGenerationFailed)
	}
	payload, err := parsePayload(json.RawMessage(text))
	if err != nil {
		return projecttree.Payload{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return payload, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return ""
	}
	return content.Parts[0].Text
}
