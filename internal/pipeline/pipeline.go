// Package pipeline turns an image reference into the current project
// state: fetch, describe, generate, merge.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"designify/internal/projecttree"
	"designify/internal/snapshot"
	"designify/internal/vision"
)

// DefaultMaxImageBytes is the fixed ceiling on fetched design images.
const DefaultMaxImageBytes = 10 << 20 // 10MB

var (
	ErrInvalidImageURL  = errors.New("pipeline: image url is missing or malformed")
	ErrPayloadTooLarge  = errors.New("pipeline: image exceeds the size ceiling")
	ErrFetchFailed      = errors.New("pipeline: image source is unreachable")
	ErrGenerationFailed = errors.New("pipeline: generation failed")
)

// Project is the current in-memory project state.
type Project struct {
	ID          string            `json:"projectId"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Tree        *projecttree.Tree `json:"tree"`
}

// Pipeline orchestrates the external AI capability and owns the single
// process-wide current project. The project is re-derivable by
// regenerating; it does not survive a restart.
type Pipeline struct {
	http      *http.Client
	vision    vision.Client
	snapshots snapshot.Store // optional
	log       *zap.Logger
	maxBytes  int64

	mu      sync.RWMutex
	current *Project
}

type Config struct {
	Vision        vision.Client
	Snapshots     snapshot.Store
	Logger        *zap.Logger
	MaxImageBytes int64
	HTTPClient    *http.Client
}

func New(cfg Config) *Pipeline {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Image fetches are quick compared to generation; keep a tighter bound.
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	maxBytes := cfg.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		http:      httpClient,
		vision:    cfg.Vision,
		snapshots: cfg.Snapshots,
		log:       logger,
		maxBytes:  maxBytes,
	}
}

// GenerateFromURL fetches the design image, runs the describe and
// generate capabilities, and merges the result into a fresh skeleton.
// The merged tree replaces the current project state. Partial AI output
// is never accepted: any capability failure aborts the whole generation.
func (p *Pipeline) GenerateFromURL(ctx context.Context, imageURL string) (*Project, error) {
	image, mimeType, err := p.fetchImage(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	description, err := p.vision.DescribeImage(ctx, image, mimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	payload, err := p.vision.GenerateProject(ctx, description)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	tree := projecttree.New()
	tree.Merge(payload)

	project := &Project{
		ID:          "project-" + uuid.NewString(),
		GeneratedAt: time.Now(),
		Tree:        tree,
	}
	p.mu.Lock()
	p.current = project
	p.mu.Unlock()

	p.log.Info("project generated",
		zap.String("project_id", project.ID),
		zap.Int("files", tree.FileCount()))

	if p.snapshots != nil {
		if err := snapshot.SaveTree(ctx, p.snapshots, project.ID, tree); err != nil {
			p.log.Warn("snapshot failed", zap.String("project_id", project.ID), zap.Error(err))
		}
	}
	return project, nil
}

// Current returns the current project, if one has been generated.
func (p *Pipeline) Current() (*Project, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return nil, false
	}
	return p.current, true
}

func (p *Pipeline) fetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	parsed, err := url.Parse(strings.TrimSpace(imageURL))
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, "", ErrInvalidImageURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, "", ErrInvalidImageURL
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}
	if resp.ContentLength > p.maxBytes {
		return nil, "", ErrPayloadTooLarge
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if int64(len(body)) > p.maxBytes {
		return nil, "", ErrPayloadTooLarge
	}

	mimeType := strings.TrimSpace(resp.Header.Get("Content-Type"))
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(body)
	}
	if idx := strings.IndexByte(mimeType, ';'); idx > 0 {
		mimeType = mimeType[:idx]
	}
	return body, mimeType, nil
}
