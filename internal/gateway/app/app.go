// Package app assembles the service: config, logging, the generation
// pipeline, the OAuth flow, and the export path, all behind one server.
package app

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"designify/internal/authflow"
	"designify/internal/export"
	"designify/internal/gateway/config"
	"designify/internal/gateway/handler"
	"designify/internal/gateway/server"
	"designify/internal/github"
	"designify/internal/logging"
	"designify/internal/pipeline"
	"designify/internal/session"
	"designify/internal/snapshot"
	"designify/internal/vision"
)

// descriptionCacheSize bounds the describe-capability memo. Entries are
// small (one paragraph per image hash).
const descriptionCacheSize = 128

type App struct {
	server *server.Server
	log    *zap.Logger
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	visionClient, err := buildVision(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	snapshots := buildSnapshots(cfg, log)

	pipe := pipeline.New(pipeline.Config{
		Vision:        visionClient,
		Snapshots:     snapshots,
		Logger:        log,
		MaxImageBytes: cfg.Limits.MaxImageBytes,
	})

	sessions := session.NewStore(cfg.Limits.SessionTTL)
	oauth := github.NewOAuthApp(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret)
	if !oauth.Configured() {
		log.Warn("github oauth app is not configured; auth and export will be unavailable")
	}
	flow := authflow.New(sessions, oauth, cfg.GitHub.RedirectURL)

	exporter := export.New(cfg.Limits.ExportFileDelay)
	writers := func(token string) export.RepoWriter { return github.NewClient(token) }

	h := handler.New(pipe, flow, exporter, writers, log)
	srv := server.New(cfg.Port, server.NewMux(h, log), log)

	return &App{server: srv, log: log}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	defer func() { _ = a.log.Sync() }()
	return a.server.Shutdown(ctx)
}

// buildVision picks the AI backend. A real Gemini client needs an API
// key in the environment; VISION_FAKE=1 swaps in the deterministic fake
// for offline development.
func buildVision(ctx context.Context, cfg *config.Config, log *zap.Logger) (vision.Client, error) {
	if fake, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("VISION_FAKE"))); fake {
		log.Warn("using fake vision client; generated projects are canned")
		return vision.NewFakeClient(), nil
	}
	gemini, err := vision.NewGeminiClient(ctx, cfg.Gemini.Model)
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	cached, err := vision.NewCachedClient(gemini, descriptionCacheSize)
	if err != nil {
		return nil, fmt.Errorf("init description cache: %w", err)
	}
	return cached, nil
}

// buildSnapshots returns nil when no object-store endpoint is
// configured; the pipeline treats a nil store as snapshots-off.
func buildSnapshots(cfg *config.Config, log *zap.Logger) snapshot.Store {
	if !cfg.Snapshot.Enabled {
		return nil
	}
	store, err := snapshot.NewS3Store(snapshot.S3Config{
		Endpoint:  cfg.Snapshot.Endpoint,
		Region:    cfg.Snapshot.Region,
		AccessKey: cfg.Snapshot.AccessKey,
		SecretKey: cfg.Snapshot.SecretKey,
		Bucket:    cfg.Snapshot.Bucket,
		UseSSL:    cfg.Snapshot.UseSSL,
	})
	if err != nil {
		log.Warn("snapshot store unavailable, continuing without snapshots", zap.Error(err))
		return nil
	}
	log.Info("snapshot store enabled",
		zap.String("endpoint", cfg.Snapshot.Endpoint),
		zap.String("bucket", cfg.Snapshot.Bucket))
	return store
}
