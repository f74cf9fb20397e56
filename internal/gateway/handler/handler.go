// Package handler implements the JSON HTTP boundary the design plugin
// talks to: generation, the OAuth dance, and export.
package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"designify/internal/authflow"
	"designify/internal/export"
	"designify/internal/pipeline"
)

// RepoWriterFactory builds an authenticated hosting-provider client for
// one export request's credential.
type RepoWriterFactory func(token string) export.RepoWriter

type Handler struct {
	pipeline *pipeline.Pipeline
	flow     *authflow.Flow
	exporter *export.Exporter
	writers  RepoWriterFactory
	progress *ProgressHub
	log      *zap.Logger
}

func New(p *pipeline.Pipeline, flow *authflow.Flow, exporter *export.Exporter, writers RepoWriterFactory, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		pipeline: p,
		flow:     flow,
		exporter: exporter,
		writers:  writers,
		progress: NewProgressHub(),
		log:      log,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}
