package server

import (
	"net/http"

	"go.uber.org/zap"

	"designify/internal/gateway/handler"
	"designify/internal/gateway/middleware"
)

// NewMux wires every route behind the CORS and request-log middleware.
func NewMux(h *handler.Handler, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/upload", h.HandleUpload)
	mux.HandleFunc("/api/project", h.HandleProject)
	mux.HandleFunc("/api/github/auth", h.HandleAuthStart)
	mux.HandleFunc("/api/github/auth/status", h.HandleAuthStatus)
	mux.HandleFunc("/api/github/callback", h.HandleCallback)
	mux.HandleFunc("/api/github/export", h.HandleExport)
	mux.HandleFunc("/api/github/export/ws", h.HandleExportWS)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return middleware.CORS(middleware.RequestLog(log, mux))
}
