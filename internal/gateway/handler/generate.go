package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"designify/internal/pipeline"
)

type uploadRequest struct {
	ImageURL string `json:"imageUrl"`
}

// HandleUpload turns a design image URL into the current project.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		writeError(w, http.StatusBadRequest, "imageUrl is required")
		return
	}

	project, err := h.pipeline.GenerateFromURL(r.Context(), req.ImageURL)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrInvalidImageURL):
			writeError(w, http.StatusBadRequest, "imageUrl must be an absolute http(s) URL")
		case errors.Is(err, pipeline.ErrPayloadTooLarge):
			writeError(w, http.StatusBadRequest, "image exceeds the maximum allowed size")
		case errors.Is(err, pipeline.ErrFetchFailed):
			writeError(w, http.StatusBadGateway, "could not fetch the image")
		default:
			h.log.Error("generation failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "generation failed, please try again")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"projectId": project.ID,
		"project":   project.Tree,
	})
}

// HandleProject returns the most recently generated project.
func (h *Handler) HandleProject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	project, ok := h.pipeline.Current()
	if !ok {
		writeError(w, http.StatusNotFound, "no project has been generated yet")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"projectId": project.ID,
		"app":       project.Tree,
	})
}
