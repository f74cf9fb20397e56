package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"designify/internal/export"
	"designify/internal/github"
	"designify/internal/projecttree"
)

type exportRequest struct {
	Token       string            `json:"token"`
	RepoName    string            `json:"repoName"`
	Description string            `json:"description"`
	ExportID    string            `json:"exportId"`
	ProjectData *projecttree.Tree `json:"projectData"`
}

// HandleExport pushes a project tree into a freshly created repository
// under the caller's account. The tree travels with the request when the
// plugin holds local edits; otherwise the current generated project is
// exported.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	if strings.TrimSpace(req.RepoName) == "" {
		writeError(w, http.StatusBadRequest, "repoName is required")
		return
	}

	tree := req.ProjectData
	if tree == nil {
		if current, ok := h.pipeline.Current(); ok {
			tree = current.Tree
		}
	}
	if tree == nil {
		writeError(w, http.StatusBadRequest, "no project data to export")
		return
	}
	if err := tree.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed project tree: "+err.Error())
		return
	}

	result, err := h.exporter.Export(r.Context(), h.writers(req.Token), export.Request{
		RepoName:    req.RepoName,
		Description: req.Description,
		Tree:        tree,
		ExportID:    req.ExportID,
		Progress:    h.progress.Publish,
	})
	if err != nil {
		var writeErr *export.FileWriteError
		switch {
		case errors.Is(err, github.ErrAuthExpired):
			writeError(w, http.StatusUnauthorized, "GitHub authorization expired, re-authenticate and retry")
		case errors.Is(err, github.ErrNameConflict):
			writeError(w, http.StatusConflict, "a repository with that name already exists")
		case errors.As(err, &writeErr):
			h.log.Error("export aborted", zap.String("path", writeErr.Path), zap.Error(err))
			writeError(w, http.StatusBadGateway, "export failed while writing "+writeErr.Path+"; the repository may be partially populated, retrying will resume")
		default:
			h.log.Error("export failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "export failed: "+err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"repoUrl": result.RepoURL,
		"owner":   result.Owner,
		"files":   result.FilesWritten,
	})
}
