package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"designify/internal/authflow"
	"designify/internal/session"
)

// HandleAuthStart opens a new authorization attempt and hands back the
// URL the user's browser should visit plus the state token to poll with.
func (h *Handler) HandleAuthStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	authURL, state, err := h.flow.Initiate()
	if err != nil {
		if errors.Is(err, authflow.ErrNotConfigured) {
			writeError(w, http.StatusInternalServerError, "GitHub integration is not configured")
			return
		}
		h.log.Error("auth initiate failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not start authorization")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"authUrl": authURL,
		"state":   state,
	})
}

const callbackSuccessPage = `<!DOCTYPE html>
<html>
<head><title>GitHub Connected</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4rem;">
<h1>GitHub connected</h1>
<p>Authorization succeeded. You can close this tab and return to the plugin.</p>
</body>
</html>`

const callbackFailurePage = `<!DOCTYPE html>
<html>
<head><title>Authorization Failed</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4rem;">
<h1>Authorization failed</h1>
<p>%s</p>
</body>
</html>`

// HandleCallback is the browser-facing leg of the OAuth dance; it
// renders a human-readable page rather than JSON.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		writeHTML(w, http.StatusBadRequest, "The callback is missing its code or state parameter.")
		return
	}

	if err := h.flow.CompleteCallback(r.Context(), code, state); err != nil {
		if errors.Is(err, authflow.ErrInvalidCallback) {
			writeHTML(w, http.StatusBadRequest, "This authorization link is not recognized. Start over from the plugin.")
			return
		}
		h.log.Warn("callback exchange failed", zap.Error(err))
		writeHTML(w, http.StatusBadGateway, "GitHub did not accept the authorization code. You can retry from the plugin.")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(callbackSuccessPage))
}

func writeHTML(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, callbackFailurePage, message)
}

type authStatusRequest struct {
	State string `json:"state"`
}

// HandleAuthStatus reports whether the attempt named by state has been
// granted a credential yet.
func (h *Handler) HandleAuthStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req authStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.State) == "" {
		writeError(w, http.StatusBadRequest, "state is required")
		return
	}

	status, err := h.flow.PollStatus(req.State)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrExpired):
			writeError(w, http.StatusGone, "authorization attempt expired, start over")
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, "unknown authorization attempt")
		default:
			h.log.Error("auth status failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not check authorization status")
		}
		return
	}

	body := map[string]any{"authenticated": status.Authenticated}
	if status.Authenticated {
		body["token"] = status.Token
	}
	writeJSON(w, http.StatusOK, body)
}
