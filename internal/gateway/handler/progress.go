package handler

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"designify/internal/export"
)

// ProgressHub fans export events out to websocket subscribers keyed by
// export id. Publishing never blocks the export walk: a subscriber that
// falls behind is dropped.
type ProgressHub struct {
	mu   sync.Mutex
	subs map[string]map[chan export.Event]struct{}
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{subs: make(map[string]map[chan export.Event]struct{})}
}

// Subscribe registers a listener for one export id. The returned cancel
// func must be called when the listener goes away.
func (h *ProgressHub) Subscribe(exportID string) (<-chan export.Event, func()) {
	ch := make(chan export.Event, 64)
	h.mu.Lock()
	if h.subs[exportID] == nil {
		h.subs[exportID] = make(map[chan export.Event]struct{})
	}
	h.subs[exportID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[exportID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, exportID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of its export id. Events
// without an id have no audience and are dropped.
func (h *ProgressHub) Publish(ev export.Event) {
	if ev.ExportID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[ev.ExportID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// HandleExportWS streams progress events for one export id until the
// export finishes or the client disconnects.
func (h *Handler) HandleExportWS(w http.ResponseWriter, r *http.Request) {
	exportID := r.URL.Query().Get("exportId")
	if exportID == "" {
		writeError(w, http.StatusBadRequest, "exportId is required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	events, cancel := h.progress.Subscribe(exportID)
	defer cancel()

	// Reads only surface client disconnects; no inbound messages are
	// expected.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev := <-events:
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
			if ev.Stage == "done" || ev.Stage == "failed" {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
