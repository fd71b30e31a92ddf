package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// watchPollInterval is how often the watcher re-reads topic state.
const watchPollInterval = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Identity comes from the internal token, not the Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWatch streams per-topic status snapshots for an analysis until every
// topic has settled or the client goes away. Each message is the same Summary
// shape the identify endpoint returns.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	analysisID := chi.URLParam(r, "analysisID")
	userID := UserID(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Reader loop just surfaces client disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(watchPollInterval)
	defer ticker.Stop()

	for {
		summary, err := s.research.AnalysisSummary(r.Context(), userID, analysisID)
		if err != nil {
			s.logger.Warn("watch read failed", "analysis", analysisID, "error", err)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "read failed"),
				time.Now().Add(time.Second))
			return
		}

		if err := conn.WriteJSON(summary); err != nil {
			return
		}

		settled := len(summary.Topics) > 0
		for _, t := range summary.Topics {
			if t.IsLoading {
				settled = false
				break
			}
		}
		if settled {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "all topics settled"),
				time.Now().Add(time.Second))
			return
		}

		select {
		case <-ticker.C:
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
