package handler

import (
	"log"
	"net/http"

	"github.com/evjobsch/backend/internal/realtime"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all origins for now
		},
	}
}

// streamView upgrades the request to a WebSocket and forwards full
// ordered snapshots of a live view until the client disconnects. The
// view is unsubscribed when the handler returns.
func streamView[T any](c *gin.Context, upgrader websocket.Upgrader, bus realtime.Bus, q realtime.Query, fetch realtime.FetchFunc[T]) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	view, unsubscribe, err := realtime.Open(c.Request.Context(), bus, q, fetch)
	if err != nil {
		log.Printf("Failed to open live view %s/%s: %v", q.Collection, q.Scope, err)
		return
	}
	defer unsubscribe()

	// Handle disconnect properly
	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				// Client disconnected or error
				return
			}
		}
	}()

	for {
		select {
		case snapshot, ok := <-view.Updates():
			if !ok {
				return
			}
			if err := conn.WriteJSON(snapshot); err != nil {
				log.Printf("Failed to write snapshot to websocket: %v", err)
				return
			}
		case <-clientClosed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
