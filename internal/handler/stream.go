package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"fleetops/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards connect from other origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamHandler pushes live tracking events over a WebSocket.
type StreamHandler struct {
	broker *service.AlertBroker
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(broker *service.AlertBroker) *StreamHandler {
	return &StreamHandler{broker: broker}
}

// StreamEvent is one message pushed to a WebSocket client.
type StreamEvent struct {
	Type     string                 `json:"type"` // ALERT or POSITION
	Alert    *AlertResponse         `json:"alert,omitempty"`
	Position *TrackingPointResponse `json:"position,omitempty"`
}

// Stream handles GET /v1/tracking/stream. Each connection gets its own
// broker subscription; a connection that stops reading is dropped rather
// than allowed to back up the feed.
func (h *StreamHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[STREAM] websocket upgrade failed: %v", err)
		return
	}

	subID := uuid.New().String()
	events := h.broker.Subscribe(subID)
	defer h.broker.Unsubscribe(subID)
	defer conn.Close()

	// Drain client frames so close messages are processed.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-readerDone:
			return
		case <-c.Request.Context().Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(streamEvent(evt)); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func streamEvent(evt service.Event) StreamEvent {
	out := StreamEvent{Type: string(evt.Type)}
	if evt.Alert != nil {
		a := alertResponse(evt.Alert)
		out.Alert = &a
	}
	if evt.Point != nil {
		p := trackingPointResponse(*evt.Point)
		out.Position = &p
	}
	return out
}
