// Package realtime pushes booking changes to websocket clients watching a
// ground. Clients join the room of one ground and receive every booking
// update for it.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"boxcric/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	EventBookingUpdated = "booking-updated"
	writeWait           = 5 * time.Second
	sendBuffer          = 16
)

// RoomFor names the room of a ground.
func RoomFor(groundID string) string {
	return "ground-" + groundID
}

// SlotUpdate is the public view of a booking change. Rooms are open to
// anyone, so it carries only what a slot grid needs.
type SlotUpdate struct {
	GroundID    string               `json:"groundId"`
	BookingDate string               `json:"bookingDate"`
	TimeSlot    models.TimeSlot      `json:"timeSlot"`
	Status      models.BookingStatus `json:"status"`
}

type SlotEvent struct {
	Type    string     `json:"type"`
	Booking SlotUpdate `json:"booking"`
}

// client is one websocket connection. Only its write pump writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu    sync.Mutex
	rooms map[string]map[*client]struct{}
}

// NewHub accepts upgrades from the given origins. Requests without an Origin
// header (non-browser clients) are always accepted.
func NewHub(allowedOrigins []string, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
		logger: logger,
		rooms:  make(map[string]map[*client]struct{}),
	}
}

// HandleGround upgrades the request and joins the room of the :id ground
// until the client disconnects.
func (h *Hub) HandleGround(c *gin.Context) {
	room := RoomFor(c.Param("id"))
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.String("room", room), zap.Error(err))
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.join(room, cl)
	go cl.writePump()
	defer h.leave(room, cl)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump drains send until it is closed or a write fails, then closes
// the connection, which also ends the read loop.
func (cl *client) writePump() {
	defer cl.conn.Close()
	for msg := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) join(room string, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*client]struct{})
	}
	h.rooms[room][cl] = struct{}{}
	h.logger.Debug("Client joined room", zap.String("room", room), zap.Int("members", len(h.rooms[room])))
}

func (h *Hub) leave(room string, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(room, cl)
}

// drop removes cl and closes its queue. Callers hold h.mu.
func (h *Hub) drop(room string, cl *client) {
	if _, ok := h.rooms[room][cl]; !ok {
		return
	}
	delete(h.rooms[room], cl)
	close(cl.send)
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
}

// RoomSize returns the number of connected clients in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

// Broadcast queues v as JSON for every client in room without waiting on
// the network. Clients whose queue is full are dropped.
func (h *Hub) Broadcast(room string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.rooms[room] {
		select {
		case cl.send <- payload:
		default:
			h.logger.Warn("Dropping slow websocket client", zap.String("room", room))
			h.drop(room, cl)
		}
	}
	return nil
}

// BookingChanged announces a booking's slot to its ground's room.
func (h *Hub) BookingChanged(_ context.Context, b models.Booking) error {
	return h.Broadcast(RoomFor(b.GroundID), SlotEvent{
		Type: EventBookingUpdated,
		Booking: SlotUpdate{
			GroundID:    b.GroundID,
			BookingDate: b.BookingDate,
			TimeSlot:    b.TimeSlot,
			Status:      b.Status,
		},
	})
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, clients := range h.rooms {
		for cl := range clients {
			h.drop(room, cl)
		}
	}
}
