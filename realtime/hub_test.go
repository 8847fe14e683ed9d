package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"boxcric/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server, groundID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/grounds/" + groundID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_BroadcastsToGroundRoomOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(nil, nil)
	r := gin.New()
	r.GET("/ws/grounds/:id", hub.HandleGround)
	srv := httptest.NewServer(r)
	defer srv.Close()
	defer hub.Close()

	watcher := dial(t, srv, "g1")
	other := dial(t, srv, "g2")
	require.Eventually(t, func() bool {
		return hub.RoomSize("ground-g1") == 1 && hub.RoomSize("ground-g2") == 1
	}, 2*time.Second, 10*time.Millisecond)

	b := models.Booking{
		ID:          "b1",
		GroundID:    "g1",
		UserID:      "u1",
		BookingDate: "2024-06-01",
		TimeSlot:    models.TimeSlot{StartTime: "14:00", EndTime: "15:00"},
		Status:      models.BookingConfirmed,
		DeviceToken: "secret",
		Payment:     models.BookingPayment{OrderID: "cs_123"},
		Pricing:     models.BookingPricing{TotalAmount: 1000},
	}
	require.NoError(t, hub.BookingChanged(context.Background(), b))

	require.NoError(t, watcher.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := watcher.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Type    string                 `json:"type"`
		Booking map[string]interface{} `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, EventBookingUpdated, event.Type)
	assert.Equal(t, map[string]interface{}{
		"groundId":    "g1",
		"bookingDate": "2024-06-01",
		"timeSlot":    map[string]interface{}{"startTime": "14:00", "endTime": "15:00"},
		"status":      "confirmed",
	}, event.Booking)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err)
}

func TestHub_LeavesRoomOnDisconnect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub([]string{"https://boxcric.test"}, nil)
	r := gin.New()
	r.GET("/ws/grounds/:id", hub.HandleGround)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dial(t, srv, "g1")
	require.Eventually(t, func() bool { return hub.RoomSize("ground-g1") == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.RoomSize("ground-g1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub([]string{"https://boxcric.test"}, nil)
	r := gin.New()
	r.GET("/ws/grounds/:id", hub.HandleGround)
	srv := httptest.NewServer(r)
	defer srv.Close()

	header := map[string][]string{"Origin": {"https://evil.test"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/grounds/g1", header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestHub_BroadcastDropsClientWithFullQueue(t *testing.T) {
	hub := NewHub(nil, nil)
	// No write pump drains this queue.
	stalled := &client{send: make(chan []byte, 1)}
	hub.join("ground-g1", stalled)

	require.NoError(t, hub.Broadcast("ground-g1", SlotEvent{Type: EventBookingUpdated}))
	assert.Equal(t, 1, hub.RoomSize("ground-g1"))

	require.NoError(t, hub.Broadcast("ground-g1", SlotEvent{Type: EventBookingUpdated}))
	assert.Equal(t, 0, hub.RoomSize("ground-g1"))

	_, ok := <-stalled.send
	assert.True(t, ok, "queued message is kept")
	_, ok = <-stalled.send
	assert.False(t, ok, "queue is closed after the drop")
}
