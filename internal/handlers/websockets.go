package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"motor_dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB
)

const (
	msgTypeReading = "reading"
	msgTypeError   = "error"

	errLiveUnavailable = "live updates unavailable"
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// wsConn serializes writes from the relay and the pinger.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) writeJSON(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteJSON(v)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(websocket.PingMessage, nil)
}

// deviceLive relays the page motor's live readings to the browser. The
// upstream channel lives exactly as long as the browser socket.
func (h *Handler) deviceLive(c *gin.Context) {
	motorID, _ := strconv.Atoi(c.Param("id"))
	dev, err := h.services.Devices.Open(motorID)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	ws := &wsConn{conn: conn}
	go h.keepAlive(ctx, cancel, ws, done)

	err = dev.Watch(ctx, func(v service.ReadingView) error {
		return ws.writeJSON(wsEnvelope{Type: msgTypeReading, Data: v})
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		h.log.Warnw("live_relay_stopped", "motor_id", dev.MotorID(), "err", err)
		_ = ws.writeJSON(wsEnvelope{Type: msgTypeError, Error: errLiveUnavailable})
	}
}

// keepAlive pings the browser and cancels the relay once the browser is gone.
func (h *Handler) keepAlive(ctx context.Context, cancel context.CancelFunc, ws *wsConn, done <-chan struct{}) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			cancel()
			return
		case <-ping.C:
			if err := ws.ping(); err != nil {
				h.log.Infow("ws_ping_failed", "err", err)
				cancel()
				return
			}
		}
	}
}

// Helper: startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.log.Infow("ws_read_closed", "err", err)
			return
		}
	}
}
