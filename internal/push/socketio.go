package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"motor_dashboard/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	handshakeTimeout    = 10 * time.Second
	writeWait           = 10 * time.Second
	defaultReadDeadline = 60 * time.Second
	maxFrameSize        = 1 << 16 // 64 KB
)

// ErrClosed is returned by Run on a channel that was already closed.
var ErrClosed = errors.New("push: channel closed")

// SocketIOChannel is a Socket.IO client over a plain websocket transport.
type SocketIOChannel struct {
	emitter

	url    string
	header http.Header
	log    *logger.Logger

	mu     sync.Mutex // guards conn, closed and writes
	conn   *websocket.Conn
	closed bool
}

// NewSocketIO returns an unconnected channel for a ws:// or wss:// Socket.IO
// endpoint (see config.SocketIOURL).
func NewSocketIO(url string, header http.Header, log *logger.Logger) *SocketIOChannel {
	if log == nil {
		log = logger.Nop()
	}
	return &SocketIOChannel{url: url, header: header, log: log}
}

// Run performs the Engine.IO handshake, joins the default namespace and
// dispatches events until the connection ends.
func (c *SocketIOChannel) Run(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.url, c.header)
	if err != nil {
		return fmt.Errorf("dial push channel: %w", err)
	}
	conn.SetReadLimit(maxFrameSize)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return ErrClosed
	}
	c.conn = conn
	c.mu.Unlock()

	// Unblock the read loop on cancellation.
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	err = c.readLoop(conn)
	if ctx.Err() != nil || c.isClosed() {
		return nil
	}
	return err
}

func (c *SocketIOChannel) readLoop(conn *websocket.Conn) error {
	_ = conn.SetReadDeadline(time.Now().Add(defaultReadDeadline))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read open packet: %w", err)
	}
	open, err := parseOpen(frame)
	if err != nil {
		return err
	}
	deadline := open.readDeadline()
	c.log.Debugw("push_open", "sid", open.SID, "read_deadline", deadline)

	if err := c.write([]byte{eioMessage, sioConnect}); err != nil {
		return fmt.Errorf("join namespace: %w", err)
	}

	for {
		_ = conn.SetReadDeadline(time.Now().Add(deadline))
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read push channel: %w", err)
		}
		if len(frame) == 0 {
			c.log.Debugw("push_frame_skipped", "err", errEmptyPacket)
			continue
		}

		switch frame[0] {
		case eioPing:
			if err := c.write([]byte{eioPong}); err != nil {
				return fmt.Errorf("write pong: %w", err)
			}
		case eioClose:
			return errors.New("push channel closed by server")
		case eioNoop, eioPong:
		case eioMessage:
			if err := c.handleMessage(frame); err != nil {
				return err
			}
		default:
			c.log.Debugw("push_frame_skipped", "frame", truncate(frame))
		}
	}
}

func (c *SocketIOChannel) handleMessage(frame []byte) error {
	if len(frame) < 2 {
		return nil
	}
	switch frame[1] {
	case sioConnect:
		c.log.Debugw("push_namespace_joined")
	case sioDisconnect:
		return errors.New("push channel: disconnected from namespace")
	case sioConnectError:
		return fmt.Errorf("push channel: connect refused: %s", truncate(frame[2:]))
	case sioEvent:
		name, payload, err := decodeEvent(frame)
		if err != nil {
			c.log.Warnw("push_event_malformed", "err", err)
			return nil
		}
		c.emit(name, payload)
	}
	return nil
}

func (c *SocketIOChannel) write(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.closed {
		return ErrClosed
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *SocketIOChannel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close leaves the namespace and closes the socket. Safe to call repeatedly.
func (c *SocketIOChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.conn == nil {
		return nil
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.TextMessage, []byte{eioMessage, sioDisconnect})
	return c.conn.Close()
}
