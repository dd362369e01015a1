package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// fakeSocketIOServer performs the Engine.IO handshake, checks the namespace
// join and ping/pong, then sends frames and waits for the client to leave.
func fakeSocketIOServer(t *testing.T, frames []string, gotCookie chan<- string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotCookie != nil {
			gotCookie <- r.Header.Get("Cookie")
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		_ = conn.WriteMessage(websocket.TextMessage, []byte(`0{"sid":"s1","pingInterval":1000,"pingTimeout":1000}`))
		_, msg, err := conn.ReadMessage()
		if err != nil || string(msg) != "40" {
			t.Errorf("expected namespace join, got %q (%v)", msg, err)
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`40{"sid":"n1"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`2`))
		_, msg, err = conn.ReadMessage()
		if err != nil || string(msg) != "3" {
			t.Errorf("expected pong, got %q (%v)", msg, err)
			return
		}
		for _, f := range frames {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(f))
		}
		// Drain until the client disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/socket.io/?EIO=4&transport=websocket"
}

func TestSocketIOChannel_DeliversEventsInOrder(t *testing.T) {
	t.Parallel()

	cookies := make(chan string, 1)
	srv := fakeSocketIOServer(t, []string{
		`42["new_reading",{"motor_id":1,"seq":1}]`,
		`42["other_event",{"motor_id":1}]`,
		`6`,
		`42["new_reading",{"motor_id":2,"seq":2}]`,
	}, cookies)
	defer srv.Close()

	header := http.Header{}
	header.Set("Cookie", "session=abc")
	ch := NewSocketIO(wsURL(srv), header, nil)

	var (
		mu   sync.Mutex
		seqs []int
	)
	got := make(chan struct{})
	ch.On(EventNewReading, func(p json.RawMessage) {
		var v struct{ Seq int }
		_ = json.Unmarshal(p, &v)
		mu.Lock()
		seqs = append(seqs, v.Seq)
		n := len(seqs)
		mu.Unlock()
		if n == 2 {
			close(got)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- ch.Run(ctx) }()

	select {
	case <-got:
	case <-ctx.Done():
		t.Fatalf("timed out waiting for events")
	}
	if c := <-cookies; c != "session=abc" {
		t.Fatalf("cookie not forwarded on dial: %q", c)
	}

	if err := ch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("Run after Close returned %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seqs) != 2 || seqs[0] != 1 || seqs[1] != 2 {
		t.Fatalf("events out of order or missing: %v", seqs)
	}
}

func TestSocketIOChannel_CancelStopsRun(t *testing.T) {
	t.Parallel()

	srv := fakeSocketIOServer(t, nil, nil)
	defer srv.Close()

	ch := NewSocketIO(wsURL(srv), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- ch.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run after cancel returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestSocketIOChannel_DialFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ch := NewSocketIO(wsURL(srv), nil, nil)
	if err := ch.Run(context.Background()); err == nil {
		t.Fatalf("expected dial error against a non-websocket endpoint")
	}
}

func TestSocketIOChannel_RunAfterClose(t *testing.T) {
	t.Parallel()

	srv := fakeSocketIOServer(t, nil, nil)
	defer srv.Close()

	ch := NewSocketIO(wsURL(srv), nil, nil)
	_ = ch.Close()
	if err := ch.Run(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
