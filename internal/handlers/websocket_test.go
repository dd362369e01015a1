package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	md "motor_dashboard"
	"motor_dashboard/internal/service"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialLive(t *testing.T, srv *httptest.Server, path string, header http.Header) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u, header)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	return conn
}

func TestDeviceLive_RelaysOwnMotorReadings(t *testing.T) {
	ch := newMockChannel(
		`{"motor_id":9,"temperature_celsius":90,"vibration_mm_s":1,"sound_db":50,"timestamp":"2024-01-01 09:59:00"}`,
		`{"motor_id":3,"temperature_celsius":81,"vibration_mm_s":2.1,"sound_db":55,"timestamp":"2024-01-01 10:00:00"}`,
	)
	s := &service.Service{Devices: &mockDevices{api: &mockDetailAPI{}, ch: ch}}
	srv := httptest.NewServer(newTestRouter(s))
	defer srv.Close()

	conn := dialLive(t, srv, "/device/3/live", http.Header{"Cookie": {"session=abc"}})
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	if env.Type != "reading" {
		t.Fatalf("bad envelope: %+v", env)
	}
	var v service.ReadingView
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("unmarshal reading: %v", err)
	}
	if v.MotorID != 3 || v.Status != md.StatusCritical || v.BadgeClass != "status-badge Critical" || v.Timestamp != "10:00:00" {
		t.Fatalf("unexpected reading: %+v", v)
	}
	if got := ch.sessionHeader().Get("Cookie"); got != "session=abc" {
		t.Fatalf("session not forwarded to live channel: %q", got)
	}

	// Closing the browser socket must close the upstream channel.
	_ = conn.Close()
	if !ch.waitClosed(2 * time.Second) {
		t.Fatalf("upstream channel left open")
	}
}

func TestDeviceLive_UpstreamFailure(t *testing.T) {
	ch := newMockChannel()
	ch.runErr = errors.New("dial refused")
	s := &service.Service{Devices: &mockDevices{api: &mockDetailAPI{}, ch: ch}}
	srv := httptest.NewServer(newTestRouter(s))
	defer srv.Close()

	conn := dialLive(t, srv, "/device/3/live", nil)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	if env.Type != "error" || env.Error != errLiveUnavailable {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	// The server closes the socket afterwards.
	if err := conn.ReadJSON(&env); err == nil {
		t.Fatalf("expected closed connection, got %+v", env)
	}
}

func TestDeviceLive_MissingMotorID(t *testing.T) {
	s := &service.Service{Devices: &mockDevices{api: &mockDetailAPI{}, ch: newMockChannel()}}
	srv := httptest.NewServer(newTestRouter(s))
	defer srv.Close()

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/device/0/live"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 response, got %+v", resp)
	}
}

func TestCheckOrigin(t *testing.T) {
	h := NewHandler(&service.Service{}, nil, WithAllowedOrigins("http://localhost:5173"))

	cases := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://dash.local", true},
		{"http://localhost:5173", true},
		{"http://evil.example", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "http://dash.local/device/1/live", nil)
		if tc.origin != "" {
			req.Header.Set("Origin", tc.origin)
		}
		if got := h.checkOrigin(req); got != tc.want {
			t.Fatalf("origin %q: got %v, want %v", tc.origin, got, tc.want)
		}
	}
}
