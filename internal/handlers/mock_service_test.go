package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	md "motor_dashboard"
	"motor_dashboard/internal/push"
	"motor_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockZones struct {
	view  service.ZoneListView
	calls int
}

func (m *mockZones) Load(context.Context) service.ZoneListView {
	m.calls++
	return m.view
}

type mockMotors struct {
	view       service.MotorListView
	lastZoneID int
}

func (m *mockMotors) Load(_ context.Context, zoneID int) service.MotorListView {
	m.lastZoneID = zoneID
	v := m.view
	v.ZoneID = zoneID
	return v
}

type mockStatusLog struct {
	resp       []md.StatusEvent
	err        error
	lastFilter service.EventFilter
	calls      int
}

func (m *mockStatusLog) Record(context.Context, md.Reading) error { return nil }

func (m *mockStatusLog) List(_ context.Context, f service.EventFilter) ([]md.StatusEvent, error) {
	m.calls++
	m.lastFilter = f
	return m.resp, m.err
}

// mockDetailAPI serves the detail and history fetches of a device page.
type mockDetailAPI struct {
	motor   *md.Motor
	history md.SensorHistory
	err     error
}

func (m *mockDetailAPI) MotorDetail(context.Context, int) (*md.Motor, error) {
	return m.motor, m.err
}

func (m *mockDetailAPI) SensorHistory(context.Context, int) (md.SensorHistory, error) {
	return m.history, m.err
}

// mockChannel replays payloads when run and then stays open until closed.
type mockChannel struct {
	payloads []string
	runErr   error

	mu       sync.Mutex
	handlers []push.Handler
	closed   chan struct{}
	once     sync.Once
	header   http.Header
}

func newMockChannel(payloads ...string) *mockChannel {
	return &mockChannel{payloads: payloads, closed: make(chan struct{})}
}

func (m *mockChannel) On(event string, h push.Handler) {
	if event != push.EventNewReading {
		return
	}
	m.mu.Lock()
	m.handlers = append(m.handlers, h)
	m.mu.Unlock()
}

func (m *mockChannel) Run(ctx context.Context) error {
	if m.runErr != nil {
		return m.runErr
	}
	m.mu.Lock()
	hs := m.handlers
	m.mu.Unlock()
	for _, p := range m.payloads {
		for _, h := range hs {
			h(json.RawMessage(p))
		}
	}
	select {
	case <-ctx.Done():
	case <-m.closed:
	}
	return nil
}

func (m *mockChannel) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}

func (m *mockChannel) waitClosed(d time.Duration) bool {
	select {
	case <-m.closed:
		return true
	case <-time.After(d):
		return false
	}
}

func (m *mockChannel) sessionHeader() http.Header {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.header
}

type mockDevices struct {
	api *mockDetailAPI
	ch  *mockChannel
}

func (m *mockDevices) Open(motorID int) (*service.DeviceDetailController, error) {
	factory := push.FactoryFunc(func(h http.Header) push.Channel {
		m.ch.mu.Lock()
		m.ch.header = h
		m.ch.mu.Unlock()
		return m.ch
	})
	return service.NewDeviceDetail(motorID, m.api, factory, nil, nil)
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service, opts ...Option) *gin.Engine {
	h := NewHandler(s, nil, opts...)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
