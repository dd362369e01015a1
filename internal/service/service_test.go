package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	md "motor_dashboard"
	"motor_dashboard/internal/push"
)

// fakeAPI is a hand-written stub of the upstream client.
type fakeAPI struct {
	zones    []md.Zone
	zonesErr error

	motors    map[int][]md.Motor
	motorsErr error

	detail    *md.Motor
	detailErr error

	history    md.SensorHistory
	historyErr error

	mu           sync.Mutex
	gotZoneID    int
	gotDetailID  int
	gotHistoryID int
}

func (f *fakeAPI) Zones(context.Context) ([]md.Zone, error) { return f.zones, f.zonesErr }

func (f *fakeAPI) MotorsInZone(_ context.Context, zoneID int) ([]md.Motor, error) {
	f.mu.Lock()
	f.gotZoneID = zoneID
	f.mu.Unlock()
	return f.motors[zoneID], f.motorsErr
}

func (f *fakeAPI) MotorDetail(_ context.Context, motorID int) (*md.Motor, error) {
	f.mu.Lock()
	f.gotDetailID = motorID
	f.mu.Unlock()
	return f.detail, f.detailErr
}

func (f *fakeAPI) SensorHistory(_ context.Context, motorID int) (md.SensorHistory, error) {
	f.mu.Lock()
	f.gotHistoryID = motorID
	f.mu.Unlock()
	return f.history, f.historyErr
}

// fakeChannel delivers its payloads on Run, then blocks until cancelled or
// closed, like a live connection with no further traffic.
type fakeChannel struct {
	payloads []string
	runErr   error

	mu       sync.Mutex
	handlers map[string][]push.Handler
	closed   bool
	done     chan struct{}
	header   http.Header
}

func newFakeChannel(payloads ...string) *fakeChannel {
	return &fakeChannel{payloads: payloads, handlers: map[string][]push.Handler{}, done: make(chan struct{})}
}

func (c *fakeChannel) On(event string, h push.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], h)
}

func (c *fakeChannel) Run(ctx context.Context) error {
	if c.runErr != nil {
		return c.runErr
	}
	c.mu.Lock()
	hs := c.handlers[push.EventNewReading]
	c.mu.Unlock()
	for _, p := range c.payloads {
		for _, h := range hs {
			h(json.RawMessage(p))
		}
	}
	select {
	case <-ctx.Done():
	case <-c.done:
	}
	return nil
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
	return nil
}

func (c *fakeChannel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func factoryFor(ch *fakeChannel) push.Factory {
	return push.FactoryFunc(func(h http.Header) push.Channel {
		ch.header = h
		return ch
	})
}

// fakeStatusRepo records appended events.
type fakeStatusRepo struct {
	mu        sync.Mutex
	events    []md.StatusEvent
	appendErr error

	gotFrom, gotTo time.Time
	gotStatus      string
	gotMotorID     int
	listCalls      int
}

func (r *fakeStatusRepo) Append(_ context.Context, e md.StatusEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.events = append(r.events, e)
	return nil
}

func (r *fakeStatusRepo) List(_ context.Context, from, to time.Time, status string, motorID int) ([]md.StatusEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	r.gotFrom, r.gotTo, r.gotStatus, r.gotMotorID = from, to, status, motorID
	return r.events, nil
}

func (r *fakeStatusRepo) appended() []md.StatusEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]md.StatusEvent(nil), r.events...)
}

func strPtr(s string) *string { return &s }
