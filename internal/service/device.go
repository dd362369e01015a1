package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	md "motor_dashboard"
	"motor_dashboard/internal/logger"
	"motor_dashboard/internal/metrics"
	"motor_dashboard/internal/push"
	"motor_dashboard/internal/upstream"
)

var ErrMissingMotorID = errors.New("device: missing motor id")

type DetailSource interface {
	MotorDetail(ctx context.Context, motorID int) (*md.Motor, error)
	SensorHistory(ctx context.Context, motorID int) (md.SensorHistory, error)
}

// ReadingObserver is told about every reading shown on a detail page.
type ReadingObserver interface {
	Record(ctx context.Context, r md.Reading) error
}

// DeviceDetailController owns the state of one motor detail page: the static
// spec, the current reading, the history chart and the live channel.
type DeviceDetailController struct {
	motorID  int
	src      DetailSource
	channels push.Factory
	observer ReadingObserver
	log      *logger.Logger

	mu   sync.Mutex
	view DeviceView
}

// NewDeviceDetail returns ErrMissingMotorID when motorID is not set. The
// failure is logged here; callers abort without user-facing output.
func NewDeviceDetail(motorID int, src DetailSource, channels push.Factory, observer ReadingObserver, log *logger.Logger) (*DeviceDetailController, error) {
	if log == nil {
		log = logger.Nop()
	}
	if motorID <= 0 {
		log.Errorw("motor_id_missing", "motor_id", motorID)
		return nil, ErrMissingMotorID
	}
	return &DeviceDetailController{
		motorID:  motorID,
		src:      src,
		channels: channels,
		observer: observer,
		log:      log.With("motor_id", motorID),
		view:     DeviceView{MotorID: motorID},
	}, nil
}

func (c *DeviceDetailController) MotorID() int { return c.motorID }

// Load runs the detail and history fetches concurrently and returns the view
// once both have finished. Each fetch writes its own region.
func (c *DeviceDetailController) Load(ctx context.Context) DeviceView {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.loadDetail(ctx)
	}()
	go func() {
		defer wg.Done()
		c.loadHistory(ctx)
	}()
	wg.Wait()
	return c.View()
}

func (c *DeviceDetailController) loadDetail(ctx context.Context) {
	m, err := c.src.MotorDetail(ctx, c.motorID)
	if err != nil {
		c.log.Errorw("upstream_fetch_failed", "endpoint", upstream.EndpointDetail, "error", err)
		c.mu.Lock()
		c.view.DetailError = "Error loading motor details: " + err.Error()
		c.mu.Unlock()
		return
	}
	if m == nil {
		return
	}

	spec := MotorSpecView{
		Name:        m.Name,
		Type:        m.Type,
		RatedPower:  formatNumber(m.RatedPowerKW),
		InstallDate: NotAvailable,
	}
	if m.InstallationDate != nil && *m.InstallationDate != "" {
		spec.InstallDate = *m.InstallationDate
	}
	c.mu.Lock()
	c.view.Spec = &spec
	c.mu.Unlock()

	if m.LatestReading != nil {
		c.Apply(ctx, *m.LatestReading)
	}
}

func (c *DeviceDetailController) loadHistory(ctx context.Context) {
	h, err := c.src.SensorHistory(ctx, c.motorID)
	if err != nil {
		c.log.Errorw("upstream_fetch_failed", "endpoint", upstream.EndpointHistory, "error", err)
		c.mu.Lock()
		c.view.ChartError = "Error loading history: " + err.Error()
		c.mu.Unlock()
		return
	}

	chart := ChartView{Title: ChartTitle, Labels: h.Timestamps, Values: h.Temperature}
	if chart.Labels == nil {
		chart.Labels = []string{}
	}
	if chart.Values == nil {
		chart.Values = []float64{}
	}
	c.mu.Lock()
	c.view.Chart = &chart
	c.mu.Unlock()
}

// Apply replaces the displayed reading with r, regardless of its timestamp.
func (c *DeviceDetailController) Apply(ctx context.Context, r md.Reading) ReadingView {
	r.MotorID = c.motorID
	v := NewReadingView(r)

	c.mu.Lock()
	c.view.Reading = &v
	c.mu.Unlock()

	if c.observer != nil {
		if err := c.observer.Record(ctx, r); err != nil {
			c.log.Warnw("status_record_failed", "error", err)
		}
	}
	return v
}

// HandleEvent applies a new_reading payload when it belongs to this motor.
// Readings for other motors and malformed payloads leave the view untouched.
func (c *DeviceDetailController) HandleEvent(ctx context.Context, payload json.RawMessage) (ReadingView, bool) {
	var r md.Reading
	if err := json.Unmarshal(payload, &r); err != nil {
		metrics.ObserveReading(metrics.ReadingInvalid)
		c.log.Warnw("reading_invalid", "error", err)
		return ReadingView{}, false
	}
	if r.MotorID != c.motorID {
		metrics.ObserveReading(metrics.ReadingIgnored)
		return ReadingView{}, false
	}
	metrics.ObserveReading(metrics.ReadingApplied)
	return c.Apply(ctx, r), true
}

// Watch opens a live channel with the session found in ctx and calls onUpdate
// for each applied reading, in arrival order. It returns when ctx is done,
// the channel drops, or onUpdate fails. The channel is always closed.
func (c *DeviceDetailController) Watch(ctx context.Context, onUpdate func(ReadingView) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := c.channels.New(upstream.SessionHeader(ctx))
	defer func() {
		if err := ch.Close(); err != nil {
			c.log.Debugw("live_channel_close_failed", "error", err)
		}
	}()

	metrics.SessionOpened()
	defer metrics.SessionClosed()
	c.log.Infow("live_session_started")

	var (
		errMu     sync.Mutex
		updateErr error
	)
	ch.On(push.EventNewReading, func(payload json.RawMessage) {
		v, ok := c.HandleEvent(ctx, payload)
		if !ok || onUpdate == nil {
			return
		}
		if err := onUpdate(v); err != nil {
			errMu.Lock()
			if updateErr == nil {
				updateErr = err
			}
			errMu.Unlock()
			cancel()
		}
	})

	err := ch.Run(ctx)

	errMu.Lock()
	defer errMu.Unlock()
	if updateErr != nil {
		err = updateErr
	}
	c.log.Infow("live_session_ended", "error", err)
	return err
}

// View returns a snapshot of the page state.
func (c *DeviceDetailController) View() DeviceView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}
