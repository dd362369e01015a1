package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	md "motor_dashboard"
	"motor_dashboard/internal/metrics"
)

// Endpoint names used in errors and metrics.
const (
	EndpointZones   = "zones"
	EndpointMotors  = "motors"
	EndpointDetail  = "motor_detail"
	EndpointHistory = "sensor_history"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// Client reads zones, motors and sensor history from the monitoring API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a client for the API rooted at baseURL (no trailing slash).
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Zones fetches GET /api/zones.
func (c *Client) Zones(ctx context.Context) ([]md.Zone, error) {
	var zones []md.Zone
	if _, err := c.getJSON(ctx, EndpointZones, "/api/zones", &zones, nil); err != nil {
		return nil, err
	}
	for _, z := range zones {
		if err := z.Validate(); err != nil {
			return nil, c.parseFailed(EndpointZones, err)
		}
	}
	c.observe(EndpointZones, metrics.OutcomeOK)
	return zones, nil
}

// MotorsInZone fetches GET /api/motors/{zoneID}. Every motor must carry a
// latest reading.
func (c *Client) MotorsInZone(ctx context.Context, zoneID int) ([]md.Motor, error) {
	var motors []md.Motor
	path := "/api/motors/" + strconv.Itoa(zoneID)
	if _, err := c.getJSON(ctx, EndpointMotors, path, &motors, nil); err != nil {
		return nil, err
	}
	for _, m := range motors {
		if err := m.Validate(true); err != nil {
			return nil, c.parseFailed(EndpointMotors, err)
		}
	}
	c.observe(EndpointMotors, metrics.OutcomeOK)
	return motors, nil
}

// MotorDetail fetches GET /api/motors/{motorID}/detail and returns its first
// element. A 404 or an empty array yields (nil, nil).
func (c *Client) MotorDetail(ctx context.Context, motorID int) (*md.Motor, error) {
	var motors []md.Motor
	path := "/api/motors/" + strconv.Itoa(motorID) + "/detail"
	status, err := c.getJSON(ctx, EndpointDetail, path, &motors, []int{http.StatusNotFound})
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound || len(motors) == 0 {
		c.observe(EndpointDetail, metrics.OutcomeOK)
		return nil, nil
	}
	m := motors[0]
	if err := m.Validate(false); err != nil {
		return nil, c.parseFailed(EndpointDetail, err)
	}
	c.observe(EndpointDetail, metrics.OutcomeOK)
	return &m, nil
}

// SensorHistory fetches GET /api/sensors/{motorID}/history.
func (c *Client) SensorHistory(ctx context.Context, motorID int) (md.SensorHistory, error) {
	var h md.SensorHistory
	path := "/api/sensors/" + strconv.Itoa(motorID) + "/history"
	if _, err := c.getJSON(ctx, EndpointHistory, path, &h, nil); err != nil {
		return md.SensorHistory{}, err
	}
	if err := h.Validate(); err != nil {
		return md.SensorHistory{}, c.parseFailed(EndpointHistory, err)
	}
	c.observe(EndpointHistory, metrics.OutcomeOK)
	return h, nil
}

// getJSON performs a GET and decodes the body into dst. Statuses listed in
// tolerated are returned without error; their body is decoded best-effort.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, dst any, tolerated []int) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header = SessionHeader(ctx)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(endpoint, metrics.OutcomeTransport)
		return 0, fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxBodyBytes)

	if resp.StatusCode == http.StatusUnauthorized {
		c.observe(endpoint, metrics.OutcomeUnauthorized)
		return resp.StatusCode, ErrUnauthorized
	}
	for _, code := range tolerated {
		if resp.StatusCode == code {
			_ = json.NewDecoder(body).Decode(dst)
			return resp.StatusCode, nil
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.observe(endpoint, metrics.OutcomeStatus)
		return resp.StatusCode, &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
	}

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return resp.StatusCode, c.parseFailed(endpoint, err)
	}
	return resp.StatusCode, nil
}

func (c *Client) parseFailed(endpoint string, err error) error {
	c.observe(endpoint, metrics.OutcomeParse)
	return &ParseError{Endpoint: endpoint, Err: err}
}

func (c *Client) observe(endpoint, outcome string) {
	metrics.ObserveUpstream(endpoint, outcome)
}

// IsUnauthorized reports whether err came from a 401 answer.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
