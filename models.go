package motor_dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Zone is one entry of GET /api/zones.
type Zone struct {
	ID            int                  `json:"id"`
	Name          string               `json:"zone_name"`
	Location      string               `json:"location"`
	TotalMotors   int                  `json:"total_motors"`
	StatusCounts  map[HealthStatus]int `json:"status_counts"`
	OverallStatus HealthStatus         `json:"overall_status"`
}

// Validate checks the fields the zone overview relies on.
func (z Zone) Validate() error {
	if z.ID <= 0 {
		return errors.New("zone: missing id")
	}
	if strings.TrimSpace(z.Name) == "" {
		return fmt.Errorf("zone %d: missing zone_name", z.ID)
	}
	if !z.OverallStatus.Valid() {
		return fmt.Errorf("zone %d: unknown overall_status %q", z.ID, z.OverallStatus)
	}
	for label := range z.StatusCounts {
		if !label.Valid() {
			return fmt.Errorf("zone %d: unknown status_counts label %q", z.ID, label)
		}
	}
	return nil
}

// Count returns the number of motors in the zone with the given status (0 if absent).
func (z Zone) Count(s HealthStatus) int {
	return z.StatusCounts[s]
}

// Motor is a motor as returned by the zone list and detail endpoints.
type Motor struct {
	ID               int          `json:"id"`
	ZoneID           int          `json:"zone_id,omitempty"`
	Name             string       `json:"motor_name"`
	Type             string       `json:"motor_type"`
	RatedPowerKW     float64      `json:"rated_power_kw"`
	InstallationDate *string      `json:"installation_date,omitempty"`
	LatestReading    *Reading     `json:"latest_reading,omitempty"`
	HealthStatus     HealthStatus `json:"health_status,omitempty"`
}

// Validate checks the static motor fields. The latest reading is validated
// while decoding; requireReading additionally demands that one is present.
func (m Motor) Validate(requireReading bool) error {
	if m.ID <= 0 {
		return errors.New("motor: missing id")
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("motor %d: missing motor_name", m.ID)
	}
	if m.HealthStatus != "" && !m.HealthStatus.Valid() {
		return fmt.Errorf("motor %d: unknown health_status %q", m.ID, m.HealthStatus)
	}
	if requireReading && m.LatestReading == nil {
		return fmt.Errorf("motor %d: missing latest_reading", m.ID)
	}
	return nil
}

// Status returns the server-supplied health label, defaulting to Normal.
func (m Motor) Status() HealthStatus {
	if m.HealthStatus == "" {
		return StatusNormal
	}
	return m.HealthStatus
}

// Reading is one immutable sensor snapshot.
type Reading struct {
	MotorID      int     `json:"motor_id,omitempty"`
	Timestamp    string  `json:"timestamp"`
	TemperatureC float64 `json:"temperature_celsius"`
	VibrationMMS float64 `json:"vibration_mm_s"`
	SoundDB      float64 `json:"sound_db"`
}

// UnmarshalJSON rejects readings that lack any of the measured fields so
// that missing values never reach the display layer.
func (r *Reading) UnmarshalJSON(b []byte) error {
	var aux struct {
		MotorID      int      `json:"motor_id"`
		Timestamp    *string  `json:"timestamp"`
		TemperatureC *float64 `json:"temperature_celsius"`
		VibrationMMS *float64 `json:"vibration_mm_s"`
		SoundDB      *float64 `json:"sound_db"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	var missing []string
	if aux.Timestamp == nil {
		missing = append(missing, "timestamp")
	}
	if aux.TemperatureC == nil {
		missing = append(missing, "temperature_celsius")
	}
	if aux.VibrationMMS == nil {
		missing = append(missing, "vibration_mm_s")
	}
	if aux.SoundDB == nil {
		missing = append(missing, "sound_db")
	}
	if len(missing) > 0 {
		return fmt.Errorf("reading: missing %s", strings.Join(missing, ", "))
	}

	*r = Reading{
		MotorID:      aux.MotorID,
		Timestamp:    *aux.Timestamp,
		TemperatureC: *aux.TemperatureC,
		VibrationMMS: *aux.VibrationMMS,
		SoundDB:      *aux.SoundDB,
	}
	return nil
}

// TimeOfDay returns the clock part of "YYYY-MM-DD HH:MM:SS" timestamps.
// Timestamps without a date part are returned unchanged.
func (r Reading) TimeOfDay() string {
	if _, clock, ok := strings.Cut(r.Timestamp, " "); ok {
		return clock
	}
	return r.Timestamp
}

// Status classifies the reading by temperature.
func (r Reading) Status() HealthStatus {
	return Classify(r.TemperatureC)
}

// SensorHistory is the temperature series of GET /api/sensors/{id}/history.
type SensorHistory struct {
	Timestamps  []string  `json:"timestamps"`
	Temperature []float64 `json:"temperature"`
}

// Validate ensures the two series line up.
func (h SensorHistory) Validate() error {
	if len(h.Timestamps) != len(h.Temperature) {
		return fmt.Errorf("history: %d timestamps but %d temperature values",
			len(h.Timestamps), len(h.Temperature))
	}
	return nil
}

// StatusEvent records a motor moving from one health status to another.
type StatusEvent struct {
	EventID          string       `json:"event_id"`
	OccurredAt       time.Time    `json:"occurred_at"`
	MotorID          int          `json:"motor_id"`
	Status           HealthStatus `json:"status"`
	PreviousStatus   HealthStatus `json:"previous_status,omitempty"` // empty for the first reading seen
	TemperatureC     float64      `json:"temperature_celsius"`
	ReadingTimestamp string       `json:"reading_timestamp"`
}
