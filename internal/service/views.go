package service

import (
	"fmt"
	"strconv"

	md "motor_dashboard"
)

// Navigation targets and fixed page texts.
const (
	LoginPath = "/login"

	ZoneLoadError = "Error loading data. Check console."
	NoMotorsText  = "No motors found in this zone."
	ChartTitle    = "Temperature (°C) - Last 24 Hrs"
	NotAvailable  = "N/A"
)

// ZoneHref is the motor-list page of a zone.
func ZoneHref(zoneID int) string { return fmt.Sprintf("/zone/%d/motors", zoneID) }

// DeviceHref is the detail page of a motor.
func DeviceHref(motorID int) string { return fmt.Sprintf("/device/%d", motorID) }

type StatusCount struct {
	Status md.HealthStatus
	Count  int
}

type ZoneCard struct {
	ID          int
	Name        string
	Location    string
	TotalMotors int
	Status      md.HealthStatus
	BadgeClass  string
	Counts      []StatusCount
	Href        string
}

// ZoneListView is either a redirect, an error text or a list of cards.
type ZoneListView struct {
	Cards      []ZoneCard
	RedirectTo string
	Error      string
}

type MotorCard struct {
	ID          int
	Name        string
	Type        string
	RatedPower  string
	Temperature string
	Vibration   string
	Status      md.HealthStatus
	BadgeClass  string
	Href        string
}

type MotorListView struct {
	ZoneID  int
	Cards   []MotorCard
	Message string
	Error   string
}

// ReadingView is the formatted reading shown on the detail page. It is also
// the payload relayed to the browser on live updates.
type ReadingView struct {
	MotorID     int             `json:"motor_id"`
	Timestamp   string          `json:"timestamp"`
	Temperature string          `json:"temperature"`
	Vibration   string          `json:"vibration"`
	Sound       string          `json:"sound"`
	Status      md.HealthStatus `json:"status"`
	BadgeClass  string          `json:"badge_class"`
}

type MotorSpecView struct {
	Name        string
	Type        string
	RatedPower  string
	InstallDate string
}

type ChartView struct {
	Title  string    `json:"title"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// DeviceView holds the detail page regions. A nil region was never populated.
type DeviceView struct {
	MotorID     int
	Spec        *MotorSpecView
	Reading     *ReadingView
	Chart       *ChartView
	DetailError string
	ChartError  string
}

// NewReadingView applies the display rules to r.
func NewReadingView(r md.Reading) ReadingView {
	status := r.Status()
	return ReadingView{
		MotorID:     r.MotorID,
		Timestamp:   r.TimeOfDay(),
		Temperature: formatNumber(r.TemperatureC) + " °C",
		Vibration:   formatNumber(r.VibrationMMS) + " mm/s",
		Sound:       formatNumber(r.SoundDB) + " dB",
		Status:      status,
		BadgeClass:  status.BadgeClass(),
	}
}

// formatNumber prints the shortest decimal form (81, 2.1, 65.55).
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
