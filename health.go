package motor_dashboard

import "strings"

// HealthStatus is the health label shown on badges and used as a CSS class.
type HealthStatus string

const (
	StatusNormal   HealthStatus = "Normal"
	StatusWarning  HealthStatus = "Warning"
	StatusCritical HealthStatus = "Critical"
)

// Temperature thresholds in °C, inclusive.
const (
	WarningTempC  = 70.0
	CriticalTempC = 80.0
)

// Statuses lists the labels in display order.
var Statuses = []HealthStatus{StatusNormal, StatusWarning, StatusCritical}

// Classify maps a temperature to a health status. Checks run from the most
// severe threshold down.
func Classify(temperatureC float64) HealthStatus {
	switch {
	case temperatureC >= CriticalTempC:
		return StatusCritical
	case temperatureC >= WarningTempC:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// Valid reports whether s is one of the known labels.
func (s HealthStatus) Valid() bool {
	switch s {
	case StatusNormal, StatusWarning, StatusCritical:
		return true
	}
	return false
}

// ParseHealthStatus accepts any letter case ("critical", "WARNING").
func ParseHealthStatus(s string) (HealthStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// BadgeClass is the class attribute for a status badge.
func (s HealthStatus) BadgeClass() string {
	return "status-badge " + string(s)
}
