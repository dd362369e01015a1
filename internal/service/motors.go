package service

import (
	"context"
	"fmt"

	md "motor_dashboard"
	"motor_dashboard/internal/logger"
	"motor_dashboard/internal/upstream"
)

type MotorSource interface {
	MotorsInZone(ctx context.Context, zoneID int) ([]md.Motor, error)
}

// MotorListController builds the motor list of one zone.
type MotorListController struct {
	src MotorSource
	log *logger.Logger
}

func NewMotorListController(src MotorSource, log *logger.Logger) *MotorListController {
	if log == nil {
		log = logger.Nop()
	}
	return &MotorListController{src: src, log: log}
}

func (c *MotorListController) Load(ctx context.Context, zoneID int) MotorListView {
	view := MotorListView{ZoneID: zoneID}

	motors, err := c.src.MotorsInZone(ctx, zoneID)
	if err != nil {
		c.log.Errorw("upstream_fetch_failed", "endpoint", upstream.EndpointMotors, "zone_id", zoneID, "error", err)
		view.Error = "Error loading motors: " + err.Error()
		return view
	}
	if len(motors) == 0 {
		view.Message = NoMotorsText
		return view
	}

	view.Cards = make([]MotorCard, 0, len(motors))
	for _, m := range motors {
		view.Cards = append(view.Cards, motorCard(m))
	}
	return view
}

// motorCard expects m.LatestReading to be set; the client rejects list
// entries without one.
func motorCard(m md.Motor) MotorCard {
	status := m.Status()
	card := MotorCard{
		ID:         m.ID,
		Name:       m.Name,
		Type:       m.Type,
		RatedPower: formatNumber(m.RatedPowerKW) + " kW",
		Status:     status,
		BadgeClass: status.BadgeClass(),
		Href:       DeviceHref(m.ID),
	}
	if r := m.LatestReading; r != nil {
		card.Temperature = fmt.Sprintf("%.2f °C", r.TemperatureC)
		card.Vibration = fmt.Sprintf("%.2f mm/s", r.VibrationMMS)
	}
	return card
}
