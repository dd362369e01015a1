package service

import (
	"context"

	md "motor_dashboard"
	"motor_dashboard/internal/logger"
	"motor_dashboard/internal/push"
	"motor_dashboard/internal/repository"
)

// API is the read-only motor-monitoring API consumed by the pages.
type API interface {
	ZoneSource
	MotorSource
	DetailSource
}

// ZoneList renders the zone overview.
type ZoneList interface {
	Load(ctx context.Context) ZoneListView
}

// MotorList renders the motors of one zone.
type MotorList interface {
	Load(ctx context.Context, zoneID int) MotorListView
}

// DeviceOpener creates one detail controller per page view.
type DeviceOpener interface {
	Open(motorID int) (*DeviceDetailController, error)
}

// StatusLog exposes recorded health transitions.
type StatusLog interface {
	ReadingObserver
	List(ctx context.Context, f EventFilter) ([]md.StatusEvent, error)
}

type Service struct {
	Zones     ZoneList
	Motors    MotorList
	Devices   DeviceOpener
	StatusLog StatusLog
}

func NewService(api API, channels push.Factory, repos *repository.Repository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	statusLog := NewStatusLogService(repos.StatusEvents, log.Named("statuslog"))
	return &Service{
		Zones:     NewZoneListController(api, log.Named("zones")),
		Motors:    NewMotorListController(api, log.Named("motors")),
		Devices:   &deviceOpener{src: api, channels: channels, observer: statusLog, log: log.Named("device")},
		StatusLog: statusLog,
	}
}

type deviceOpener struct {
	src      DetailSource
	channels push.Factory
	observer ReadingObserver
	log      *logger.Logger
}

func (o *deviceOpener) Open(motorID int) (*DeviceDetailController, error) {
	return NewDeviceDetail(motorID, o.src, o.channels, o.observer, o.log)
}
