package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	md "motor_dashboard"
	"motor_dashboard/internal/logger"
	"motor_dashboard/internal/repository"
)

// EventFilter narrows a status log query. Zero values do not filter.
type EventFilter struct {
	From    time.Time
	To      time.Time
	Status  string
	MotorID int
}

// StatusLogService records health transitions seen on live readings.
type StatusLogService struct {
	repo repository.StatusEventRepo
	log  *logger.Logger

	mu   sync.Mutex
	last map[int]md.HealthStatus
}

func NewStatusLogService(repo repository.StatusEventRepo, log *logger.Logger) *StatusLogService {
	if log == nil {
		log = logger.Nop()
	}
	return &StatusLogService{repo: repo, log: log, last: make(map[int]md.HealthStatus)}
}

var (
	ErrInvalidTimeRange = errors.New("invalid time range: from must be <= to")
	ErrUnknownStatus    = errors.New("unknown status")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f EventFilter) (EventFilter, error) {
	out := EventFilter{From: normalizeToUTC(f.From), To: normalizeToUTC(f.To), MotorID: f.MotorID}

	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return EventFilter{}, ErrInvalidTimeRange
	}
	if f.Status != "" {
		st, ok := md.ParseHealthStatus(f.Status)
		if !ok {
			return EventFilter{}, fmt.Errorf("%w: %q", ErrUnknownStatus, f.Status)
		}
		out.Status = string(st)
	}
	if out.MotorID < 0 {
		out.MotorID = 0
	}
	return out, nil
}

// Record appends an event when r's status differs from the last status
// recorded for the motor. The first reading of a motor is always recorded.
func (s *StatusLogService) Record(ctx context.Context, r md.Reading) error {
	if r.MotorID <= 0 {
		return nil
	}
	status := r.Status()

	s.mu.Lock()
	prev, seen := s.last[r.MotorID]
	if seen && prev == status {
		s.mu.Unlock()
		return nil
	}
	s.last[r.MotorID] = status
	s.mu.Unlock()

	ev := md.StatusEvent{
		MotorID:          r.MotorID,
		Status:           status,
		PreviousStatus:   prev,
		TemperatureC:     r.TemperatureC,
		ReadingTimestamp: r.Timestamp,
	}
	if err := s.repo.Append(ctx, ev); err != nil {
		s.mu.Lock()
		if s.last[r.MotorID] == status {
			if seen {
				s.last[r.MotorID] = prev
			} else {
				delete(s.last, r.MotorID)
			}
		}
		s.mu.Unlock()
		return fmt.Errorf("append status event: %w", err)
	}

	s.log.Infow("status_changed", "motor_id", r.MotorID, "from", prev, "to", status, "temperature_celsius", r.TemperatureC)
	return nil
}

func (s *StatusLogService) List(ctx context.Context, f EventFilter) ([]md.StatusEvent, error) {
	nf, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, nf.From, nf.To, nf.Status, nf.MotorID)
}
