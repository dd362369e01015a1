package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	md "motor_dashboard"

	"github.com/google/uuid"
)

type StatusEventSQLite struct {
	db *sql.DB
}

func NewStatusEventSQLite(db *sql.DB) *StatusEventSQLite { return &StatusEventSQLite{db: db} }

var _ StatusEventRepo = (*StatusEventSQLite)(nil)

const (
	sqliteTimestampLayout = "2006-01-02 15:04:05"

	insertStatusEventSQL = `
		INSERT INTO status_events (id, occurred_at, motor_id, status, previous_status, temperature_c, reading_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	selectStatusEventsSQL = `SELECT id, occurred_at, motor_id, status, previous_status, temperature_c, reading_ts FROM status_events`
)

// Append inserts e, filling EventID and OccurredAt when empty.
func (r *StatusEventSQLite) Append(ctx context.Context, e md.StatusEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	var prev *string
	if e.PreviousStatus != "" {
		s := string(e.PreviousStatus)
		prev = &s
	}

	_, err := r.db.ExecContext(ctx, insertStatusEventSQL,
		e.EventID,
		e.OccurredAt.UTC().Format(sqliteTimestampLayout),
		e.MotorID,
		string(e.Status),
		prev,
		e.TemperatureC,
		e.ReadingTimestamp,
	)
	return err
}

func (r *StatusEventSQLite) List(ctx context.Context, from, to time.Time, status string, motorID int) ([]md.StatusEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimestampLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimestampLayout))
	}
	if status = strings.TrimSpace(status); status != "" {
		conds = append(conds, "status = ?")
		args = append(args, status)
	}
	if motorID > 0 {
		conds = append(conds, "motor_id = ?")
		args = append(args, motorID)
	}

	q := selectStatusEventsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]md.StatusEvent, 0, 32)
	for rows.Next() {
		var (
			ev         md.StatusEvent
			occurredAt string
			status     string
			prev       sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &occurredAt, &ev.MotorID, &status, &prev, &ev.TemperatureC, &ev.ReadingTimestamp); err != nil {
			return nil, err
		}
		if ev.OccurredAt, err = time.ParseInLocation(sqliteTimestampLayout, occurredAt, time.UTC); err != nil {
			return nil, err
		}
		ev.Status = md.HealthStatus(status)
		if prev.Valid {
			ev.PreviousStatus = md.HealthStatus(prev.String)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
