package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	md "motor_dashboard"

	"github.com/DATA-DOG/go-sqlmock"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

// utcLayoutArg matches a timestamp formatted with sqliteTimestampLayout.
type utcLayoutArg struct{}

func (utcLayoutArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := time.Parse(sqliteTimestampLayout, s)
	return err == nil
}

func TestAppend_FillsDefaults(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewStatusEventSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO status_events")).
		WithArgs(sqlmock.AnyArg(), utcLayoutArg{}, 3, "Critical", nil, 81.0, "2024-01-01 10:00:00").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Append(testCtx(t), md.StatusEvent{
		MotorID:          3,
		Status:           md.StatusCritical,
		TemperatureC:     81,
		ReadingTimestamp: "2024-01-01 10:00:00",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAppend_DBError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO status_events")).
		WillReturnError(errors.New("disk full"))

	err = NewStatusEventSQLite(db).Append(testCtx(t), md.StatusEvent{
		EventID: "e1", MotorID: 1, Status: md.StatusWarning, PreviousStatus: md.StatusNormal,
	})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestList_BuildsFiltersAndScans(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 2, 0, 0, 0, 0, time.FixedZone("X", 3600))

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "motor_id", "status", "previous_status", "temperature_c", "reading_ts"}).
		AddRow("e1", "2024-01-01 10:00:01", 3, "Critical", "Warning", 81.0, "2024-01-01 10:00:00").
		AddRow("e2", "2024-01-01 11:00:00", 3, "Critical", nil, 85.5, "2024-01-01 11:00:00")

	mock.ExpectQuery(regexp.QuoteMeta(
		"WHERE occurred_at >= ? AND occurred_at <= ? AND status = ? AND motor_id = ? ORDER BY occurred_at ASC, id ASC")).
		WithArgs("2024-01-01 00:00:00", "2024-01-01 23:00:00", "Critical", 3).
		WillReturnRows(rows)

	got, err := NewStatusEventSQLite(db).List(testCtx(t), from, to, " Critical ", 3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events", len(got))
	}
	if got[0].PreviousStatus != md.StatusWarning || got[1].PreviousStatus != "" {
		t.Fatalf("previous status not scanned: %+v", got)
	}
	if got[0].OccurredAt.Location() != time.UTC || got[0].OccurredAt.Hour() != 10 {
		t.Fatalf("occurred_at = %v", got[0].OccurredAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestList_NoFilters(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`^SELECT .* FROM status_events ORDER BY occurred_at ASC, id ASC$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "occurred_at", "motor_id", "status", "previous_status", "temperature_c", "reading_ts"}))

	got, err := NewStatusEventSQLite(db).List(testCtx(t), time.Time{}, time.Time{}, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no events, got %d", len(got))
	}
}

func TestStatusEventSQLite_RealDatabase(t *testing.T) {
	t.Parallel()

	sqlDB, err := InitDB(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer sqlDB.Close()

	repo := NewRepository(sqlDB).StatusEvents
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	events := []md.StatusEvent{
		{MotorID: 1, Status: md.StatusNormal, TemperatureC: 60, ReadingTimestamp: "a", OccurredAt: base},
		{MotorID: 1, Status: md.StatusCritical, PreviousStatus: md.StatusNormal, TemperatureC: 90, ReadingTimestamp: "b", OccurredAt: base.Add(time.Minute)},
		{MotorID: 2, Status: md.StatusWarning, TemperatureC: 72, ReadingTimestamp: "c", OccurredAt: base.Add(2 * time.Minute)},
	}
	for _, e := range events {
		if err := repo.Append(testCtx(t), e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	all, err := repo.List(testCtx(t), time.Time{}, time.Time{}, "", 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("List all: %d events, err %v", len(all), err)
	}
	if all[0].EventID == "" || !all[0].OccurredAt.Equal(base) {
		t.Fatalf("first event not round-tripped: %+v", all[0])
	}

	m1, err := repo.List(testCtx(t), base.Add(30*time.Second), time.Time{}, "", 1)
	if err != nil || len(m1) != 1 || m1[0].Status != md.StatusCritical || m1[0].PreviousStatus != md.StatusNormal {
		t.Fatalf("filtered list = %+v, err %v", m1, err)
	}
}
