package repository

import (
	"context"
	"database/sql"
	"time"

	md "motor_dashboard"
	"motor_dashboard/internal/repository/db"
)

// StatusEventRepo stores health transitions observed on live readings.
type StatusEventRepo interface {
	Append(ctx context.Context, e md.StatusEvent) error
	// List returns events in [from, to] (zero bounds are open) optionally
	// restricted to one status and one motor (0 = any), oldest first.
	List(ctx context.Context, from, to time.Time, status string, motorID int) ([]md.StatusEvent, error)
}

type Repository struct {
	StatusEvents StatusEventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StatusEvents: NewStatusEventSQLite(db),
	}
}

// InitDB opens the SQLite file at path and applies the schema.
func InitDB(path string) (*sql.DB, error) {
	return db.Open(path)
}
