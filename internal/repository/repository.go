package repository

import (
	"classtrack/attendance-app/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TimetableRepository persists the canonical weekly timetable, one
// document per user.
type TimetableRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.WeeklyTimetable, error)
	// Replace stores the timetable wholesale, inserting it when the user
	// has none yet.
	Replace(ctx context.Context, timetable *domain.WeeklyTimetable) error
}

// AttendanceRepository persists the per-user attendance sheet holding
// every subject ledger. The sheet is read and written as a unit so a
// single save covers ledger edits and counter recomputation together.
type AttendanceRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.AttendanceSheet, error)
	Save(ctx context.Context, sheet *domain.AttendanceSheet) error
	DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error
}

// PresetRepository holds the reusable timetable templates.
type PresetRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Preset, error)
	List(ctx context.Context) ([]domain.Preset, error)
	// EnsureDefaults seeds the given presets when the collection is empty.
	EnsureDefaults(ctx context.Context, presets []domain.Preset) error
}

// TxRunner executes a unit of work, transactionally when the backing
// store supports it. Implementations that cannot open a transaction run
// the function directly; a partial failure inside fn then surfaces as an
// operational error rather than being rolled back.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
