package repository

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"context"
	"time"
)

// Error constants for the repository layer
var (
	ErrNotFound        = RepositoryError("not found")
	ErrUpdateFailed    = RepositoryError("update failed")
	ErrDeleteFailed    = RepositoryError("delete failed")
	ErrCorruptSchedule = RepositoryError("stored schedule is corrupt")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ProgramRepository stores the single live program of each user.
//
// A program whose stored schedule cannot be decoded is still returned, with
// ScheduleDegraded set and ScheduleErr wrapping ErrCorruptSchedule.
type ProgramRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.UserProgram, error)
	// Create stores program as the user's program. Any previous program of the
	// user is deleted first, together with its completions. ID, CreatedAt and
	// UpdatedAt are assigned.
	Create(ctx context.Context, program *domain.UserProgram) error
	// DeleteByUserID removes the user's program and its completions.
	// It returns ErrNotFound when the user has no program.
	DeleteByUserID(ctx context.Context, userID string) error
	UpdateIntensityModifier(ctx context.Context, programID string, modifier float64) error
}

// CompletionRepository is the completion ledger. (programID, week, dayOfWeek)
// is unique.
type CompletionRepository interface {
	// Upsert inserts the completion or overwrites every mutable field of the
	// existing one at the same key, refreshing CompletedAt.
	Upsert(ctx context.Context, programID string, week, dayOfWeek int, fields domain.CompletionFields, completedAt time.Time) (*domain.CompletedWorkout, error)
	// ListByProgramID returns the ledger ordered by CompletedAt ascending.
	ListByProgramID(ctx context.Context, programID string) ([]domain.CompletedWorkout, error)
}
