package sqlite

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"alcyxob/hyrox-trainer/internal/repository"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

type sqliteCompletionRepository struct {
	db *Database
}

// NewSQLiteCompletionRepository creates the completion ledger backed by db.
func NewSQLiteCompletionRepository(db *Database) repository.CompletionRepository {
	return &sqliteCompletionRepository{db: db}
}

func (r *sqliteCompletionRepository) Upsert(ctx context.Context, programID string, week, dayOfWeek int, fields domain.CompletionFields, completedAt time.Time) (*domain.CompletedWorkout, error) {
	var sessionID, performance sql.NullString
	if fields.SessionID != "" {
		sessionID = sql.NullString{String: fields.SessionID, Valid: true}
	}
	if fields.Performance != nil {
		data, err := json.Marshal(fields.Performance)
		if err != nil {
			return nil, fmt.Errorf("marshal performance: %w", err)
		}
		performance = sql.NullString{String: string(data), Valid: true}
	}

	var id string
	err := r.db.ReadWrite.QueryRowContext(ctx, `
		INSERT INTO completed_workouts (
			id, user_program_id, week, day_of_week, completed_at, session_id,
			actual_duration, rpe, completion_status, percent_complete, performance
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_program_id, week, day_of_week) DO UPDATE SET
			completed_at = excluded.completed_at,
			session_id = excluded.session_id,
			actual_duration = excluded.actual_duration,
			rpe = excluded.rpe,
			completion_status = excluded.completion_status,
			percent_complete = excluded.percent_complete,
			performance = excluded.performance
		RETURNING id`,
		uuid.NewString(), programID, week, dayOfWeek, formatTimestamp(completedAt), sessionID,
		fields.ActualDuration, fields.RPE, string(fields.CompletionStatus), fields.PercentComplete, performance,
	).Scan(&id)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%w: upsert completion: %w", repository.ErrUpdateFailed, err)
	}

	ts, err := parseTimestamp(formatTimestamp(completedAt))
	if err != nil {
		return nil, err
	}
	return &domain.CompletedWorkout{
		ID:               id,
		UserProgramID:    programID,
		Week:             week,
		DayOfWeek:        dayOfWeek,
		CompletedAt:      ts,
		CompletionFields: fields,
	}, nil
}

func (r *sqliteCompletionRepository) ListByProgramID(ctx context.Context, programID string) (_ []domain.CompletedWorkout, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, user_program_id, week, day_of_week, completed_at, session_id,
		       actual_duration, rpe, completion_status, percent_complete, performance
		FROM completed_workouts
		WHERE user_program_id = ?
		ORDER BY completed_at, week, day_of_week`, programID)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()

	completions := []domain.CompletedWorkout{}
	for rows.Next() {
		var (
			c              domain.CompletedWorkout
			completedAt    string
			status         string
			sessionID      sql.NullString
			performance    sql.NullString
			actualDuration sql.NullInt64
			rpe            sql.NullInt64
		)
		if err = rows.Scan(&c.ID, &c.UserProgramID, &c.Week, &c.DayOfWeek, &completedAt, &sessionID,
			&actualDuration, &rpe, &status, &c.PercentComplete, &performance); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		if c.CompletedAt, err = parseTimestamp(completedAt); err != nil {
			return nil, err
		}
		c.CompletionStatus = domain.CompletionStatus(status)
		c.SessionID = sessionID.String
		c.ActualDuration = intPtr(actualDuration)
		c.RPE = intPtr(rpe)
		if performance.Valid {
			if err = json.Unmarshal([]byte(performance.String), &c.Performance); err != nil {
				return nil, fmt.Errorf("unmarshal performance: %w", err)
			}
		}
		completions = append(completions, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completions: %w", err)
	}
	return completions, nil
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
