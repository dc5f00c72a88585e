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
)

type sqliteProgramRepository struct {
	db *Database
}

// NewSQLiteProgramRepository creates a UserProgram repository backed by db.
func NewSQLiteProgramRepository(db *Database) repository.ProgramRepository {
	return &sqliteProgramRepository{db: db}
}

const selectProgram = `
	SELECT id, user_id, program_id, template_id, name, start_date, race_date,
	       fitness_level, days_per_week, weak_stations, schedule, intensity_modifier,
	       created_at, updated_at
	FROM user_programs`

func (r *sqliteProgramRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserProgram, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx, selectProgram+` WHERE user_id = ?`, userID)
	program, err := scanProgram(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get program: %w", err)
	}
	return program, nil
}

// Create replaces the user's program in a single transaction. The previous
// program's completions go with it through the foreign key cascade.
func (r *sqliteProgramRepository) Create(ctx context.Context, program *domain.UserProgram) error {
	if program.UserID == "" || len(program.Schedule) == 0 {
		return errors.New("program requires userId and a schedule")
	}
	schedule, err := domain.EncodeSchedule(program.Schedule)
	if err != nil {
		return err
	}
	weakStations, err := json.Marshal(stationsOrEmpty(program.WeakStations))
	if err != nil {
		return fmt.Errorf("marshal weak stations: %w", err)
	}

	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer r.db.rollback(ctx, tx)()

	if _, err = tx.ExecContext(ctx, `DELETE FROM user_programs WHERE user_id = ?`, program.UserID); err != nil {
		return fmt.Errorf("%w: delete previous program: %w", repository.ErrDeleteFailed, err)
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	var raceDate sql.NullString
	if program.RaceDate != nil {
		raceDate = sql.NullString{String: formatTimestamp(*program.RaceDate), Valid: true}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_programs (
			id, user_id, program_id, template_id, name, start_date, race_date,
			fitness_level, days_per_week, weak_stations, schedule, intensity_modifier,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, program.UserID, program.ProgramID, program.TemplateID, program.Name,
		formatTimestamp(program.StartDate), raceDate,
		string(program.FitnessLevel), program.DaysPerWeek, string(weakStations), string(schedule),
		program.IntensityModifier, formatTimestamp(now), formatTimestamp(now))
	if err != nil {
		return fmt.Errorf("insert program: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	program.ID = id
	program.CreatedAt = now
	program.UpdatedAt = now
	program.ScheduleVersion = domain.ScheduleVersion
	return nil
}

func (r *sqliteProgramRepository) DeleteByUserID(ctx context.Context, userID string) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM user_programs WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("%w: %w", repository.ErrDeleteFailed, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *sqliteProgramRepository) UpdateIntensityModifier(ctx context.Context, programID string, modifier float64) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE user_programs
		SET intensity_modifier = ?, updated_at = ?
		WHERE id = ?`,
		modifier, formatTimestamp(time.Now()), programID)
	if err != nil {
		return fmt.Errorf("%w: %w", repository.ErrUpdateFailed, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanProgram(row *sql.Row) (*domain.UserProgram, error) {
	var (
		p                    domain.UserProgram
		startDate, createdAt string
		updatedAt            string
		raceDate             sql.NullString
		fitnessLevel         string
		weakStations         string
		schedule             string
		err                  error
	)
	if err = row.Scan(&p.ID, &p.UserID, &p.ProgramID, &p.TemplateID, &p.Name, &startDate, &raceDate,
		&fitnessLevel, &p.DaysPerWeek, &weakStations, &schedule, &p.IntensityModifier,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if p.StartDate, err = parseTimestamp(startDate); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	if raceDate.Valid {
		race, err := parseTimestamp(raceDate.String)
		if err != nil {
			return nil, err
		}
		p.RaceDate = &race
	}
	p.FitnessLevel = domain.SkillLevel(fitnessLevel)
	if err = json.Unmarshal([]byte(weakStations), &p.WeakStations); err != nil {
		return nil, fmt.Errorf("unmarshal weak stations: %w", err)
	}
	if len(p.WeakStations) == 0 {
		p.WeakStations = nil
	}

	weeks, err := domain.DecodeSchedule([]byte(schedule))
	if err != nil {
		p.ScheduleDegraded = true
		p.ScheduleErr = fmt.Errorf("%w: %w", repository.ErrCorruptSchedule, err)
		return &p, nil
	}
	p.Schedule = weeks
	p.ScheduleVersion = domain.ScheduleVersion
	return &p, nil
}

func stationsOrEmpty(s []domain.Station) []domain.Station {
	if s == nil {
		return []domain.Station{}
	}
	return s
}
