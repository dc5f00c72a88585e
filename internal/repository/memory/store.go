// Package memory keeps programs and their completion ledgers in process memory.
// It backs local development and tests.
package memory

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"alcyxob/hyrox-trainer/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type ledgerKey struct {
	week, dayOfWeek int
}

// programRecord is the stored form of a program. The schedule is kept encoded,
// as it would be in a database.
type programRecord struct {
	program  domain.UserProgram
	schedule []byte
}

// Store implements both repository.ProgramRepository and
// repository.CompletionRepository.
type Store struct {
	mu          sync.RWMutex
	programs    map[string]*programRecord // by user id
	completions map[string]map[ledgerKey]domain.CompletedWorkout
	now         func() time.Time
}

var (
	_ repository.ProgramRepository    = (*Store)(nil)
	_ repository.CompletionRepository = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		programs:    make(map[string]*programRecord),
		completions: make(map[string]map[ledgerKey]domain.CompletedWorkout),
		now:         time.Now,
	}
}

func (s *Store) GetByUserID(_ context.Context, userID string) (*domain.UserProgram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.programs[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p := rec.program
	p.WeakStations = append([]domain.Station(nil), rec.program.WeakStations...)
	if rec.program.RaceDate != nil {
		race := *rec.program.RaceDate
		p.RaceDate = &race
	}
	weeks, err := domain.DecodeSchedule(rec.schedule)
	if err != nil {
		p.ScheduleDegraded = true
		p.ScheduleErr = fmt.Errorf("%w: %w", repository.ErrCorruptSchedule, err)
		return &p, nil
	}
	p.Schedule = weeks
	p.ScheduleVersion = domain.ScheduleVersion
	return &p, nil
}

func (s *Store) Create(_ context.Context, program *domain.UserProgram) error {
	if program.UserID == "" || len(program.Schedule) == 0 {
		return errors.New("program requires userId and a schedule")
	}
	schedule, err := domain.EncodeSchedule(program.Schedule)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteLocked(program.UserID)

	now := s.now().UTC()
	program.ID = uuid.NewString()
	program.CreatedAt = now
	program.UpdatedAt = now
	program.ScheduleVersion = domain.ScheduleVersion

	stored := *program
	stored.Schedule = nil
	stored.Completions = nil
	stored.WeakStations = append([]domain.Station(nil), program.WeakStations...)
	if program.RaceDate != nil {
		race := *program.RaceDate
		stored.RaceDate = &race
	}
	s.programs[program.UserID] = &programRecord{program: stored, schedule: schedule}
	s.completions[program.ID] = make(map[ledgerKey]domain.CompletedWorkout)
	return nil
}

func (s *Store) DeleteByUserID(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.deleteLocked(userID) {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) deleteLocked(userID string) bool {
	rec, ok := s.programs[userID]
	if !ok {
		return false
	}
	delete(s.completions, rec.program.ID)
	delete(s.programs, userID)
	return true
}

func (s *Store) UpdateIntensityModifier(_ context.Context, programID string, modifier float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.programs {
		if rec.program.ID == programID {
			rec.program.IntensityModifier = modifier
			rec.program.UpdatedAt = s.now().UTC()
			return nil
		}
	}
	return repository.ErrNotFound
}

// ReplaceStoredSchedule overwrites the encoded schedule of the user's program
// with raw bytes, the way a hand-edited or legacy row would look.
func (s *Store) ReplaceStoredSchedule(userID string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.programs[userID]
	if !ok {
		return repository.ErrNotFound
	}
	rec.schedule = append([]byte(nil), raw...)
	return nil
}

func (s *Store) Upsert(_ context.Context, programID string, week, dayOfWeek int, fields domain.CompletionFields, completedAt time.Time) (*domain.CompletedWorkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, ok := s.completions[programID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	key := ledgerKey{week: week, dayOfWeek: dayOfWeek}
	c, exists := ledger[key]
	if !exists {
		c = domain.CompletedWorkout{
			ID:            uuid.NewString(),
			UserProgramID: programID,
			Week:          week,
			DayOfWeek:     dayOfWeek,
		}
	}
	c.CompletedAt = completedAt.UTC()
	fields, err := copyFields(fields)
	if err != nil {
		return nil, err
	}
	c.CompletionFields = fields
	ledger[key] = c

	out, err := copyCompletion(c)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) ListByProgramID(_ context.Context, programID string) ([]domain.CompletedWorkout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.CompletedWorkout{}
	for c := range maps.Values(s.completions[programID]) {
		cp, err := copyCompletion(c)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CompletedAt.Equal(b.CompletedAt) {
			return a.CompletedAt.Before(b.CompletedAt)
		}
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		return a.DayOfWeek < b.DayOfWeek
	})
	return out, nil
}

func copyCompletion(c domain.CompletedWorkout) (domain.CompletedWorkout, error) {
	fields, err := copyFields(c.CompletionFields)
	if err != nil {
		return domain.CompletedWorkout{}, err
	}
	c.CompletionFields = fields
	return c, nil
}

// copyFields detaches the pointers and the performance payload from the
// caller's values.
func copyFields(f domain.CompletionFields) (domain.CompletionFields, error) {
	if f.ActualDuration != nil {
		v := *f.ActualDuration
		f.ActualDuration = &v
	}
	if f.RPE != nil {
		v := *f.RPE
		f.RPE = &v
	}
	if f.Performance != nil {
		data, err := json.Marshal(f.Performance)
		if err != nil {
			return domain.CompletionFields{}, fmt.Errorf("marshal performance: %w", err)
		}
		var perf map[string]any
		if err = json.Unmarshal(data, &perf); err != nil {
			return domain.CompletionFields{}, fmt.Errorf("unmarshal performance: %w", err)
		}
		f.Performance = perf
	}
	return f, nil
}
