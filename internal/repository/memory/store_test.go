package memory_test

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"alcyxob/hyrox-trainer/internal/repository"
	"alcyxob/hyrox-trainer/internal/repository/memory"
	"alcyxob/hyrox-trainer/internal/repository/repotest"
	"errors"
	"testing"
	"time"
)

func TestStore_Contract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) (repository.ProgramRepository, repository.CompletionRepository) {
		store := memory.NewStore()
		return store, store
	})
}

func TestStore_CorruptScheduleIsDegraded(t *testing.T) {
	store := memory.NewStore()
	p := repotest.NewProgram(t, "user-1")
	if err := store.Create(t.Context(), p); err != nil {
		t.Fatal(err)
	}
	if err := store.ReplaceStoredSchedule("user-1", []byte(`{"version":99,"weeks":[]}`)); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetByUserID(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("GetByUserID() error = %v", err)
	}
	if !got.ScheduleDegraded || !errors.Is(got.ScheduleErr, repository.ErrCorruptSchedule) {
		t.Errorf("ScheduleDegraded = %v, ScheduleErr = %v", got.ScheduleDegraded, got.ScheduleErr)
	}
	if len(got.Schedule) != 0 {
		t.Errorf("degraded program has %d weeks", len(got.Schedule))
	}
}

func TestStore_ReturnedProgramIsACopy(t *testing.T) {
	store := memory.NewStore()
	p := repotest.NewProgram(t, "user-1")
	if err := store.Create(t.Context(), p); err != nil {
		t.Fatal(err)
	}
	p.WeakStations[0] = "changed"
	p.Schedule[0].Theme = "changed"

	got, err := store.GetByUserID(t.Context(), "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.WeakStations[0] == "changed" || got.Schedule[0].Theme == "changed" {
		t.Error("store shares memory with the created program")
	}
}

func TestStore_UpsertUnknownProgram(t *testing.T) {
	store := memory.NewStore()
	fields := domain.CompletionFields{CompletionStatus: domain.CompletionFull, PercentComplete: 100}
	_, err := store.Upsert(t.Context(), "missing", 1, 1, fields, time.Now())
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Upsert() error = %v, want ErrNotFound", err)
	}
}
