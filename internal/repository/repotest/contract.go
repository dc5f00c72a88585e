// Package repotest holds the behaviour every repository implementation must
// share, as a reusable test suite.
package repotest

import (
	"alcyxob/hyrox-trainer/internal/catalog"
	"alcyxob/hyrox-trainer/internal/domain"
	"alcyxob/hyrox-trainer/internal/repository"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// Factory returns fresh, empty repositories sharing one backing store.
type Factory func(t *testing.T) (repository.ProgramRepository, repository.CompletionRepository)

// Run runs the contract suite against the repositories built by newRepos.
func Run(t *testing.T, newRepos Factory) {
	t.Helper()

	t.Run("GetMissingProgram", func(t *testing.T) { testGetMissing(t, newRepos) })
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, newRepos) })
	t.Run("CreateReplacesProgramAndLedger", func(t *testing.T) { testCreateReplaces(t, newRepos) })
	t.Run("DeleteCascades", func(t *testing.T) { testDeleteCascades(t, newRepos) })
	t.Run("UpsertIsIdempotentPerSlot", func(t *testing.T) { testUpsertIdempotent(t, newRepos) })
	t.Run("ListOrderedByCompletedAt", func(t *testing.T) { testListOrdering(t, newRepos) })
	t.Run("UpdateIntensityModifier", func(t *testing.T) { testUpdateModifier(t, newRepos) })
}

// NewProgram returns a program for userID on the 8-week template starting on
// a Monday.
func NewProgram(t *testing.T, userID string) *domain.UserProgram {
	t.Helper()
	tmpl, err := catalog.GetTemplateByID(catalog.TemplateEightWeek)
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	race := time.Date(2025, 4, 26, 0, 0, 0, 0, time.UTC)
	return &domain.UserProgram{
		UserID:            userID,
		ProgramID:         tmpl.ID,
		TemplateID:        tmpl.ID,
		Name:              tmpl.Name,
		StartDate:         time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		RaceDate:          &race,
		FitnessLevel:      domain.LevelIntermediate,
		DaysPerWeek:       tmpl.DefaultDaysPerWeek,
		WeakStations:      []domain.Station{domain.StationSledPush},
		Schedule:          tmpl.Weeks,
		IntensityModifier: domain.DefaultIntensityModifier,
	}
}

func rpe(v int) *int { return &v }

func testGetMissing(t *testing.T, newRepos Factory) {
	programs, _ := newRepos(t)
	if _, err := programs.GetByUserID(t.Context(), "nobody"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("GetByUserID() error = %v, want ErrNotFound", err)
	}
	if err := programs.DeleteByUserID(t.Context(), "nobody"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("DeleteByUserID() error = %v, want ErrNotFound", err)
	}
}

func testCreateAndGet(t *testing.T, newRepos Factory) {
	programs, _ := newRepos(t)
	want := NewProgram(t, "user-1")
	if err := programs.Create(t.Context(), want); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if want.ID == "" || want.CreatedAt.IsZero() || want.ScheduleVersion != domain.ScheduleVersion {
		t.Fatalf("Create() did not assign id, timestamps and version: %+v", want)
	}

	got, err := programs.GetByUserID(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("GetByUserID() error = %v", err)
	}
	if got.ScheduleDegraded {
		t.Fatalf("schedule degraded: %v", got.ScheduleErr)
	}
	if got.ID != want.ID || got.TemplateID != want.TemplateID || got.FitnessLevel != want.FitnessLevel {
		t.Errorf("GetByUserID() = %+v, want %+v", got, want)
	}
	if !got.StartDate.Equal(want.StartDate) || got.RaceDate == nil || !got.RaceDate.Equal(*want.RaceDate) {
		t.Errorf("dates = %v / %v, want %v / %v", got.StartDate, got.RaceDate, want.StartDate, want.RaceDate)
	}
	if diff := cmp.Diff(want.WeakStations, got.WeakStations); diff != "" {
		t.Errorf("weak stations mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Schedule, got.Schedule); diff != "" {
		t.Errorf("schedule mismatch (-want +got):\n%s", diff)
	}
	if got.IntensityModifier != domain.DefaultIntensityModifier {
		t.Errorf("IntensityModifier = %v, want %v", got.IntensityModifier, domain.DefaultIntensityModifier)
	}
}

func testCreateReplaces(t *testing.T, newRepos Factory) {
	programs, completions := newRepos(t)
	first := NewProgram(t, "user-1")
	if err := programs.Create(t.Context(), first); err != nil {
		t.Fatal(err)
	}
	at := time.Date(2025, 3, 3, 18, 0, 0, 0, time.UTC)
	if _, err := completions.Upsert(t.Context(), first.ID, 1, 1,
		domain.CompletionFields{CompletionStatus: domain.CompletionFull, PercentComplete: 100}, at); err != nil {
		t.Fatal(err)
	}

	second := NewProgram(t, "user-1")
	if err := programs.Create(t.Context(), second); err != nil {
		t.Fatalf("Create() replacing error = %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("replacement program reuses the old id")
	}

	got, err := programs.GetByUserID(t.Context(), "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != second.ID {
		t.Errorf("GetByUserID().ID = %s, want %s", got.ID, second.ID)
	}
	old, err := completions.ListByProgramID(t.Context(), first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(old) != 0 {
		t.Errorf("old ledger has %d entries after replacement, want 0", len(old))
	}
}

func testDeleteCascades(t *testing.T, newRepos Factory) {
	programs, completions := newRepos(t)
	p := NewProgram(t, "user-1")
	if err := programs.Create(t.Context(), p); err != nil {
		t.Fatal(err)
	}
	other := NewProgram(t, "user-2")
	if err := programs.Create(t.Context(), other); err != nil {
		t.Fatal(err)
	}
	at := time.Date(2025, 3, 3, 18, 0, 0, 0, time.UTC)
	for _, id := range []string{p.ID, other.ID} {
		if _, err := completions.Upsert(t.Context(), id, 1, 1,
			domain.CompletionFields{CompletionStatus: domain.CompletionFull, PercentComplete: 100}, at); err != nil {
			t.Fatal(err)
		}
	}

	if err := programs.DeleteByUserID(t.Context(), "user-1"); err != nil {
		t.Fatalf("DeleteByUserID() error = %v", err)
	}
	if _, err := programs.GetByUserID(t.Context(), "user-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("GetByUserID() after delete error = %v, want ErrNotFound", err)
	}
	left, err := completions.ListByProgramID(t.Context(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("deleted program still has %d completions", len(left))
	}
	kept, err := completions.ListByProgramID(t.Context(), other.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(kept) != 1 {
		t.Errorf("other user's ledger has %d entries, want 1", len(kept))
	}
}

func testUpsertIdempotent(t *testing.T, newRepos Factory) {
	programs, completions := newRepos(t)
	p := NewProgram(t, "user-1")
	if err := programs.Create(t.Context(), p); err != nil {
		t.Fatal(err)
	}

	first := domain.CompletionFields{
		SessionID:        "session-1",
		RPE:              rpe(7),
		CompletionStatus: domain.CompletionFull,
		PercentComplete:  100,
		Performance:      map[string]any{"feeling": "hard"},
	}
	a, err := completions.Upsert(t.Context(), p.ID, 1, 1, first, time.Date(2025, 3, 3, 18, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("first Upsert() error = %v", err)
	}

	second := domain.CompletionFields{
		CompletionStatus: domain.CompletionPartial,
		PercentComplete:  60,
	}
	at := time.Date(2025, 3, 4, 7, 30, 0, 0, time.UTC)
	b, err := completions.Upsert(t.Context(), p.ID, 1, 1, second, at)
	if err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if a.ID != b.ID {
		t.Errorf("upsert changed id from %s to %s", a.ID, b.ID)
	}

	list, err := completions.ListByProgramID(t.Context(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("ledger has %d entries, want 1", len(list))
	}
	got := list[0]
	if got.CompletionStatus != domain.CompletionPartial || got.PercentComplete != 60 {
		t.Errorf("fields not overwritten: %+v", got.CompletionFields)
	}
	if got.RPE != nil || got.SessionID != "" || got.Performance != nil {
		t.Errorf("omitted fields survived the overwrite: %+v", got.CompletionFields)
	}
	if !got.CompletedAt.Equal(at) {
		t.Errorf("CompletedAt = %v, want %v", got.CompletedAt, at)
	}
}

func testListOrdering(t *testing.T, newRepos Factory) {
	programs, completions := newRepos(t)
	p := NewProgram(t, "user-1")
	if err := programs.Create(t.Context(), p); err != nil {
		t.Fatal(err)
	}

	// Recorded out of calendar order: week 1 Saturday logged last.
	entries := []struct {
		week, day int
		at        time.Time
	}{
		{1, 6, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)},
		{1, 1, time.Date(2025, 3, 3, 18, 0, 0, 0, time.UTC)},
		{1, 2, time.Date(2025, 3, 4, 18, 0, 0, 0, time.UTC)},
	}
	for _, e := range entries {
		if _, err := completions.Upsert(t.Context(), p.ID, e.week, e.day,
			domain.CompletionFields{CompletionStatus: domain.CompletionFull, PercentComplete: 100}, e.at); err != nil {
			t.Fatal(err)
		}
	}

	list, err := completions.ListByProgramID(t.Context(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	var days []int
	for _, c := range list {
		days = append(days, c.DayOfWeek)
	}
	if diff := cmp.Diff([]int{1, 2, 6}, days); diff != "" {
		t.Errorf("ledger order mismatch (-want +got):\n%s", diff)
	}
}

func testUpdateModifier(t *testing.T, newRepos Factory) {
	programs, _ := newRepos(t)
	p := NewProgram(t, "user-1")
	if err := programs.Create(t.Context(), p); err != nil {
		t.Fatal(err)
	}

	if err := programs.UpdateIntensityModifier(t.Context(), p.ID, 1.1); err != nil {
		t.Fatalf("UpdateIntensityModifier() error = %v", err)
	}
	got, err := programs.GetByUserID(t.Context(), "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.IntensityModifier != 1.1 {
		t.Errorf("IntensityModifier = %v, want 1.1", got.IntensityModifier)
	}

	if err = programs.UpdateIntensityModifier(t.Context(), "missing", 0.9); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("UpdateIntensityModifier(missing) error = %v, want ErrNotFound", err)
	}
}
