package sqlite_test

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"alcyxob/hyrox-trainer/internal/repository"
	"alcyxob/hyrox-trainer/internal/repository/repotest"
	"alcyxob/hyrox-trainer/internal/repository/sqlite"
	"alcyxob/hyrox-trainer/internal/testhelpers"
	"errors"
	"testing"
	"time"
)

func newDatabase(t *testing.T) *sqlite.Database {
	t.Helper()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(t.Context(), ":memory:", logger)
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})
	return db
}

func TestSQLite_Contract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) (repository.ProgramRepository, repository.CompletionRepository) {
		db := newDatabase(t)
		return sqlite.NewSQLiteProgramRepository(db), sqlite.NewSQLiteCompletionRepository(db)
	})
}

func TestSQLite_CorruptScheduleIsDegraded(t *testing.T) {
	db := newDatabase(t)
	programs := sqlite.NewSQLiteProgramRepository(db)
	p := repotest.NewProgram(t, "user-1")
	if err := programs.Create(t.Context(), p); err != nil {
		t.Fatal(err)
	}
	if _, err := db.ReadWrite.ExecContext(t.Context(),
		`UPDATE user_programs SET schedule = '{"version": 1, "weeks": [{"week": 3}]}' WHERE id = ?`, p.ID); err != nil {
		t.Fatal(err)
	}

	got, err := programs.GetByUserID(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("GetByUserID() error = %v", err)
	}
	if !got.ScheduleDegraded || !errors.Is(got.ScheduleErr, repository.ErrCorruptSchedule) {
		t.Errorf("ScheduleDegraded = %v, ScheduleErr = %v", got.ScheduleDegraded, got.ScheduleErr)
	}
	if got.IntensityModifier != domain.DefaultIntensityModifier {
		t.Errorf("IntensityModifier = %v, want the stored value", got.IntensityModifier)
	}
}

func TestSQLite_LegacyScheduleIsMigrated(t *testing.T) {
	db := newDatabase(t)
	programs := sqlite.NewSQLiteProgramRepository(db)
	p := repotest.NewProgram(t, "user-1")
	if err := programs.Create(t.Context(), p); err != nil {
		t.Fatal(err)
	}
	if _, err := db.ReadWrite.ExecContext(t.Context(),
		`UPDATE user_programs SET schedule = json_extract(schedule, '$.weeks') WHERE id = ?`, p.ID); err != nil {
		t.Fatal(err)
	}

	got, err := programs.GetByUserID(t.Context(), "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ScheduleDegraded {
		t.Fatalf("legacy schedule degraded: %v", got.ScheduleErr)
	}
	if got.TotalWeeks() != len(p.Schedule) || got.ScheduleVersion != domain.ScheduleVersion {
		t.Errorf("migrated schedule has %d weeks at version %d", got.TotalWeeks(), got.ScheduleVersion)
	}
}

func TestSQLite_RejectsOutOfRangeCompletion(t *testing.T) {
	db := newDatabase(t)
	programs := sqlite.NewSQLiteProgramRepository(db)
	completions := sqlite.NewSQLiteCompletionRepository(db)
	p := repotest.NewProgram(t, "user-1")
	if err := programs.Create(t.Context(), p); err != nil {
		t.Fatal(err)
	}

	fields := domain.CompletionFields{CompletionStatus: domain.CompletionFull, PercentComplete: 140}
	if _, err := completions.Upsert(t.Context(), p.ID, 1, 1, fields, time.Now()); err == nil {
		t.Error("Upsert() with percentComplete 140 succeeded")
	}
	list, err := completions.ListByProgramID(t.Context(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("ledger has %d entries after a rejected write", len(list))
	}
}
