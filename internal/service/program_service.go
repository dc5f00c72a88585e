package service

import (
	"alcyxob/hyrox-trainer/internal/analysis"
	"alcyxob/hyrox-trainer/internal/catalog"
	"alcyxob/hyrox-trainer/internal/domain"
	"alcyxob/hyrox-trainer/internal/generator"
	"alcyxob/hyrox-trainer/internal/repository"
	"alcyxob/hyrox-trainer/internal/storage"
	"alcyxob/hyrox-trainer/internal/tracking"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// --- Service Interface ---

// ProgramService orchestrates the training program of each user: enrollment,
// completion tracking and the derived views over the ledger.
type ProgramService interface {
	ListTemplates(ctx context.Context) []domain.ProgramTemplate
	GetTemplate(ctx context.Context, templateID string) (domain.ProgramTemplate, error)
	ValidatePersonalization(ctx context.Context, in generator.PersonalizationInput) generator.ValidationResult

	// GetCurrentProgram returns the user's program with its completions, or
	// ErrNotFound.
	GetCurrentProgram(ctx context.Context, userID string) (*domain.UserProgram, error)
	StartProgram(ctx context.Context, userID string, req StartRequest) (*domain.UserProgram, error)
	QuitProgram(ctx context.Context, userID string) error

	GetTodayWorkout(ctx context.Context, userID string) (*TodayWorkout, error)
	CompleteWorkout(ctx context.Context, userID string, in CompletionInput) (*domain.CompletedWorkout, error)
	GetMissedWorkouts(ctx context.Context, userID string) (domain.MissedWorkoutSummary, error)
	GetInsights(ctx context.Context, userID string) (*Insights, error)
	ExportProgram(ctx context.Context, userID string) (*ExportResult, error)
}

// StartRequest enrolls a user either in a template as-is or in a personalized
// program. Exactly one of TemplateID and Personalization must be set.
type StartRequest struct {
	TemplateID      string                          `json:"templateId,omitempty"`
	RaceDate        string                          `json:"raceDate,omitempty"` // template enrollment only
	Personalization *generator.PersonalizationInput `json:"personalization,omitempty"`
}

// CompletionInput marks the workout at (Week, DayOfWeek) as done. A missing
// CompletionStatus means full; a missing PercentComplete is derived from it.
type CompletionInput struct {
	Week             int                     `json:"week"`
	DayOfWeek        int                     `json:"dayOfWeek"`
	SessionID        string                  `json:"sessionId,omitempty"`
	ActualDuration   *int                    `json:"actualDuration,omitempty"`
	RPE              *int                    `json:"rpe,omitempty"`
	CompletionStatus domain.CompletionStatus `json:"completionStatus,omitempty"`
	PercentComplete  *int                    `json:"percentComplete,omitempty"`
	Performance      map[string]any          `json:"performance,omitempty"`
}

// TodayWorkout is the slot of the program falling on today.
type TodayWorkout struct {
	Date       time.Time                `json:"date"`
	Status     string                   `json:"status"`
	InProgram  bool                     `json:"inProgram"` // false before the start and after the last week
	Week       int                      `json:"week"`
	DayOfWeek  int                      `json:"dayOfWeek"`
	DayName    string                   `json:"dayName"`
	Phase      string                   `json:"phase,omitempty"`
	Theme      string                   `json:"theme,omitempty"`
	IsRestDay  bool                     `json:"isRestDay"`
	Completed  bool                     `json:"completed"`
	Degraded   bool                     `json:"degraded,omitempty"`
	Modifier   float64                  `json:"intensityModifier"`
	Workout    *domain.ScheduledWorkout `json:"workout"` // targets scaled by the modifier
	Completion *domain.CompletedWorkout `json:"completion,omitempty"`
}

// Insights combines the analyzer output with the program progress.
type Insights struct {
	Performance        domain.PerformanceAnalysis `json:"performance"`
	Readiness          domain.RaceReadinessScore  `json:"readiness"`
	ProjectedReadiness int                        `json:"projectedReadiness"`
	MissedImpact       int                        `json:"missedReadinessImpact"`
	Progress           tracking.Progress          `json:"progress"`
	IntensityModifier  float64                    `json:"intensityModifier"`
	SuggestedModifier  float64                    `json:"suggestedIntensityModifier"`
	Degraded           bool                       `json:"degraded,omitempty"`
}

// --- Service Implementation ---

type programService struct {
	programs     repository.ProgramRepository
	completions  repository.CompletionRepository
	fileStorage  storage.FileStorage // nil when exports are disabled
	detector     *tracking.Detector
	detectorCfg  tracking.DetectorConfig
	analyzer     *analysis.Analyzer
	logger       *slog.Logger
	locks        *userLocks
	now          func() time.Time
	exportExpiry time.Duration
}

// Option customizes a ProgramService.
type Option func(*programService)

// WithClock replaces the wall clock, e.g. in tests.
func WithClock(now func() time.Time) Option {
	return func(s *programService) { s.now = now }
}

// WithExportExpiry sets the lifetime of export download URLs.
func WithExportExpiry(d time.Duration) Option {
	return func(s *programService) { s.exportExpiry = d }
}

// NewProgramService creates a ProgramService. fileStorage may be nil, which
// disables exports.
func NewProgramService(
	programs repository.ProgramRepository,
	completions repository.CompletionRepository,
	fileStorage storage.FileStorage,
	detectorCfg tracking.DetectorConfig,
	analysisCfg analysis.Config,
	logger *slog.Logger,
	opts ...Option,
) ProgramService {
	s := &programService{
		programs:     programs,
		completions:  completions,
		fileStorage:  fileStorage,
		detector:     tracking.NewDetector(detectorCfg),
		detectorCfg:  detectorCfg,
		analyzer:     analysis.NewAnalyzer(analysisCfg),
		logger:       logger,
		locks:        newUserLocks(),
		now:          func() time.Time { return time.Now().UTC() },
		exportExpiry: storage.DefaultPresignedURLExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// === Templates ===

func (s *programService) ListTemplates(_ context.Context) []domain.ProgramTemplate {
	return catalog.ListTemplates()
}

func (s *programService) GetTemplate(_ context.Context, templateID string) (domain.ProgramTemplate, error) {
	tmpl, err := catalog.GetTemplateByID(templateID)
	if err != nil {
		return domain.ProgramTemplate{}, fmt.Errorf("%w: template %q", ErrNotFound, templateID)
	}
	return tmpl, nil
}

func (s *programService) ValidatePersonalization(_ context.Context, in generator.PersonalizationInput) generator.ValidationResult {
	return generator.ValidatePersonalization(in, s.now())
}

// === Program lifecycle ===

func (s *programService) GetCurrentProgram(ctx context.Context, userID string) (*domain.UserProgram, error) {
	program, completions, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	program.Completions = completions
	return program, nil
}

// StartProgram enrolls the user, replacing any program they have together
// with its completion history.
func (s *programService) StartProgram(ctx context.Context, userID string, req StartRequest) (*domain.UserProgram, error) {
	now := s.now()

	// 1. Validate Input and build the schedule
	var gp generator.GeneratedProgram
	switch {
	case req.TemplateID != "" && req.Personalization != nil:
		return nil, newValidationError("provide either templateId or personalization, not both")
	case req.Personalization != nil:
		if res := generator.ValidatePersonalization(*req.Personalization, now); !res.Valid {
			return nil, newValidationError(res.Errors...)
		}
		var err error
		if gp, err = generator.Generate(*req.Personalization, now); err != nil {
			return nil, newValidationError(err.Error())
		}
	case req.TemplateID != "":
		tmpl, err := s.GetTemplate(ctx, req.TemplateID)
		if err != nil {
			return nil, err
		}
		gp = generator.FromTemplate(tmpl, now)
		if req.RaceDate != "" {
			race, err := generator.ParseRaceDate(req.RaceDate, now.Location())
			if err != nil {
				return nil, newValidationError(fmt.Sprintf("raceDate %q is not a valid date", req.RaceDate))
			}
			if tracking.DaysBetween(now, race) < 0 {
				return nil, newValidationError(fmt.Sprintf("raceDate %s is in the past", race.Format(time.DateOnly)))
			}
			gp.RaceDate = &race
		}
	default:
		return nil, newValidationError("templateId or personalization is required")
	}

	program := &domain.UserProgram{
		UserID:            userID,
		ProgramID:         gp.ID,
		TemplateID:        gp.TemplateID,
		Name:              gp.Name,
		StartDate:         gp.StartDate,
		RaceDate:          gp.RaceDate,
		FitnessLevel:      gp.FitnessLevel,
		DaysPerWeek:       gp.DaysPerWeek,
		WeakStations:      gp.WeakStations,
		Schedule:          gp.Weeks,
		IntensityModifier: domain.DefaultIntensityModifier,
	}

	// 2. Replace the stored program
	unlock := s.locks.lock(userID)
	defer unlock()

	if err := s.programs.Create(ctx, program); err != nil {
		return nil, persistenceError("create program", err)
	}
	program.Completions = []domain.CompletedWorkout{}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "program started",
		slog.String("program_id", program.ID),
		slog.String("template_id", program.TemplateID),
		slog.Int("weeks", program.TotalWeeks()))
	return program, nil
}

// QuitProgram deletes the program and its history irreversibly. A stored
// export is removed as well; failing to remove it does not fail the call.
func (s *programService) QuitProgram(ctx context.Context, userID string) error {
	unlock := s.locks.lock(userID)
	defer unlock()

	program, err := s.programs.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errNoProgram
		}
		return persistenceError("get program", err)
	}
	if err = s.programs.DeleteByUserID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errNoProgram
		}
		return persistenceError("delete program", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "program quit", slog.String("program_id", program.ID))

	if s.fileStorage != nil {
		key := storage.ExportKey(userID, program.ID)
		if err = s.fileStorage.DeleteObject(ctx, key); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "failed to delete program export",
				slog.String("key", key), slog.Any("error", err))
		}
	}
	return nil
}

// === Completion tracking ===

// CompleteWorkout records the completion, then recomputes the analysis from
// the full ledger and stores a new intensity modifier when it moved by at
// least the commit threshold. The modifier update is advisory: its failure is
// logged and the recorded completion is still returned.
func (s *programService) CompleteWorkout(ctx context.Context, userID string, in CompletionInput) (*domain.CompletedWorkout, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	program, err := s.programs.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errNoProgram
		}
		return nil, persistenceError("get program", err)
	}

	// 1. Validate Input
	fields, err := completionFields(in, program)
	if err != nil {
		return nil, err
	}

	// 2. Upsert the ledger entry
	now := s.now()
	saved, err := s.completions.Upsert(ctx, program.ID, in.Week, in.DayOfWeek, fields, now)
	if err != nil {
		return nil, persistenceError("record completion", err)
	}

	// 3. Re-evaluate the intensity modifier from the full ledger
	completions, err := s.completions.ListByProgramID(ctx, program.ID)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to reload ledger for analysis",
			slog.String("program_id", program.ID), slog.Any("error", err))
		return saved, nil
	}
	if program.ScheduleDegraded {
		s.warnDegraded(ctx, program, "intensity modifier left unchanged")
		return saved, nil
	}

	pa := s.analyzer.AnalyzeRecentPerformance(s.performanceInput(program, completions, now))
	suggested := s.analyzer.SuggestIntensityModifier(pa)
	if !s.analyzer.ShouldCommitModifier(program.IntensityModifier, suggested) {
		return saved, nil
	}
	if err = s.programs.UpdateIntensityModifier(ctx, program.ID, suggested); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to update intensity modifier",
			slog.String("program_id", program.ID), slog.Any("error", err))
		return saved, nil
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "intensity modifier updated",
		slog.String("program_id", program.ID),
		slog.Float64("from", program.IntensityModifier),
		slog.Float64("to", suggested))
	return saved, nil
}

// completionFields validates in against the ledger contract and fills in the
// defaults.
func completionFields(in CompletionInput, program *domain.UserProgram) (domain.CompletionFields, error) {
	var problems []string
	if in.Week < 1 {
		problems = append(problems, fmt.Sprintf("week must be at least 1, got %d", in.Week))
	} else if total := program.TotalWeeks(); !program.ScheduleDegraded && in.Week > total {
		problems = append(problems, fmt.Sprintf("week %d is beyond the program's %d weeks", in.Week, total))
	}
	if in.DayOfWeek < 0 || in.DayOfWeek > 6 {
		problems = append(problems, fmt.Sprintf("dayOfWeek must be between 0 and 6, got %d", in.DayOfWeek))
	}
	if in.RPE != nil && (*in.RPE < 1 || *in.RPE > 10) {
		problems = append(problems, fmt.Sprintf("rpe must be between 1 and 10, got %d", *in.RPE))
	}
	status := in.CompletionStatus
	if status == "" {
		status = domain.CompletionFull
	}
	if !status.Valid() {
		problems = append(problems, fmt.Sprintf("completionStatus %q must be one of full, partial, skipped", in.CompletionStatus))
	}
	if in.PercentComplete != nil && (*in.PercentComplete < 0 || *in.PercentComplete > 100) {
		problems = append(problems, fmt.Sprintf("percentComplete must be between 0 and 100, got %d", *in.PercentComplete))
	}
	if in.ActualDuration != nil && *in.ActualDuration < 0 {
		problems = append(problems, fmt.Sprintf("actualDuration must not be negative, got %d", *in.ActualDuration))
	}
	if len(problems) > 0 {
		return domain.CompletionFields{}, newValidationError(problems...)
	}

	percent := defaultPercent(status)
	if in.PercentComplete != nil {
		percent = *in.PercentComplete
	}
	return domain.CompletionFields{
		SessionID:        in.SessionID,
		ActualDuration:   in.ActualDuration,
		RPE:              in.RPE,
		CompletionStatus: status,
		PercentComplete:  percent,
		Performance:      in.Performance,
	}, nil
}

func defaultPercent(status domain.CompletionStatus) int {
	switch status {
	case domain.CompletionSkipped:
		return 0
	case domain.CompletionPartial:
		return 50
	default:
		return 100
	}
}

// === Derived views ===

func (s *programService) GetMissedWorkouts(ctx context.Context, userID string) (domain.MissedWorkoutSummary, error) {
	program, completions, err := s.load(ctx, userID)
	if err != nil {
		return domain.MissedWorkoutSummary{}, err
	}
	if program.ScheduleDegraded {
		s.warnDegraded(ctx, program, "no missed workouts reported")
	}
	return s.detector.Detect(program.StartDate, program.Schedule, completions, s.now()), nil
}

func (s *programService) GetInsights(ctx context.Context, userID string) (*Insights, error) {
	program, completions, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.insights(ctx, program, completions, s.now()), nil
}

func (s *programService) insights(ctx context.Context, program *domain.UserProgram, completions []domain.CompletedWorkout, now time.Time) *Insights {
	pa := s.analyzer.AnalyzeRecentPerformance(s.performanceInput(program, completions, now))

	var progress tracking.Progress
	if program.ScheduleDegraded {
		s.warnDegraded(ctx, program, "readiness estimated from fallback workout count")
		progress = s.fallbackProgress(program, completions, now)
	} else {
		progress = tracking.ComputeProgress(program, completions, now, s.detectorCfg.KeyCoverageThreshold)
	}

	readiness := s.analyzer.CalculateRaceReadiness(analysis.ReadinessInput{
		ScheduledToDate:      progress.ScheduledToDate,
		CompletedToDate:      progress.CompletedToDate,
		KeyWorkoutsCompleted: progress.KeyCompleted,
		KeyWorkoutsExpected:  progress.KeyExpected,
		WeeksUntilRace:       progress.WeeksUntilRace,
		CurrentWeek:          progress.CurrentWeek,
	})
	missed := s.detector.Detect(program.StartDate, program.Schedule, completions, now)

	return &Insights{
		Performance:        pa,
		Readiness:          readiness,
		ProjectedReadiness: analysis.ProjectedReadiness(readiness.Score, missed.ReadinessImpact),
		MissedImpact:       missed.ReadinessImpact,
		Progress:           progress,
		IntensityModifier:  program.IntensityModifier,
		SuggestedModifier:  s.analyzer.SuggestIntensityModifier(pa),
		Degraded:           program.ScheduleDegraded,
	}
}

// fallbackProgress stands in for ComputeProgress when the schedule cannot be
// read: the number of workouts due is assumed to be the configured estimate.
func (s *programService) fallbackProgress(program *domain.UserProgram, completions []domain.CompletedWorkout, now time.Time) tracking.Progress {
	pr := tracking.Progress{
		CurrentWeek:     max(tracking.DaysBetween(program.StartDate, now), 0)/7 + 1,
		ScheduledToDate: s.analyzer.Config().FallbackWorkoutEstimate,
		Status:          tracking.StatusActive,
	}
	for _, c := range completions {
		if c.CompletionStatus != domain.CompletionSkipped {
			pr.CompletedToDate++
		}
	}
	if program.RaceDate != nil {
		days := tracking.DaysBetween(now, *program.RaceDate)
		weeks := 0
		if days > 0 {
			weeks = (days + 6) / 7
		} else {
			pr.Status = tracking.StatusCompleted
		}
		pr.WeeksUntilRace = &weeks
	}
	return pr
}

func (s *programService) GetTodayWorkout(ctx context.Context, userID string) (*TodayWorkout, error) {
	program, completions, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	today := &TodayWorkout{
		Date:      tracking.StartOfDay(now),
		Status:    tracking.StatusActive,
		DayOfWeek: int(now.Weekday()),
		DayName:   now.Weekday().String(),
		Modifier:  program.IntensityModifier,
		Degraded:  program.ScheduleDegraded,
	}
	if program.ScheduleDegraded {
		s.warnDegraded(ctx, program, "today's workout unavailable")
		return today, nil
	}
	today.Status = tracking.ComputeProgress(program, completions, now, s.detectorCfg.KeyCoverageThreshold).Status

	days := tracking.DaysBetween(program.StartDate, now)
	week := days/7 + 1
	if days < 0 || week > program.TotalWeeks() {
		return today, nil
	}
	today.InProgram = true
	today.Week = week
	wp := program.Schedule[week-1]
	today.Phase, today.Theme = wp.Phase, wp.Theme

	w, ok := domain.WorkoutAt(program.Schedule, week, today.DayOfWeek)
	if !ok || w.Type == domain.WorkoutRest {
		today.IsRestDay = true
	}
	if ok {
		scaled := scaleWorkout(w, program.IntensityModifier)
		today.Workout = &scaled
	}
	if c, done := tracking.IndexCompletions(completions)[tracking.Key{Week: week, DayOfWeek: today.DayOfWeek}]; done {
		today.Completed = true
		today.Completion = &c
	}
	return today, nil
}

// === helpers ===

// load fetches the user's program and its ledger.
func (s *programService) load(ctx context.Context, userID string) (*domain.UserProgram, []domain.CompletedWorkout, error) {
	program, err := s.programs.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, errNoProgram
		}
		return nil, nil, persistenceError("get program", err)
	}
	completions, err := s.completions.ListByProgramID(ctx, program.ID)
	if err != nil {
		return nil, nil, persistenceError("list completions", err)
	}
	return program, completions, nil
}

func (s *programService) performanceInput(program *domain.UserProgram, completions []domain.CompletedWorkout, now time.Time) analysis.PerformanceInput {
	return analysis.PerformanceInput{
		Completions: completions,
		Slots:       tracking.ScheduledSlots(program.StartDate, program.Schedule),
		Now:         now,
	}
}

func (s *programService) warnDegraded(ctx context.Context, program *domain.UserProgram, fallback string) {
	s.logger.LogAttrs(ctx, slog.LevelWarn, "stored schedule unreadable, using fallback",
		slog.String("program_id", program.ID),
		slog.String("fallback", fallback),
		slog.Any("error", program.ScheduleErr))
}
