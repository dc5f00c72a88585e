package analysis_test

import (
	"alcyxob/hyrox-trainer/internal/analysis"
	"alcyxob/hyrox-trainer/internal/domain"
	"alcyxob/hyrox-trainer/internal/tracking"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var start = time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC) // Monday

func day(n, hour int) time.Time {
	return start.AddDate(0, 0, n).Add(time.Duration(hour) * time.Hour)
}

func ptr[T any](v T) *T { return &v }

// twoWeekSlots schedules Monday, Wednesday and Friday key workouts.
func twoWeekSlots() []tracking.Slot {
	var weeks []domain.WeekPlan
	for w := 1; w <= 2; w++ {
		weeks = append(weeks, domain.WeekPlan{Week: w, Workouts: []domain.ScheduledWorkout{
			{DayOfWeek: 1, Type: domain.WorkoutFull},
			{DayOfWeek: 3, Type: domain.WorkoutCoverage, Params: domain.WorkoutParams{Coverage: 100}},
			{DayOfWeek: 5, Type: domain.WorkoutCoverage, Params: domain.WorkoutParams{Coverage: 80}},
			{DayOfWeek: 0, Type: domain.WorkoutRest},
		}})
	}
	return tracking.ScheduledSlots(start, weeks)
}

func done(week, dow, offset int, status domain.CompletionStatus, pct int, rpe *int) domain.CompletedWorkout {
	return domain.CompletedWorkout{
		Week: week, DayOfWeek: dow, CompletedAt: day(offset, 18),
		CompletionFields: domain.CompletionFields{CompletionStatus: status, PercentComplete: pct, RPE: rpe},
	}
}

func keyWeek(rpe int) []domain.CompletedWorkout {
	return []domain.CompletedWorkout{
		done(1, 1, 0, domain.CompletionFull, 100, ptr(rpe)),
		done(1, 3, 2, domain.CompletionFull, 100, ptr(rpe)),
		done(1, 5, 4, domain.CompletionFull, 100, ptr(rpe)),
	}
}

func TestHardKeySessionsRaiseFatigueAndLowerModifier(t *testing.T) {
	a := analysis.NewAnalyzer(analysis.DefaultConfig())
	now := day(5, 10) // Saturday

	easy := a.AnalyzeRecentPerformance(analysis.PerformanceInput{Completions: keyWeek(4), Slots: twoWeekSlots(), Now: now})
	hard := a.AnalyzeRecentPerformance(analysis.PerformanceInput{Completions: keyWeek(9), Slots: twoWeekSlots(), Now: now})

	if hard.FatigueScore <= easy.FatigueScore {
		t.Errorf("fatigue at RPE 9 = %.1f, at RPE 4 = %.1f: want higher", hard.FatigueScore, easy.FatigueScore)
	}
	easyMod, hardMod := a.SuggestIntensityModifier(easy), a.SuggestIntensityModifier(hard)
	if hardMod > easyMod {
		t.Errorf("modifier at RPE 9 = %.2f, at RPE 4 = %.2f: want not higher", hardMod, easyMod)
	}
	if math.Abs(easyMod-1.1) > 1e-9 || math.Abs(hardMod-0.95) > 1e-9 {
		t.Errorf("modifiers = %.2f / %.2f, want 1.10 / 0.95", easyMod, hardMod)
	}
	if easy.RecentCompletionRate != 100 || easy.ScheduledInWindow != 3 || easy.CompletedInWindow != 3 {
		t.Errorf("window = %.1f%% of %d (%d completed)", easy.RecentCompletionRate, easy.ScheduledInWindow, easy.CompletedInWindow)
	}
	if hard.AverageRPE == nil || *hard.AverageRPE != 9 {
		t.Errorf("AverageRPE = %v, want 9", hard.AverageRPE)
	}
	if !hasAlert(hard, domain.SeverityWarning, "Average RPE") {
		t.Errorf("alerts = %+v, want a high RPE warning", hard.Alerts)
	}
}

func TestRecentCompletionRate(t *testing.T) {
	tests := []struct {
		name        string
		completions []domain.CompletedWorkout
		now         time.Time
		wantRate    float64
		wantDue     int
	}{
		{
			name:     "nothing recorded",
			now:      day(5, 10),
			wantRate: 0, wantDue: 3,
		},
		{
			name: "full below credit threshold counts its percent",
			completions: []domain.CompletedWorkout{
				done(1, 1, 0, domain.CompletionFull, 70, nil),
				done(1, 3, 2, domain.CompletionFull, 80, nil),
				done(1, 5, 4, domain.CompletionFull, 100, nil),
			},
			now:      day(5, 10),
			wantRate: 90, wantDue: 3,
		},
		{
			name: "partial and skipped",
			completions: []domain.CompletedWorkout{
				done(1, 1, 0, domain.CompletionPartial, 50, nil),
				done(1, 3, 2, domain.CompletionSkipped, 0, nil),
			},
			now:      day(5, 10),
			wantRate: 16.7, wantDue: 3,
		},
		{
			name:     "today's open workout is not due yet",
			now:      day(4, 8), // Friday morning
			wantRate: 0, wantDue: 2,
		},
		{
			name:        "today's workout counts once recorded",
			completions: []domain.CompletedWorkout{done(1, 5, 4, domain.CompletionFull, 100, nil)},
			now:         day(4, 20),
			wantRate:    33.3, wantDue: 3,
		},
	}
	a := analysis.NewAnalyzer(analysis.DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.AnalyzeRecentPerformance(analysis.PerformanceInput{Completions: tt.completions, Slots: twoWeekSlots(), Now: tt.now})
			if math.Abs(got.RecentCompletionRate-tt.wantRate) > 0.05 || got.ScheduledInWindow != tt.wantDue {
				t.Errorf("rate %.1f of %d due, want %.1f of %d", got.RecentCompletionRate, got.ScheduledInWindow, tt.wantRate, tt.wantDue)
			}
		})
	}
}

func TestRecentCompletionRate_WithoutSchedule(t *testing.T) {
	a := analysis.NewAnalyzer(analysis.DefaultConfig())
	completions := []domain.CompletedWorkout{
		done(1, 1, 0, domain.CompletionFull, 100, nil),
		done(1, 3, 2, domain.CompletionSkipped, 0, nil),
	}
	got := a.AnalyzeRecentPerformance(analysis.PerformanceInput{Completions: completions, Now: day(5, 10)})
	if got.RecentCompletionRate != 50 || got.ScheduledInWindow != 2 {
		t.Errorf("rate %.1f of %d, want 50 of 2", got.RecentCompletionRate, got.ScheduledInWindow)
	}
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name        string
		completions []domain.CompletedWorkout
		now         time.Time
		want        domain.Trend
	}{
		{
			name:        "first week has nothing to compare",
			completions: keyWeek(6),
			now:         day(5, 10),
			want:        domain.TrendStable,
		},
		{
			name: "completion rate recovers",
			completions: []domain.CompletedWorkout{
				done(1, 1, 0, domain.CompletionFull, 100, ptr(6)),
				done(2, 1, 7, domain.CompletionFull, 100, ptr(6)),
				done(2, 3, 9, domain.CompletionFull, 100, ptr(6)),
				done(2, 5, 11, domain.CompletionFull, 100, ptr(6)),
			},
			now:  day(12, 10),
			want: domain.TrendImproving,
		},
		{
			name: "effort climbs at the same completion",
			completions: []domain.CompletedWorkout{
				done(1, 1, 0, domain.CompletionFull, 100, ptr(5)),
				done(1, 3, 2, domain.CompletionFull, 100, ptr(5)),
				done(1, 5, 4, domain.CompletionFull, 100, ptr(5)),
				done(2, 1, 7, domain.CompletionFull, 100, ptr(8)),
				done(2, 3, 9, domain.CompletionFull, 100, ptr(8)),
				done(2, 5, 11, domain.CompletionFull, 100, ptr(8)),
			},
			now:  day(12, 10),
			want: domain.TrendDeclining,
		},
		{
			name: "better completion offset by harder effort",
			completions: []domain.CompletedWorkout{
				done(1, 1, 0, domain.CompletionFull, 100, ptr(5)),
				done(2, 1, 7, domain.CompletionFull, 100, ptr(8)),
				done(2, 3, 9, domain.CompletionFull, 100, ptr(8)),
				done(2, 5, 11, domain.CompletionFull, 100, ptr(8)),
			},
			now:  day(12, 10),
			want: domain.TrendStable,
		},
	}
	a := analysis.NewAnalyzer(analysis.DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.AnalyzeRecentPerformance(analysis.PerformanceInput{Completions: tt.completions, Slots: twoWeekSlots(), Now: tt.now})
			if got.OverallTrend != tt.want {
				t.Errorf("OverallTrend = %s, want %s", got.OverallTrend, tt.want)
			}
		})
	}
}

func TestAlerts(t *testing.T) {
	a := analysis.NewAnalyzer(analysis.DefaultConfig())
	skipped := []domain.CompletedWorkout{
		done(1, 1, 0, domain.CompletionSkipped, 0, nil),
		done(1, 3, 2, domain.CompletionSkipped, 0, nil),
		done(1, 5, 4, domain.CompletionSkipped, 0, nil),
	}
	got := a.AnalyzeRecentPerformance(analysis.PerformanceInput{Completions: skipped, Slots: twoWeekSlots(), Now: day(5, 10)})

	if got.ConsecutiveSkipped != 3 {
		t.Errorf("ConsecutiveSkipped = %d, want 3", got.ConsecutiveSkipped)
	}
	if !hasAlert(got, domain.SeverityCritical, "skipped in a row") {
		t.Errorf("alerts = %+v, want consecutive skip alert", got.Alerts)
	}
	if !hasAlert(got, domain.SeverityWarning, "completed") {
		t.Errorf("alerts = %+v, want low completion warning", got.Alerts)
	}
	if len(got.Recommendations) != len(got.Alerts) {
		t.Errorf("%d recommendations for %d alerts", len(got.Recommendations), len(got.Alerts))
	}
}

func TestFatigueScore_Bounded(t *testing.T) {
	a := analysis.NewAnalyzer(analysis.DefaultConfig())
	var completions []domain.CompletedWorkout
	for i := range 14 {
		c := done(i/7+1, i%7, i, domain.CompletionFull, 100, ptr(10))
		c.Performance = map[string]any{"feeling": "too_hard"}
		completions = append(completions, c)
	}
	got := a.AnalyzeRecentPerformance(analysis.PerformanceInput{Completions: completions, Slots: twoWeekSlots(), Now: day(13, 20)})
	if got.FatigueScore < 0 || got.FatigueScore > 100 {
		t.Fatalf("FatigueScore = %.1f out of bounds", got.FatigueScore)
	}
	if got.FatigueScore < 85 {
		t.Errorf("FatigueScore = %.1f, want critical for RPE 10 every day", got.FatigueScore)
	}
	if !hasAlert(got, domain.SeverityCritical, "Fatigue") {
		t.Errorf("alerts = %+v, want critical fatigue", got.Alerts)
	}
}

func TestSuggestIntensityModifier_Bounds(t *testing.T) {
	cfg := analysis.DefaultConfig()
	a := analysis.NewAnalyzer(cfg)
	for _, trend := range []domain.Trend{domain.TrendImproving, domain.TrendStable, domain.TrendDeclining} {
		for _, rate := range []float64{0, 25, 50, 75, 90, 100} {
			for _, fatigue := range []float64{0, 29, 50, 71, 100} {
				pa := domain.PerformanceAnalysis{
					RecentCompletionRate: rate, ScheduledInWindow: 4, CompletedInWindow: 2,
					OverallTrend: trend, FatigueScore: fatigue,
				}
				got := a.SuggestIntensityModifier(pa)
				if got < cfg.ModifierMin || got > cfg.ModifierMax {
					t.Errorf("trend %s rate %.0f fatigue %.0f: modifier %.2f out of bounds", trend, rate, fatigue, got)
				}
			}
		}
	}

	if got := a.SuggestIntensityModifier(domain.PerformanceAnalysis{OverallTrend: domain.TrendStable}); got != 1.0 {
		t.Errorf("no data modifier = %.2f, want 1.0", got)
	}
}

func TestSuggestIntensityModifier_TightBoundsClamp(t *testing.T) {
	cfg := analysis.DefaultConfig()
	cfg.ModifierMin, cfg.ModifierMax = 0.9, 1.05
	a := analysis.NewAnalyzer(cfg)

	high := a.SuggestIntensityModifier(domain.PerformanceAnalysis{
		RecentCompletionRate: 100, ScheduledInWindow: 3, CompletedInWindow: 3,
		OverallTrend: domain.TrendImproving, FatigueScore: 10,
	})
	low := a.SuggestIntensityModifier(domain.PerformanceAnalysis{
		RecentCompletionRate: 0, ScheduledInWindow: 3,
		OverallTrend: domain.TrendDeclining, FatigueScore: 90,
	})
	if high != 1.05 || low != 0.9 {
		t.Errorf("modifiers = %.2f / %.2f, want 1.05 / 0.90", high, low)
	}
}

func TestShouldCommitModifier(t *testing.T) {
	a := analysis.NewAnalyzer(analysis.DefaultConfig())
	tests := []struct {
		current, suggested float64
		want               bool
	}{
		{current: 1.0, suggested: 1.0, want: false},
		{current: 1.0, suggested: 1.04, want: false},
		{current: 1.0, suggested: 1.05, want: true},
		{current: 1.1, suggested: 1.05, want: true},
		{current: 1.0, suggested: 0.7, want: true},
	}
	for _, tt := range tests {
		if got := a.ShouldCommitModifier(tt.current, tt.suggested); got != tt.want {
			t.Errorf("ShouldCommitModifier(%.2f, %.2f) = %v, want %v", tt.current, tt.suggested, got, tt.want)
		}
	}
}

func TestCalculateRaceReadiness(t *testing.T) {
	tests := []struct {
		name      string
		in        analysis.ReadinessInput
		wantScore int
		wantData  bool
	}{
		{
			name:      "nothing scheduled yet",
			in:        analysis.ReadinessInput{CurrentWeek: 1},
			wantScore: 50,
		},
		{
			name: "perfect mid program",
			in: analysis.ReadinessInput{ScheduledToDate: 20, CompletedToDate: 20,
				KeyWorkoutsCompleted: 4, KeyWorkoutsExpected: 4, CurrentWeek: 5},
			wantScore: 100, wantData: true,
		},
		{
			name: "perfect but too early for elite",
			in: analysis.ReadinessInput{ScheduledToDate: 5, CompletedToDate: 5,
				KeyWorkoutsCompleted: 1, KeyWorkoutsExpected: 1, CurrentWeek: 1},
			wantScore: 79, wantData: true,
		},
		{
			name: "key sessions weigh more",
			in: analysis.ReadinessInput{ScheduledToDate: 10, CompletedToDate: 5,
				KeyWorkoutsCompleted: 2, KeyWorkoutsExpected: 2, CurrentWeek: 4},
			wantScore: 80, wantData: true,
		},
		{
			name: "no key sessions expected uses completion ratio",
			in: analysis.ReadinessInput{ScheduledToDate: 10, CompletedToDate: 5,
				CurrentWeek: 2},
			wantScore: 50, wantData: true,
		},
		{
			name: "urgency one week out",
			in: analysis.ReadinessInput{ScheduledToDate: 10, CompletedToDate: 5,
				WeeksUntilRace: ptr(1), CurrentWeek: 7},
			// 50 - (3/4)*(0.5)*20
			wantScore: 43, wantData: true,
		},
		{
			name: "race far away has no urgency",
			in: analysis.ReadinessInput{ScheduledToDate: 10, CompletedToDate: 5,
				WeeksUntilRace: ptr(9), CurrentWeek: 3},
			wantScore: 50, wantData: true,
		},
		{
			name: "nothing done on race week",
			in: analysis.ReadinessInput{ScheduledToDate: 30, KeyWorkoutsExpected: 6,
				WeeksUntilRace: ptr(0), CurrentWeek: 8},
			wantScore: 0, wantData: true,
		},
	}
	a := analysis.NewAnalyzer(analysis.DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.CalculateRaceReadiness(tt.in)
			if got.Score != tt.wantScore || got.HasData != tt.wantData {
				t.Errorf("score %d (data %v), want %d (data %v)", got.Score, got.HasData, tt.wantScore, tt.wantData)
			}
			if got.Message == "" {
				t.Error("missing message")
			}
			if again := a.CalculateRaceReadiness(tt.in); !cmp.Equal(got, again) {
				t.Errorf("not deterministic: %+v then %+v", got, again)
			}
		})
	}
}

func TestCalculateRaceReadiness_AlwaysInRange(t *testing.T) {
	a := analysis.NewAnalyzer(analysis.DefaultConfig())
	for scheduled := 0; scheduled <= 12; scheduled += 3 {
		for completed := 0; completed <= 15; completed += 5 {
			for keyExp := 0; keyExp <= 4; keyExp += 2 {
				for keyDone := 0; keyDone <= 6; keyDone += 3 {
					for _, weeks := range []*int{nil, ptr(-1), ptr(0), ptr(3), ptr(20)} {
						got := a.CalculateRaceReadiness(analysis.ReadinessInput{
							ScheduledToDate: scheduled, CompletedToDate: completed,
							KeyWorkoutsExpected: keyExp, KeyWorkoutsCompleted: keyDone,
							WeeksUntilRace: weeks, CurrentWeek: 4,
						})
						if got.Score < 0 || got.Score > 100 {
							t.Fatalf("score %d out of range", got.Score)
						}
					}
				}
			}
		}
	}
}

func TestReadinessMessageBands(t *testing.T) {
	a := analysis.NewAnalyzer(analysis.DefaultConfig())
	tests := []struct {
		completed int
		prefix    string
	}{
		{completed: 10, prefix: "Elite"},
		{completed: 7, prefix: "On track"},
		{completed: 5, prefix: "Needs focus"},
		{completed: 2, prefix: "Significant gaps"},
	}
	for _, tt := range tests {
		got := a.CalculateRaceReadiness(analysis.ReadinessInput{ScheduledToDate: 10, CompletedToDate: tt.completed, CurrentWeek: 6})
		if !strings.HasPrefix(got.Message, tt.prefix) {
			t.Errorf("score %d message %q, want prefix %q", got.Score, got.Message, tt.prefix)
		}
	}
}

func TestProjectedReadiness(t *testing.T) {
	if got := analysis.ProjectedReadiness(70, -16); got != 54 {
		t.Errorf("ProjectedReadiness(70, -16) = %d, want 54", got)
	}
	if got := analysis.ProjectedReadiness(20, -50); got != 0 {
		t.Errorf("ProjectedReadiness(20, -50) = %d, want 0", got)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := analysis.DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	cfg := analysis.DefaultConfig()
	cfg.ModifierMin, cfg.ModifierMax = 1.2, 0.8
	if err := cfg.Validate(); err == nil {
		t.Error("inverted modifier bounds accepted")
	}
}

func hasAlert(pa domain.PerformanceAnalysis, sev domain.Severity, contains string) bool {
	for _, al := range pa.Alerts {
		if al.Severity == sev && strings.Contains(al.Message, contains) {
			return true
		}
	}
	return false
}

