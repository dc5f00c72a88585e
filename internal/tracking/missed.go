package tracking

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"errors"
	"fmt"
	"sort"
	"time"
)

// DetectorConfig holds the heuristic constants of missed-workout detection.
type DetectorConfig struct {
	// Misses at most this many days old are recent.
	CriticalWindowDays int `mapstructure:"critical_window_days"`
	// Misses older than this are stale and rated low.
	MediumWindowDays int `mapstructure:"medium_window_days"`
	// Misses older than this are not worth making up.
	StaleAfterDays int `mapstructure:"stale_after_days"`

	KeyCoverageThreshold int `mapstructure:"key_coverage_threshold"`

	ImpactCritical int `mapstructure:"impact_critical"`
	ImpactHigh     int `mapstructure:"impact_high"`
	ImpactMedium   int `mapstructure:"impact_medium"`
	ImpactLow      int `mapstructure:"impact_low"`

	// MinReadinessImpact floors the aggregate impact.
	MinReadinessImpact int `mapstructure:"min_readiness_impact"`
	MaxRecommendations int `mapstructure:"max_recommendations"`
}

func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		CriticalWindowDays:   3,
		MediumWindowDays:     7,
		StaleAfterDays:       7,
		KeyCoverageThreshold: domain.DefaultKeyCoverageThreshold,
		ImpactCritical:       -8,
		ImpactHigh:           -5,
		ImpactMedium:         -3,
		ImpactLow:            -1,
		MinReadinessImpact:   -50,
		MaxRecommendations:   3,
	}
}

// Validate rejects windows and impacts that contradict each other.
func (c DetectorConfig) Validate() error {
	var problems []error
	if c.CriticalWindowDays < 1 || c.MediumWindowDays < c.CriticalWindowDays {
		problems = append(problems, fmt.Errorf("windows must satisfy 1 <= critical (%d) <= medium (%d)",
			c.CriticalWindowDays, c.MediumWindowDays))
	}
	if !(c.ImpactCritical <= c.ImpactHigh && c.ImpactHigh <= c.ImpactMedium && c.ImpactMedium <= c.ImpactLow && c.ImpactLow < 0) {
		problems = append(problems, errors.New("impacts must be negative and ordered critical <= high <= medium <= low"))
	}
	if c.MinReadinessImpact > 0 {
		problems = append(problems, errors.New("min_readiness_impact must not be positive"))
	}
	if c.MaxRecommendations < 0 {
		problems = append(problems, errors.New("max_recommendations must not be negative"))
	}
	return errors.Join(problems...)
}

// Detector finds scheduled workouts that were neither done nor skipped.
type Detector struct {
	cfg DetectorConfig
}

func NewDetector(cfg DetectorConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Detect lists every non-rest workout scheduled on a day before today that
// has no ledger entry, in calendar order. Any ledger entry, including a
// skipped one, resolves the slot.
func (d *Detector) Detect(start time.Time, weeks []domain.WeekPlan, completions []domain.CompletedWorkout, now time.Time) domain.MissedWorkoutSummary {
	summary := domain.MissedWorkoutSummary{
		MissedWorkouts:  []domain.MissedWorkout{},
		Recommendations: []string{},
	}
	done := IndexCompletions(completions)

	for _, s := range ScheduledSlots(start, weeks) {
		if DaysBetween(s.Date, now) < 1 {
			continue
		}
		if _, ok := done[Key{Week: s.Week, DayOfWeek: s.DayOfWeek}]; ok {
			continue
		}

		days := max(1, int(now.Sub(s.Date).Hours()/24))
		importance := d.importance(s.Workout, days)
		mw := domain.MissedWorkout{
			Week:              s.Week,
			DayOfWeek:         s.DayOfWeek,
			DayName:           domain.DayName(s.DayOfWeek),
			ScheduledDate:     s.Date,
			Workout:           s.Workout,
			DaysSinceMissed:   days,
			Importance:        importance,
			SuggestedAction:   d.action(importance, days),
			ImpactOnReadiness: d.impact(importance),
		}
		summary.MissedWorkouts = append(summary.MissedWorkouts, mw)
		summary.ReadinessImpact += mw.ImpactOnReadiness
	}

	summary.TotalMissed = len(summary.MissedWorkouts)
	summary.ReadinessImpact = max(summary.ReadinessImpact, d.cfg.MinReadinessImpact)
	summary.Recommendations = d.recommend(summary.MissedWorkouts)
	return summary
}

func (d *Detector) importance(w domain.ScheduledWorkout, days int) domain.Importance {
	key := w.IsKey(d.cfg.KeyCoverageThreshold)
	switch {
	case days > d.cfg.MediumWindowDays:
		return domain.ImportanceLow
	case key && days <= d.cfg.CriticalWindowDays:
		return domain.ImportanceCritical
	case key, days <= d.cfg.CriticalWindowDays:
		return domain.ImportanceHigh
	default:
		return domain.ImportanceMedium
	}
}

func (d *Detector) action(importance domain.Importance, days int) domain.RecoveryAction {
	switch {
	case importance == domain.ImportanceLow, days > d.cfg.StaleAfterDays:
		return domain.ActionSkip
	case importance == domain.ImportanceCritical:
		return domain.ActionMakeupFull
	default:
		return domain.ActionMakeupCondensed
	}
}

func (d *Detector) impact(importance domain.Importance) int {
	switch importance {
	case domain.ImportanceCritical:
		return d.cfg.ImpactCritical
	case domain.ImportanceHigh:
		return d.cfg.ImpactHigh
	case domain.ImportanceMedium:
		return d.cfg.ImpactMedium
	default:
		return d.cfg.ImpactLow
	}
}

func (d *Detector) recommend(missed []domain.MissedWorkout) []string {
	recs := []string{}
	if len(missed) == 0 {
		return recs
	}

	bySeverity := make([]domain.MissedWorkout, len(missed))
	copy(bySeverity, missed)
	sort.SliceStable(bySeverity, func(i, j int) bool {
		ri, rj := bySeverity[i].Importance.Rank(), bySeverity[j].Importance.Rank()
		if ri != rj {
			return ri < rj
		}
		return bySeverity[i].DaysSinceMissed < bySeverity[j].DaysSinceMissed
	})

	skipped := 0
	for _, m := range bySeverity {
		if m.SuggestedAction == domain.ActionSkip {
			skipped++
			continue
		}
		if len(recs) >= d.cfg.MaxRecommendations {
			continue
		}
		title := m.Workout.Title
		if title == "" {
			title = string(m.Workout.Type) + " workout"
		}
		switch m.SuggestedAction {
		case domain.ActionMakeupFull:
			recs = append(recs, fmt.Sprintf("Make up %s from %s of week %d in full within the next two days; it is a key session.",
				title, m.DayName, m.Week))
		default:
			recs = append(recs, fmt.Sprintf("Fit a shortened %s (from %s of week %d) into an easy day this week.",
				title, m.DayName, m.Week))
		}
	}
	if skipped > 0 {
		recs = append(recs, fmt.Sprintf("Let go of %d older missed workout(s) and stay with the current week.", skipped))
	}
	return recs
}
