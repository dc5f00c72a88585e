package domain

import "time"

// Importance ranks how much a missed workout matters.
type Importance string

const (
	ImportanceCritical Importance = "critical"
	ImportanceHigh     Importance = "high"
	ImportanceMedium   Importance = "medium"
	ImportanceLow      Importance = "low"
)

// Rank orders importance tiers, critical first.
func (i Importance) Rank() int {
	switch i {
	case ImportanceCritical:
		return 0
	case ImportanceHigh:
		return 1
	case ImportanceMedium:
		return 2
	default:
		return 3
	}
}

// RecoveryAction is what the athlete should do about a missed workout.
type RecoveryAction string

const (
	ActionSkip            RecoveryAction = "skip"
	ActionMakeupCondensed RecoveryAction = "makeup_condensed"
	ActionMakeupFull      RecoveryAction = "makeup_full"
)

// MissedWorkout is a scheduled, non-rest workout past its date with no ledger entry.
type MissedWorkout struct {
	Week              int              `json:"week"`
	DayOfWeek         int              `json:"dayOfWeek"`
	DayName           string           `json:"dayName"`
	ScheduledDate     time.Time        `json:"scheduledDate"`
	Workout           ScheduledWorkout `json:"workout"`
	DaysSinceMissed   int              `json:"daysSinceMissed"`
	Importance        Importance       `json:"importance"`
	SuggestedAction   RecoveryAction   `json:"suggestedAction"`
	ImpactOnReadiness int              `json:"impactOnReadiness"`
}

// MissedWorkoutSummary aggregates every missed workout of a program.
type MissedWorkoutSummary struct {
	MissedWorkouts  []MissedWorkout `json:"missedWorkouts"`
	TotalMissed     int             `json:"totalMissed"`
	ReadinessImpact int             `json:"readinessImpact"`
	Recommendations []string        `json:"recommendations"`
}

// Trend classifies the direction of recent training.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// Severity of an analysis alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is a threshold crossing detected by the analyzer.
type Alert struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// PerformanceAnalysis summarises the trailing training window.
type PerformanceAnalysis struct {
	RecentCompletionRate float64  `json:"recentCompletionRate"`
	ScheduledInWindow    int      `json:"scheduledInWindow"`
	CompletedInWindow    int      `json:"completedInWindow"`
	AverageRPE           *float64 `json:"averageRPE"`
	OverallTrend         Trend    `json:"overallTrend"`
	FatigueScore         float64  `json:"fatigueScore"`
	ConsecutiveSkipped   int      `json:"consecutiveSkipped"`
	Alerts               []Alert  `json:"alerts"`
	Recommendations      []string `json:"recommendations"`
}

// ReadinessComponents breaks a readiness score into its parts.
type ReadinessComponents struct {
	CompletionRatio float64 `json:"completionRatio"`
	KeyWorkoutRatio float64 `json:"keyWorkoutRatio"`
	UrgencyPenalty  float64 `json:"urgencyPenalty"`
}

// RaceReadinessScore is the composite preparedness score in [0,100].
type RaceReadinessScore struct {
	Score      int                 `json:"score"`
	Message    string              `json:"message"`
	HasData    bool                `json:"hasData"`
	Components ReadinessComponents `json:"components"`
}
