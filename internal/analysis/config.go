// Package analysis turns the completion ledger into performance analysis,
// race readiness and the intensity modifier.
package analysis

import (
	"errors"
	"fmt"
)

// Config holds the heuristic constants of the analyzer.
type Config struct {
	WindowDays        int `mapstructure:"window_days"`
	FullCreditPercent int `mapstructure:"full_credit_percent"`

	TrendRateDelta float64 `mapstructure:"trend_rate_delta"`
	TrendRPEDelta  float64 `mapstructure:"trend_rpe_delta"`

	FatigueWarning          float64 `mapstructure:"fatigue_warning"`
	FatigueCritical         float64 `mapstructure:"fatigue_critical"`
	ConsecutiveSkippedAlert int     `mapstructure:"consecutive_skipped_alert"`
	LowCompletionRate       float64 `mapstructure:"low_completion_rate"`
	HighRPE                 float64 `mapstructure:"high_rpe"`

	CompletionWeight  float64 `mapstructure:"completion_weight"`
	KeyWorkoutWeight  float64 `mapstructure:"key_workout_weight"`
	UrgencyWeeks      int     `mapstructure:"urgency_weeks"`
	UrgencyMaxPenalty float64 `mapstructure:"urgency_max_penalty"`
	EliteMinWeek      int     `mapstructure:"elite_min_week"`

	ModifierMin             float64 `mapstructure:"modifier_min"`
	ModifierMax             float64 `mapstructure:"modifier_max"`
	ModifierCommitThreshold float64 `mapstructure:"modifier_commit_threshold"`

	// FallbackWorkoutEstimate stands in for the number of workouts scheduled
	// to date when the stored schedule cannot be read.
	FallbackWorkoutEstimate int `mapstructure:"fallback_workout_estimate"`
}

func DefaultConfig() Config {
	return Config{
		WindowDays:              7,
		FullCreditPercent:       80,
		TrendRateDelta:          10,
		TrendRPEDelta:           1.5,
		FatigueWarning:          70,
		FatigueCritical:         85,
		ConsecutiveSkippedAlert: 3,
		LowCompletionRate:       50,
		HighRPE:                 8.5,
		CompletionWeight:        0.4,
		KeyWorkoutWeight:        0.6,
		UrgencyWeeks:            4,
		UrgencyMaxPenalty:       20,
		EliteMinWeek:            3,
		ModifierMin:             0.7,
		ModifierMax:             1.3,
		ModifierCommitThreshold: 0.05,
		FallbackWorkoutEstimate: 40,
	}
}

// Validate rejects tunables that would make the analyzer misbehave.
func (c Config) Validate() error {
	var problems []error
	if c.WindowDays < 1 {
		problems = append(problems, fmt.Errorf("window_days must be positive, got %d", c.WindowDays))
	}
	if c.ModifierMin <= 0 || c.ModifierMin > 1 || c.ModifierMax < 1 {
		problems = append(problems, fmt.Errorf("modifier bounds [%.2f, %.2f] must enclose 1.0", c.ModifierMin, c.ModifierMax))
	}
	if c.ModifierCommitThreshold < 0 {
		problems = append(problems, errors.New("modifier_commit_threshold must not be negative"))
	}
	if w := c.CompletionWeight + c.KeyWorkoutWeight; w < 0.99 || w > 1.01 {
		problems = append(problems, fmt.Errorf("completion_weight + key_workout_weight must be 1, got %.2f", w))
	}
	if c.FallbackWorkoutEstimate < 1 {
		problems = append(problems, errors.New("fallback_workout_estimate must be positive"))
	}
	return errors.Join(problems...)
}

// Analyzer evaluates ledgers against one Config. It holds no state.
type Analyzer struct {
	cfg Config
}

func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

func (a *Analyzer) Config() Config {
	return a.cfg
}
