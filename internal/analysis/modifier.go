package analysis

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"math"
)

// SuggestIntensityModifier maps an analysis onto a multiplier for future
// workout demands, bounded by [ModifierMin, ModifierMax] and rounded to two
// decimals. Without data in the window it returns the baseline.
func (a *Analyzer) SuggestIntensityModifier(pa domain.PerformanceAnalysis) float64 {
	if pa.ScheduledInWindow == 0 && pa.CompletedInWindow == 0 {
		return domain.DefaultIntensityModifier
	}

	m := domain.DefaultIntensityModifier
	switch pa.OverallTrend {
	case domain.TrendDeclining:
		m -= 0.1
	case domain.TrendImproving:
		m += 0.05
	}

	rate := pa.RecentCompletionRate
	switch {
	case rate < a.cfg.LowCompletionRate:
		m -= 0.1
	case pa.OverallTrend != domain.TrendDeclining && pa.FatigueScore < 50 && rate >= 90:
		m += 0.1
	case pa.OverallTrend != domain.TrendDeclining && pa.FatigueScore < 50 && rate >= 75:
		m += 0.05
	}

	switch {
	case pa.FatigueScore > a.cfg.FatigueWarning:
		m -= 0.15
	case pa.FatigueScore > 50:
		m -= 0.05
	case pa.FatigueScore < 30 && rate >= 75:
		m += 0.05
	}

	return round2(clamp(m, a.cfg.ModifierMin, a.cfg.ModifierMax))
}

// ShouldCommitModifier reports whether suggested differs enough from current
// to be stored. Small changes are noise.
func (a *Analyzer) ShouldCommitModifier(current, suggested float64) bool {
	return suggested != current && round2(math.Abs(suggested-current)) >= a.cfg.ModifierCommitThreshold
}
