package analysis

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"alcyxob/hyrox-trainer/internal/tracking"
	"fmt"
	"math"
	"sort"
	"time"
)

// PerformanceInput is everything the performance analysis reads. Slots is the
// calendar-placed schedule; when it is empty (unreadable schedule) the window
// rate is computed from the ledger alone.
type PerformanceInput struct {
	Completions []domain.CompletedWorkout
	Slots       []tracking.Slot
	Now         time.Time
}

// window is the half-open day range [from, to).
type window struct {
	from, to time.Time
}

func (w window) contains(t time.Time) bool {
	return !t.Before(w.from) && t.Before(w.to)
}

type windowStats struct {
	due    int
	credit float64
	rpe    *float64
}

func (s windowStats) rate() float64 {
	if s.due == 0 {
		return 0
	}
	return clamp(s.credit/float64(s.due)*100, 0, 100)
}

// AnalyzeRecentPerformance summarises the trailing window ending today and
// compares it with the window before it.
//
// Completion credit: a full completion at or above FullCreditPercent earns 1,
// anything else that was attempted earns percentComplete/100 and a skip earns
// 0. A slot is due in the window when its day has passed, or when it is today
// and already has a ledger entry.
func (a *Analyzer) AnalyzeRecentPerformance(in PerformanceInput) domain.PerformanceAnalysis {
	tomorrow := tracking.StartOfDay(in.Now).AddDate(0, 0, 1)
	current := window{from: tomorrow.AddDate(0, 0, -a.cfg.WindowDays), to: tomorrow}
	previous := window{from: current.from.AddDate(0, 0, -a.cfg.WindowDays), to: current.from}

	cur := a.stats(in, current)
	prev := a.stats(in, previous)

	pa := domain.PerformanceAnalysis{
		RecentCompletionRate: round1(cur.rate()),
		ScheduledInWindow:    cur.due,
		CompletedInWindow:    a.completedCount(in, current),
		AverageRPE:           cur.rpe,
		OverallTrend:         a.trend(cur, prev),
		ConsecutiveSkipped:   consecutiveSkipped(in.Completions),
		Alerts:               []domain.Alert{},
		Recommendations:      []string{},
	}
	pa.FatigueScore = round1(a.fatigue(in, current, cur))
	a.alert(&pa)
	return pa
}

func (a *Analyzer) stats(in PerformanceInput, w window) windowStats {
	var s windowStats
	ledger := tracking.IndexCompletions(in.Completions)
	today := tracking.StartOfDay(in.Now)

	if len(in.Slots) > 0 {
		for _, slot := range in.Slots {
			if !w.contains(slot.Date) {
				continue
			}
			c, done := ledger[tracking.Key{Week: slot.Week, DayOfWeek: slot.DayOfWeek}]
			if !slot.Date.Before(today) && !done {
				continue
			}
			s.due++
			if done {
				s.credit += a.credit(c)
			}
		}
	} else {
		for _, c := range in.Completions {
			if w.contains(c.CompletedAt) {
				s.due++
				s.credit += a.credit(c)
			}
		}
	}

	var sum, n float64
	for _, c := range in.Completions {
		if c.RPE != nil && w.contains(c.CompletedAt) {
			sum += float64(*c.RPE)
			n++
		}
	}
	if n > 0 {
		avg := round1(sum / n)
		s.rpe = &avg
	}
	return s
}

func (a *Analyzer) credit(c domain.CompletedWorkout) float64 {
	switch c.CompletionStatus {
	case domain.CompletionSkipped:
		return 0
	case domain.CompletionFull:
		if c.PercentComplete >= a.cfg.FullCreditPercent {
			return 1
		}
	}
	return clamp(float64(c.PercentComplete)/100, 0, 1)
}

func (a *Analyzer) completedCount(in PerformanceInput, w window) int {
	n := 0
	for _, c := range in.Completions {
		if c.CompletionStatus != domain.CompletionSkipped && w.contains(c.CompletedAt) {
			n++
		}
	}
	return n
}

// trend votes on the completion-rate and RPE deltas between the two windows.
// Rising RPE counts against the athlete. A tie is stable.
func (a *Analyzer) trend(cur, prev windowStats) domain.Trend {
	votes := 0
	if cur.due > 0 && prev.due > 0 {
		delta := cur.rate() - prev.rate()
		switch {
		case delta >= a.cfg.TrendRateDelta:
			votes++
		case delta <= -a.cfg.TrendRateDelta:
			votes--
		}
	}
	if cur.rpe != nil && prev.rpe != nil {
		delta := *cur.rpe - *prev.rpe
		switch {
		case delta >= a.cfg.TrendRPEDelta:
			votes--
		case delta <= -a.cfg.TrendRPEDelta:
			votes++
		}
	}
	switch {
	case votes > 0:
		return domain.TrendImproving
	case votes < 0:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}

const (
	fatigueRPEWeight     = 50
	fatigueRateWeight    = 15
	fatigueStreakWeight  = 15
	fatigueFeelingWeight = 20
	maxStreakDays        = 7
)

// fatigue is a composite in [0,100]: average RPE, sustained volume (window
// completion rate and consecutive training days) and the share of sessions
// that felt hard.
func (a *Analyzer) fatigue(in PerformanceInput, w window, s windowStats) float64 {
	var score float64
	if s.rpe != nil {
		score += (clamp(*s.rpe, 1, 10) - 1) / 9 * fatigueRPEWeight
	}
	score += s.rate() / 100 * fatigueRateWeight
	score += float64(min(trainingStreak(in.Completions, in.Now), maxStreakDays)) / maxStreakDays * fatigueStreakWeight

	var hard, total int
	for _, c := range in.Completions {
		if !w.contains(c.CompletedAt) || c.CompletionStatus == domain.CompletionSkipped {
			continue
		}
		total++
		if f := c.Feeling(); f == "hard" || f == "too_hard" {
			hard++
		}
	}
	if total > 0 {
		score += float64(hard) / float64(total) * fatigueFeelingWeight
	}
	return clamp(score, 0, 100)
}

// trainingStreak counts consecutive calendar days with a non-skipped
// completion, ending today or yesterday.
func trainingStreak(completions []domain.CompletedWorkout, now time.Time) int {
	days := make(map[time.Time]bool)
	for _, c := range completions {
		if c.CompletionStatus != domain.CompletionSkipped {
			days[tracking.StartOfDay(c.CompletedAt.In(now.Location()))] = true
		}
	}
	day := tracking.StartOfDay(now)
	if !days[day] {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for days[day] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// consecutiveSkipped counts the trailing run of skipped ledger entries in
// completion order.
func consecutiveSkipped(completions []domain.CompletedWorkout) int {
	ordered := make([]domain.CompletedWorkout, len(completions))
	copy(ordered, completions)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].CompletedAt.Before(ordered[j].CompletedAt) })

	n := 0
	for i := len(ordered) - 1; i >= 0 && ordered[i].CompletionStatus == domain.CompletionSkipped; i-- {
		n++
	}
	return n
}

func (a *Analyzer) alert(pa *domain.PerformanceAnalysis) {
	add := func(sev domain.Severity, msg, rec string) {
		pa.Alerts = append(pa.Alerts, domain.Alert{Severity: sev, Message: msg})
		pa.Recommendations = append(pa.Recommendations, rec)
	}

	switch {
	case pa.FatigueScore > a.cfg.FatigueCritical:
		add(domain.SeverityCritical, fmt.Sprintf("Fatigue is very high (%.0f/100)", pa.FatigueScore),
			"Take a full rest day before your next hard session.")
	case pa.FatigueScore > a.cfg.FatigueWarning:
		add(domain.SeverityWarning, fmt.Sprintf("Fatigue is elevated (%.0f/100)", pa.FatigueScore),
			"Swap your next hard session for an easy day or rest.")
	}
	if pa.ConsecutiveSkipped >= a.cfg.ConsecutiveSkippedAlert {
		add(domain.SeverityCritical, fmt.Sprintf("%d workouts skipped in a row", pa.ConsecutiveSkipped),
			"Restart with a short, easy session to rebuild momentum.")
	}
	if pa.ScheduledInWindow > 0 && pa.RecentCompletionRate < a.cfg.LowCompletionRate {
		add(domain.SeverityWarning, fmt.Sprintf("Only %.0f%% of this week's workouts were completed", pa.RecentCompletionRate),
			"Prioritise the key sessions and drop optional ones until the routine is back.")
	}
	if pa.AverageRPE != nil && *pa.AverageRPE >= a.cfg.HighRPE {
		add(domain.SeverityWarning, fmt.Sprintf("Average RPE is %.1f", *pa.AverageRPE),
			"Keep easy runs truly easy; not every session should be a race.")
	}
	if pa.OverallTrend == domain.TrendDeclining {
		add(domain.SeverityInfo, "Training trend is declining",
			"Check sleep and recovery; upcoming sessions will be eased automatically.")
	}
	if len(pa.Alerts) == 0 && pa.OverallTrend == domain.TrendImproving {
		pa.Recommendations = append(pa.Recommendations, "Great consistency; keep following the plan.")
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
