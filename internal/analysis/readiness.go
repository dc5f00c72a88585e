package analysis

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"math"
)

// neutralReadiness is reported when nothing has been scheduled yet.
const neutralReadiness = 50

// eliteCap keeps early-program scores out of the elite band.
const eliteCap = 79

// ReadinessInput carries the counts race readiness is computed from. The
// counts come from the ledger matched against the slots due to date.
type ReadinessInput struct {
	ScheduledToDate      int
	CompletedToDate      int
	KeyWorkoutsCompleted int
	KeyWorkoutsExpected  int
	WeeksUntilRace       *int // nil when no race date is set
	CurrentWeek          int
}

// CalculateRaceReadiness scores preparedness in [0,100]. Key workouts weigh
// more than ordinary ones; low completion is penalized harder as the race gets
// close. The result depends on the input only.
func (a *Analyzer) CalculateRaceReadiness(in ReadinessInput) domain.RaceReadinessScore {
	if in.ScheduledToDate <= 0 {
		return domain.RaceReadinessScore{
			Score:   neutralReadiness,
			Message: "Not enough training data yet to estimate race readiness.",
		}
	}

	completion := clamp(float64(in.CompletedToDate)/float64(in.ScheduledToDate), 0, 1)
	key := completion
	if in.KeyWorkoutsExpected > 0 {
		key = clamp(float64(in.KeyWorkoutsCompleted)/float64(in.KeyWorkoutsExpected), 0, 1)
	}

	var penalty float64
	if in.WeeksUntilRace != nil && *in.WeeksUntilRace < a.cfg.UrgencyWeeks {
		urgency := float64(a.cfg.UrgencyWeeks-max(*in.WeeksUntilRace, 0)) / float64(a.cfg.UrgencyWeeks)
		penalty = urgency * (1 - completion) * a.cfg.UrgencyMaxPenalty
	}

	score := 100*(a.cfg.CompletionWeight*completion+a.cfg.KeyWorkoutWeight*key) - penalty
	if in.CurrentWeek < a.cfg.EliteMinWeek {
		score = math.Min(score, eliteCap)
	}
	s := int(math.Round(clamp(score, 0, 100)))

	return domain.RaceReadinessScore{
		Score:   s,
		Message: readinessMessage(s),
		HasData: true,
		Components: domain.ReadinessComponents{
			CompletionRatio: round2(completion),
			KeyWorkoutRatio: round2(key),
			UrgencyPenalty:  round1(penalty),
		},
	}
}

func readinessMessage(score int) string {
	switch {
	case score >= 80:
		return "Elite readiness: you are primed for race day."
	case score >= 60:
		return "On track: keep stacking consistent weeks."
	case score >= 40:
		return "Needs focus: prioritise the key sessions."
	default:
		return "Significant gaps: rebuild consistency before adding intensity."
	}
}

// ProjectedReadiness applies the aggregate missed-workout impact to a score.
func ProjectedReadiness(score, missedImpact int) int {
	return int(clamp(float64(score+missedImpact), 0, 100))
}
