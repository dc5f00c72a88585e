package service

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"math"
)

// scaleWorkout applies the intensity modifier to a workout's time targets:
// run duration and estimated minutes. Rest days are returned unchanged.
func scaleWorkout(w domain.ScheduledWorkout, modifier float64) domain.ScheduledWorkout {
	out := w.Clone()
	if w.Type == domain.WorkoutRest || modifier == domain.DefaultIntensityModifier {
		return out
	}
	out.EstimatedMinutes = scaleMinutes(w.EstimatedMinutes, modifier)
	if w.Type == domain.WorkoutRun {
		out.Params.Duration = scaleMinutes(w.Params.Duration, modifier)
	}
	return out
}

func scaleMinutes(minutes int, modifier float64) int {
	if minutes <= 0 {
		return minutes
	}
	return max(1, int(math.Round(float64(minutes)*modifier)))
}
