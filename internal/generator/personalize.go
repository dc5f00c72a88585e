package generator

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
)

// emphasizeWeakStations swaps stations of station-bearing workouts for weak
// ones until at least half of each list is weak. The list length is kept, so
// the estimated minutes of the week do not change.
func emphasizeWeakStations(wp *domain.WeekPlan, weak []domain.Station) {
	if len(weak) == 0 {
		return
	}
	isWeak := func(s domain.Station) bool { return slices.Contains(weak, s) }

	for i := range wp.Workouts {
		w := &wp.Workouts[i]
		stations := w.Params.Stations
		if len(stations) == 0 {
			continue
		}

		want := (len(stations) + 1) / 2
		have := 0
		for _, s := range stations {
			if isWeak(s) {
				have++
			}
		}

		// Replace from the end so the opening station of the session stays put.
		// The weak station picked rotates with the week to spread the emphasis.
		next := wp.Week + i
		for j := len(stations) - 1; j >= 0 && have < want; j-- {
			if isWeak(stations[j]) {
				continue
			}
			for k := range weak {
				candidate := weak[(next+k)%len(weak)]
				if !slices.Contains(stations, candidate) {
					stations[j] = candidate
					have++
					next += k + 1
					break
				}
			}
		}

		var names []string
		for _, s := range stations {
			if isWeak(s) {
				names = append(names, s.DisplayName())
			}
		}
		if len(names) > 0 {
			w.Notes = appendNote(w.Notes, "Weak station focus: "+strings.Join(names, ", "))
		}
	}
}

// dropPriority orders workout types by how readily they are dropped when the
// athlete trains fewer days than the template. Lower drops first.
var dropPriority = map[domain.WorkoutType]int{
	domain.WorkoutQuick:    0,
	domain.WorkoutStation:  1,
	domain.WorkoutStrength: 2,
	domain.WorkoutRun:      3,
	domain.WorkoutCoverage: 4,
	domain.WorkoutFull:     5,
}

// collapseDays turns the lowest-priority training days into rest days until
// the week has at most daysPerWeek of them. Weeks with fewer training days
// than requested are left alone.
func collapseDays(wp *domain.WeekPlan, daysPerWeek int) {
	var training []int
	for i, w := range wp.Workouts {
		if w.Type != domain.WorkoutRest {
			training = append(training, i)
		}
	}
	excess := len(training) - daysPerWeek
	if excess <= 0 {
		return
	}

	slices.SortStableFunc(training, func(a, b int) int {
		wa, wb := wp.Workouts[a], wp.Workouts[b]
		if c := cmp.Compare(dropPriority[wa.Type], dropPriority[wb.Type]); c != 0 {
			return c
		}
		return cmp.Compare(wb.DayOfWeek, wa.DayOfWeek)
	})

	for _, idx := range training[:excess] {
		w := &wp.Workouts[idx]
		dropped := w.Title
		*w = domain.ScheduledWorkout{
			DayOfWeek: w.DayOfWeek,
			DayName:   w.DayName,
			Type:      domain.WorkoutRest,
			Title:     "Recovery",
			Notes:     fmt.Sprintf("Replaces %s to fit %d training days", dropped, daysPerWeek),
		}
	}
}

const (
	beginnerVolume      = 0.85
	advancedVolume      = 1.1
	beginnerMaxCoverage = 90
)

// scaleForLevel adjusts volume for the athlete level. Intermediate is the
// level the templates are written for.
func scaleForLevel(wp *domain.WeekPlan, level domain.SkillLevel) {
	var factor float64
	switch level {
	case domain.LevelBeginner:
		factor = beginnerVolume
	case domain.LevelAdvanced:
		factor = advancedVolume
	default:
		return
	}

	for i := range wp.Workouts {
		w := &wp.Workouts[i]
		switch w.Type {
		case domain.WorkoutRun:
			if w.Params.RunType == domain.RunIntervals && level == domain.LevelBeginner && w.Params.Reps > 1 {
				w.Params.Reps--
				w.Title = fmt.Sprintf("%d x 1 km intervals", w.Params.Reps)
			}
			w.Params.Duration = scale(w.Params.Duration, factor)
			w.EstimatedMinutes = w.Params.Duration + 10
		case domain.WorkoutCoverage:
			if level == domain.LevelBeginner && w.Params.Coverage > beginnerMaxCoverage {
				w.Params.Coverage = beginnerMaxCoverage
				w.Title = fmt.Sprintf("%d%% race coverage", w.Params.Coverage)
				w.EstimatedMinutes = 30 + w.Params.Coverage*6/10
			}
		case domain.WorkoutStrength, domain.WorkoutStation, domain.WorkoutQuick:
			w.EstimatedMinutes = scale(w.EstimatedMinutes, factor)
		}
	}
}

func scale(minutes int, factor float64) int {
	return max(1, int(math.Round(float64(minutes)*factor)))
}

func appendNote(notes, note string) string {
	if notes == "" {
		return note
	}
	return notes + ". " + note
}
