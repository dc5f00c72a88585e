package catalog

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"fmt"
)

type templateSpec struct {
	id          string
	name        string
	description string
	level       domain.SkillLevel
	slots       []slot
	phases      []phaseSpec
}

type phaseSpec struct {
	name       string
	theme      string
	weeks      int
	deloadLast bool
}

// slotKind is the role a training day plays in the week.
type slotKind int

const (
	slotRun slotKind = iota
	slotStrength
	slotStation
	slotQuick
	slotKey
	slotRest
)

type slot struct {
	day  int
	kind slotKind
}

var fiveDaySlots = []slot{
	{day: 1, kind: slotRun},
	{day: 2, kind: slotStrength},
	{day: 3, kind: slotStation},
	{day: 4, kind: slotQuick},
	{day: 6, kind: slotKey},
	{day: 0, kind: slotRest},
}

var fourDaySlots = []slot{
	{day: 1, kind: slotRun},
	{day: 2, kind: slotStrength},
	{day: 4, kind: slotStation},
	{day: 6, kind: slotKey},
	{day: 0, kind: slotRest},
}

// weekContext carries what a day builder needs to progress volume.
type weekContext struct {
	week        int // program week, 1-based
	phase       string
	phaseWeek   int // week within the phase, 0-based
	phaseLength int
	deload      bool
}

func buildTemplate(spec templateSpec) domain.ProgramTemplate {
	t := domain.ProgramTemplate{
		ID:          spec.id,
		Name:        spec.name,
		Description: spec.description,
		Level:       spec.level,
	}
	for _, s := range spec.slots {
		if s.kind != slotRest {
			t.DefaultDaysPerWeek++
		}
	}

	week := 1
	for _, phase := range spec.phases {
		for i := range phase.weeks {
			ctx := weekContext{
				week:        week,
				phase:       phase.name,
				phaseWeek:   i,
				phaseLength: phase.weeks,
				deload:      phase.deloadLast && i == phase.weeks-1,
			}
			wp := domain.WeekPlan{
				Week:     week,
				Phase:    phase.name,
				Theme:    phase.theme,
				IsDeload: ctx.deload,
			}
			if ctx.deload && phase.name != "Taper" {
				wp.Theme = "Deload: absorb the training block"
			}
			for _, s := range spec.slots {
				wp.Workouts = append(wp.Workouts, buildWorkout(s, ctx))
			}
			t.Weeks = append(t.Weeks, wp)
			week++
		}
	}
	t.TotalWeeks = len(t.Weeks)
	return t
}

func buildWorkout(s slot, ctx weekContext) domain.ScheduledWorkout {
	var w domain.ScheduledWorkout
	switch s.kind {
	case slotRun:
		w = runWorkout(ctx)
	case slotStrength:
		w = strengthWorkout(ctx)
	case slotStation:
		w = stationWorkout(ctx)
	case slotQuick:
		w = quickWorkout(ctx)
	case slotKey:
		w = keyWorkout(ctx)
	default:
		w = domain.ScheduledWorkout{Type: domain.WorkoutRest, Title: "Rest and mobility"}
	}
	w.DayOfWeek = s.day
	w.DayName = domain.DayName(s.day)
	return w
}

func deloaded(minutes int, ctx weekContext) int {
	if ctx.deload {
		return minutes * 7 / 10
	}
	return minutes
}

func runWorkout(ctx weekContext) domain.ScheduledWorkout {
	w := domain.ScheduledWorkout{Type: domain.WorkoutRun}
	switch ctx.phase {
	case "Base":
		w.Title = "Zone 2 run"
		w.Params = domain.WorkoutParams{RunType: domain.RunZone2, Duration: deloaded(35+5*ctx.phaseWeek, ctx)}
	case "Build":
		w.Title = "Tempo run"
		w.Params = domain.WorkoutParams{RunType: domain.RunTempo, Duration: deloaded(30+5*ctx.phaseWeek, ctx)}
	case "Peak", "Race Specific":
		// HYROX is 8 x 1 km of running, so intervals build toward 8 reps.
		reps := min(5+ctx.phaseWeek+ctx.week/4, 8)
		rest := 90
		if ctx.phase == "Race Specific" {
			reps, rest = 8, 60
		}
		w.Title = fmt.Sprintf("%d x 1 km intervals", reps)
		w.Params = domain.WorkoutParams{RunType: domain.RunIntervals, Duration: reps*5 + 15, Reps: reps, Distance: 1000, Rest: rest}
	default:
		w.Title = "Easy shakeout run"
		w.Params = domain.WorkoutParams{RunType: domain.RunZone2, Duration: deloaded(30, ctx)}
	}
	w.EstimatedMinutes = w.Params.Duration + 10
	return w
}

func strengthWorkout(ctx weekContext) domain.ScheduledWorkout {
	w := domain.ScheduledWorkout{Type: domain.WorkoutStrength, EstimatedMinutes: deloaded(50, ctx)}
	switch {
	case ctx.phase == "Base" && ctx.week%2 == 1:
		w.Title = "Lower body strength"
		w.Params = domain.WorkoutParams{StrengthFocus: domain.FocusLower,
			Exercises: []string{"Back Squat", "Romanian Deadlift", "Walking Lunges", "Hip Thrust"}}
	case ctx.phase == "Base":
		w.Title = "Upper body strength"
		w.Params = domain.WorkoutParams{StrengthFocus: domain.FocusUpper,
			Exercises: []string{"Overhead Press", "Bent-over Row", "Pull-ups", "Farmers Walk"}}
	default:
		w.Title = "Full body strength endurance"
		w.Params = domain.WorkoutParams{StrengthFocus: domain.FocusFull,
			Exercises: []string{"Deadlift", "Goblet Squat", "Push Press", "Sled Push", "Burpees"}}
	}
	return w
}

func stationWorkout(ctx weekContext) domain.ScheduledWorkout {
	var stations []domain.Station
	switch ctx.phase {
	case "Base":
		stations = []domain.Station{domain.StationSkiErg, domain.StationRowing, domain.StationFarmersCarry}
	case "Build":
		stations = []domain.Station{domain.StationSledPush, domain.StationSledPull, domain.StationSandbagLunges}
	case "Peak", "Race Specific":
		stations = []domain.Station{domain.StationBurpeeBroadJump, domain.StationWallBalls,
			domain.StationSledPush, domain.StationRowing}
	default:
		stations = []domain.Station{domain.StationSkiErg, domain.StationWallBalls}
	}
	return domain.ScheduledWorkout{
		Type:             domain.WorkoutStation,
		Title:            "Station skills",
		EstimatedMinutes: deloaded(15+10*len(stations), ctx),
		Params:           domain.WorkoutParams{Stations: stations},
	}
}

func quickWorkout(ctx weekContext) domain.ScheduledWorkout {
	return domain.ScheduledWorkout{
		Type:             domain.WorkoutQuick,
		Title:            "20 minute EMOM",
		EstimatedMinutes: deloaded(25, ctx),
		Params: domain.WorkoutParams{
			Duration: 20,
			Stations: []domain.Station{domain.StationWallBalls, domain.StationBurpeeBroadJump},
		},
	}
}

func keyWorkout(ctx weekContext) domain.ScheduledWorkout {
	if ctx.phase == "Race Specific" {
		return domain.ScheduledWorkout{
			Type:             domain.WorkoutFull,
			Title:            "Full race simulation",
			EstimatedMinutes: 90,
		}
	}

	var coverage int
	switch ctx.phase {
	case "Base":
		coverage = 40 + 5*ctx.phaseWeek
	case "Build":
		coverage = 60 + 15*ctx.phaseWeek
	case "Peak":
		coverage = 90 + 10*ctx.phaseWeek
	default:
		coverage = 40
	}
	if ctx.deload && ctx.phase != "Taper" {
		coverage = 50
	}
	return domain.ScheduledWorkout{
		Type:             domain.WorkoutCoverage,
		Title:            fmt.Sprintf("%d%% race coverage", coverage),
		EstimatedMinutes: 30 + coverage*6/10,
		Params:           domain.WorkoutParams{Coverage: coverage},
	}
}
