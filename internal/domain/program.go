// internal/domain/program.go
package domain

import (
	"errors"
	"fmt"
	"time"
)

// SkillLevel is the athlete level a template or personalization targets.
type SkillLevel string

const (
	LevelBeginner     SkillLevel = "beginner"
	LevelIntermediate SkillLevel = "intermediate"
	LevelAdvanced     SkillLevel = "advanced"
)

// SkillLevels lists the levels in ascending order.
var SkillLevels = []SkillLevel{LevelBeginner, LevelIntermediate, LevelAdvanced}

// Valid reports whether l is one of the defined levels.
func (l SkillLevel) Valid() bool {
	for _, known := range SkillLevels {
		if l == known {
			return true
		}
	}
	return false
}

// WorkoutType classifies a scheduled workout.
type WorkoutType string

const (
	WorkoutRun      WorkoutType = "run"
	WorkoutStrength WorkoutType = "strength"
	WorkoutQuick    WorkoutType = "quick"
	WorkoutStation  WorkoutType = "station"
	WorkoutCoverage WorkoutType = "coverage"
	WorkoutFull     WorkoutType = "full"
	WorkoutRest     WorkoutType = "rest"
)

// RunType is the flavour of a run workout.
type RunType string

const (
	RunZone2     RunType = "zone2"
	RunTempo     RunType = "tempo"
	RunIntervals RunType = "intervals"
)

// StrengthFocus is the body region a strength workout targets.
type StrengthFocus string

const (
	FocusLower StrengthFocus = "lower"
	FocusUpper StrengthFocus = "upper"
	FocusFull  StrengthFocus = "full"
)

// DefaultKeyCoverageThreshold is the race coverage (percent) from which a
// coverage workout counts as a key workout.
const DefaultKeyCoverageThreshold = 75

// ProgramTemplate is an immutable, fixed-length periodized schedule.
type ProgramTemplate struct {
	ID                 string     `bson:"id" json:"id"`
	Name               string     `bson:"name" json:"name"`
	Description        string     `bson:"description" json:"description"`
	TotalWeeks         int        `bson:"totalWeeks" json:"totalWeeks"`
	Level              SkillLevel `bson:"level" json:"level"`
	DefaultDaysPerWeek int        `bson:"defaultDaysPerWeek" json:"defaultDaysPerWeek"`
	Weeks              []WeekPlan `bson:"weeks" json:"weeks"`
}

// WeekPlan is one week of a schedule.
type WeekPlan struct {
	Week     int                `bson:"week" json:"week"`
	Phase    string             `bson:"phase" json:"phase"`
	Theme    string             `bson:"theme" json:"theme"`
	IsDeload bool               `bson:"isDeload" json:"isDeload"`
	Workouts []ScheduledWorkout `bson:"workouts" json:"workouts"`
}

// ScheduledWorkout is a single workout placed on a day of the week.
// DayOfWeek follows time.Weekday: 0 is Sunday, 6 is Saturday.
type ScheduledWorkout struct {
	DayOfWeek        int           `bson:"dayOfWeek" json:"dayOfWeek"`
	DayName          string        `bson:"dayName" json:"dayName"`
	Type             WorkoutType   `bson:"type" json:"type"`
	Title            string        `bson:"title" json:"title"`
	EstimatedMinutes int           `bson:"estimatedMinutes" json:"estimatedMinutes"`
	Params           WorkoutParams `bson:"params" json:"params"`
	Notes            string        `bson:"notes,omitempty" json:"notes,omitempty"`
}

// WorkoutParams is the type-specific parameter bag of a ScheduledWorkout.
// Only the fields relevant to the workout type are set.
type WorkoutParams struct {
	RunType       RunType       `bson:"runType,omitempty" json:"runType,omitempty"`
	Duration      int           `bson:"duration,omitempty" json:"duration,omitempty"` // minutes
	Reps          int           `bson:"reps,omitempty" json:"reps,omitempty"`
	Distance      int           `bson:"distance,omitempty" json:"distance,omitempty"` // meters
	Rest          int           `bson:"rest,omitempty" json:"rest,omitempty"`         // seconds
	StrengthFocus StrengthFocus `bson:"strengthFocus,omitempty" json:"strengthFocus,omitempty"`
	Exercises     []string      `bson:"exercises,omitempty" json:"exercises,omitempty"`
	Stations      []Station     `bson:"stations,omitempty" json:"stations,omitempty"`
	Coverage      int           `bson:"coverage,omitempty" json:"coverage,omitempty"` // percent of race distance
}

// DayName returns the English name for a day-of-week index.
func DayName(dayOfWeek int) string {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return ""
	}
	return time.Weekday(dayOfWeek).String()
}

// IsKey reports whether the workout is a key workout: a full simulation or a
// coverage workout at or above minCoverage percent.
func (w ScheduledWorkout) IsKey(minCoverage int) bool {
	switch w.Type {
	case WorkoutFull:
		return true
	case WorkoutCoverage:
		return w.Params.Coverage >= minCoverage
	default:
		return false
	}
}

// Validate checks the type-specific parameter contract of the workout.
func (w ScheduledWorkout) Validate() error {
	var problems []error
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		problems = append(problems, fmt.Errorf("dayOfWeek %d out of range [0,6]", w.DayOfWeek))
	}
	if w.EstimatedMinutes < 0 {
		problems = append(problems, fmt.Errorf("estimatedMinutes %d is negative", w.EstimatedMinutes))
	}

	p := w.Params
	switch w.Type {
	case WorkoutRun:
		switch p.RunType {
		case RunZone2, RunTempo:
		case RunIntervals:
			if p.Reps <= 0 || p.Distance <= 0 || p.Rest <= 0 {
				problems = append(problems, errors.New("intervals require positive reps, distance and rest"))
			}
		default:
			problems = append(problems, fmt.Errorf("unknown runType %q", p.RunType))
		}
		if p.Duration <= 0 {
			problems = append(problems, errors.New("run duration must be positive"))
		}
	case WorkoutStrength:
		switch p.StrengthFocus {
		case FocusLower, FocusUpper, FocusFull:
		default:
			problems = append(problems, fmt.Errorf("unknown strengthFocus %q", p.StrengthFocus))
		}
		if len(p.Exercises) == 0 {
			problems = append(problems, errors.New("strength workout needs exercises"))
		}
	case WorkoutStation:
		if len(p.Stations) == 0 {
			problems = append(problems, errors.New("station workout needs stations"))
		}
	case WorkoutCoverage:
		if p.Coverage <= 0 || p.Coverage > 150 {
			problems = append(problems, fmt.Errorf("coverage %d out of range (0,150]", p.Coverage))
		}
	case WorkoutQuick, WorkoutFull, WorkoutRest:
	default:
		problems = append(problems, fmt.Errorf("unknown workout type %q", w.Type))
	}

	return errors.Join(problems...)
}

// Clone returns a deep copy of the workout.
func (w ScheduledWorkout) Clone() ScheduledWorkout {
	c := w
	if w.Params.Exercises != nil {
		c.Params.Exercises = append([]string(nil), w.Params.Exercises...)
	}
	if w.Params.Stations != nil {
		c.Params.Stations = append([]Station(nil), w.Params.Stations...)
	}
	return c
}

// Clone returns a deep copy of the week.
func (wp WeekPlan) Clone() WeekPlan {
	c := wp
	c.Workouts = make([]ScheduledWorkout, len(wp.Workouts))
	for i, w := range wp.Workouts {
		c.Workouts[i] = w.Clone()
	}
	return c
}

// CloneWeeks deep-copies a schedule.
func CloneWeeks(weeks []WeekPlan) []WeekPlan {
	if weeks == nil {
		return nil
	}
	out := make([]WeekPlan, len(weeks))
	for i, wp := range weeks {
		out[i] = wp.Clone()
	}
	return out
}

// Clone returns a deep copy of the template.
func (t ProgramTemplate) Clone() ProgramTemplate {
	c := t
	c.Weeks = CloneWeeks(t.Weeks)
	return c
}

// WorkoutAt returns the workout scheduled on (week, dayOfWeek), if any.
func WorkoutAt(weeks []WeekPlan, week, dayOfWeek int) (ScheduledWorkout, bool) {
	for _, wp := range weeks {
		if wp.Week != week {
			continue
		}
		for _, w := range wp.Workouts {
			if w.DayOfWeek == dayOfWeek {
				return w, true
			}
		}
	}
	return ScheduledWorkout{}, false
}
