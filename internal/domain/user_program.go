// internal/domain/user_program.go
package domain

import (
	"time"
)

// CompletionStatus records how much of a scheduled workout was done.
type CompletionStatus string

const (
	CompletionFull    CompletionStatus = "full"
	CompletionPartial CompletionStatus = "partial"
	CompletionSkipped CompletionStatus = "skipped"
)

// Valid reports whether s is a known completion status.
func (s CompletionStatus) Valid() bool {
	switch s {
	case CompletionFull, CompletionPartial, CompletionSkipped:
		return true
	}
	return false
}

// DefaultIntensityModifier is the baseline multiplier for workout demands.
const DefaultIntensityModifier = 1.0

// UserProgram is the live program instance of one user. A user has at most
// one. The schedule is materialized at enrollment so the program outlives
// template edits.
type UserProgram struct {
	ID                string     `json:"id"`
	UserID            string     `json:"userId"`
	ProgramID         string     `json:"programId"` // template id or generated program id
	TemplateID        string     `json:"templateId"`
	Name              string     `json:"name"`
	StartDate         time.Time  `json:"startDate"`
	RaceDate          *time.Time `json:"raceDate,omitempty"`
	FitnessLevel      SkillLevel `json:"fitnessLevel,omitempty"`
	DaysPerWeek       int        `json:"daysPerWeek,omitempty"`
	WeakStations      []Station  `json:"weakStations,omitempty"`
	Schedule          []WeekPlan `json:"schedule"`
	ScheduleVersion   int        `json:"scheduleVersion"`
	IntensityModifier float64    `json:"intensityModifier"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`

	// ScheduleDegraded is set by a repository when the stored schedule could
	// not be decoded; ScheduleErr says why. Schedule is empty in that case.
	ScheduleDegraded bool  `json:"scheduleDegraded,omitempty"`
	ScheduleErr      error `json:"-"`

	// Completions is attached by the service layer, ordered by CompletedAt.
	Completions []CompletedWorkout `json:"completions"`
}

// TotalWeeks returns the number of weeks in the materialized schedule.
func (p *UserProgram) TotalWeeks() int {
	return len(p.Schedule)
}

// CompletionFields are the mutable fields of a CompletedWorkout.
type CompletionFields struct {
	SessionID        string           `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	ActualDuration   *int             `bson:"actualDuration,omitempty" json:"actualDuration,omitempty"` // minutes
	RPE              *int             `bson:"rpe,omitempty" json:"rpe,omitempty"`
	CompletionStatus CompletionStatus `bson:"completionStatus" json:"completionStatus"`
	PercentComplete  int              `bson:"percentComplete" json:"percentComplete"`
	Performance      map[string]any   `bson:"performance,omitempty" json:"performance,omitempty"`
}

// CompletedWorkout is a ledger entry. (UserProgramID, Week, DayOfWeek) is unique.
type CompletedWorkout struct {
	ID            string    `bson:"_id" json:"id"`
	UserProgramID string    `bson:"userProgramId" json:"userProgramId"`
	Week          int       `bson:"week" json:"week"`
	DayOfWeek     int       `bson:"dayOfWeek" json:"dayOfWeek"`
	CompletedAt   time.Time `bson:"completedAt" json:"completedAt"`

	CompletionFields `bson:",inline"`
}

// Feeling returns the subjective feeling recorded in the performance payload,
// e.g. "easy", "moderate", "hard" or "too_hard". Empty when absent.
func (c CompletedWorkout) Feeling() string {
	if c.Performance == nil {
		return ""
	}
	if f, ok := c.Performance["feeling"].(string); ok {
		return f
	}
	return ""
}
