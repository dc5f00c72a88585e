// Package tracking maps a program schedule onto the calendar and detects
// missed workouts.
package tracking

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"math"
	"sort"
	"time"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Slot is a non-rest scheduled workout placed on its calendar day.
type Slot struct {
	Week      int
	DayOfWeek int
	Date      time.Time
	Workout   domain.ScheduledWorkout
}

// Key identifies a schedule slot, mirroring the ledger key.
type Key struct {
	Week      int
	DayOfWeek int
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ScheduledDate places (week, dayOfWeek) on the calendar. Week 1 is the seven
// days starting on the program start day; the workout falls on the first day
// of that window with the matching weekday.
func ScheduledDate(start time.Time, week, dayOfWeek int) time.Time {
	start = StartOfDay(start)
	offset := (dayOfWeek - int(start.Weekday()) + 7) % 7
	return start.AddDate(0, 0, (week-1)*7+offset)
}

// DaysBetween counts calendar days from a to b. Negative when b is earlier.
func DaysBetween(a, b time.Time) int {
	a = StartOfDay(a)
	b = StartOfDay(b.In(a.Location()))
	// Round to absorb DST shifts of one hour.
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// CurrentWeek returns the 1-based program week containing now, clamped to
// [1, totalWeeks].
func CurrentWeek(start, now time.Time, totalWeeks int) int {
	if totalWeeks < 1 {
		return 1
	}
	days := DaysBetween(start, now)
	if days < 0 {
		return 1
	}
	return min(days/7+1, totalWeeks)
}

// ScheduledSlots lists every non-rest workout of the schedule in calendar order.
func ScheduledSlots(start time.Time, weeks []domain.WeekPlan) []Slot {
	var slots []Slot
	for _, wp := range weeks {
		for _, w := range wp.Workouts {
			if w.Type == domain.WorkoutRest {
				continue
			}
			slots = append(slots, Slot{
				Week:      wp.Week,
				DayOfWeek: w.DayOfWeek,
				Date:      ScheduledDate(start, wp.Week, w.DayOfWeek),
				Workout:   w,
			})
		}
	}
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Date.Before(slots[j].Date) })
	return slots
}

// SlotsThrough returns the slots scheduled on or before the day of now.
func SlotsThrough(slots []Slot, now time.Time) []Slot {
	var out []Slot
	for _, s := range slots {
		if DaysBetween(s.Date, now) >= 0 {
			out = append(out, s)
		}
	}
	return out
}

// IndexCompletions keys the ledger by slot.
func IndexCompletions(completions []domain.CompletedWorkout) map[Key]domain.CompletedWorkout {
	idx := make(map[Key]domain.CompletedWorkout, len(completions))
	for _, c := range completions {
		idx[Key{Week: c.Week, DayOfWeek: c.DayOfWeek}] = c
	}
	return idx
}

// Progress describes where an athlete stands in the program on a given day.
type Progress struct {
	CurrentWeek     int     `json:"currentWeek"`
	TotalWeeks      int     `json:"totalWeeks"`
	Phase           string  `json:"phase"`
	Theme           string  `json:"theme"`
	ScheduledToDate int     `json:"scheduledToDate"`
	CompletedToDate int     `json:"completedToDate"`
	KeyExpected     int     `json:"keyWorkoutsExpected"`
	KeyCompleted    int     `json:"keyWorkoutsCompleted"`
	WeeksUntilRace  *int    `json:"weeksUntilRace"`
	Status          string  `json:"status"`
	PercentElapsed  float64 `json:"percentElapsed"`
}

// ComputeProgress derives progress from the schedule and the ledger. Slots
// count as completed when their ledger entry is not skipped. Only slots due
// by today are counted.
func ComputeProgress(p *domain.UserProgram, completions []domain.CompletedWorkout, now time.Time, keyThreshold int) Progress {
	total := p.TotalWeeks()
	pr := Progress{
		CurrentWeek: CurrentWeek(p.StartDate, now, total),
		TotalWeeks:  total,
		Status:      StatusActive,
	}
	for _, wp := range p.Schedule {
		if wp.Week == pr.CurrentWeek {
			pr.Phase, pr.Theme = wp.Phase, wp.Theme
		}
	}

	done := IndexCompletions(completions)
	for _, s := range SlotsThrough(ScheduledSlots(p.StartDate, p.Schedule), now) {
		c, ok := done[Key{Week: s.Week, DayOfWeek: s.DayOfWeek}]
		completed := ok && c.CompletionStatus != domain.CompletionSkipped
		pr.ScheduledToDate++
		if completed {
			pr.CompletedToDate++
		}
		if s.Workout.IsKey(keyThreshold) {
			pr.KeyExpected++
			if completed {
				pr.KeyCompleted++
			}
		}
	}

	elapsed := DaysBetween(p.StartDate, now)
	if total > 0 {
		pr.PercentElapsed = min(100, max(0, float64(elapsed)/float64(total*7)*100))
	}

	if p.RaceDate != nil {
		days := DaysBetween(now, *p.RaceDate)
		weeks := 0
		if days > 0 {
			weeks = (days + 6) / 7
		}
		pr.WeeksUntilRace = &weeks
		if days <= 0 {
			pr.Status = StatusCompleted
		}
	} else if total > 0 && elapsed >= total*7 {
		pr.Status = StatusCompleted
	}
	return pr
}
