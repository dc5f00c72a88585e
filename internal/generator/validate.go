package generator

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"fmt"
	"strings"
	"time"
)

const (
	MinDaysPerWeek = 3
	MaxDaysPerWeek = 6
)

// PersonalizationInput is the athlete data a personalized program is built from.
type PersonalizationInput struct {
	FitnessLevel string   `json:"fitnessLevel"`
	DaysPerWeek  int      `json:"daysPerWeek"`
	RaceDate     string   `json:"raceDate,omitempty"` // RFC 3339 timestamp or YYYY-MM-DD
	WeakStations []string `json:"weakStations,omitempty"`
}

// ValidationResult lists every problem found in a PersonalizationInput.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidatePersonalization checks input against the personalization contract
// and accumulates all violations. now anchors the race date check.
func ValidatePersonalization(in PersonalizationInput, now time.Time) ValidationResult {
	errs := []string{}

	if !domain.SkillLevel(in.FitnessLevel).Valid() {
		levels := make([]string, len(domain.SkillLevels))
		for i, l := range domain.SkillLevels {
			levels[i] = string(l)
		}
		errs = append(errs, fmt.Sprintf("fitnessLevel %q must be one of %s", in.FitnessLevel, strings.Join(levels, ", ")))
	}

	if in.DaysPerWeek < MinDaysPerWeek || in.DaysPerWeek > MaxDaysPerWeek {
		errs = append(errs, fmt.Sprintf("daysPerWeek must be between %d and %d, got %d", MinDaysPerWeek, MaxDaysPerWeek, in.DaysPerWeek))
	}

	if in.RaceDate != "" {
		race, err := ParseRaceDate(in.RaceDate, now.Location())
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("raceDate %q is not a valid date", in.RaceDate))
		case startOfDay(race).Before(startOfDay(now)):
			errs = append(errs, fmt.Sprintf("raceDate %s is in the past", race.Format(time.DateOnly)))
		}
	}

	for _, s := range in.WeakStations {
		if !domain.Station(s).Valid() {
			errs = append(errs, fmt.Sprintf("weakStations contains unknown station %q", s))
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ParseRaceDate accepts an RFC 3339 timestamp or a plain date. Plain dates
// are interpreted in loc.
func ParseRaceDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse race date: %w", err)
	}
	return t, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
