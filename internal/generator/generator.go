// Package generator materializes personalized HYROX schedules from the
// catalog templates.
package generator

import (
	"alcyxob/hyrox-trainer/internal/catalog"
	"alcyxob/hyrox-trainer/internal/domain"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidPersonalization = errors.New("invalid personalization")

// GeneratedProgram is a fully materialized schedule. It shares no memory with
// the template it was derived from.
type GeneratedProgram struct {
	ID           string            `json:"id"`
	TemplateID   string            `json:"templateId"`
	Name         string            `json:"name"`
	TotalWeeks   int               `json:"totalWeeks"`
	Weeks        []domain.WeekPlan `json:"weeks"`
	StartDate    time.Time         `json:"startDate"`
	RaceDate     *time.Time        `json:"raceDate,omitempty"`
	FitnessLevel domain.SkillLevel `json:"fitnessLevel,omitempty"`
	DaysPerWeek  int               `json:"daysPerWeek,omitempty"`
	WeakStations []domain.Station  `json:"weakStations,omitempty"`
}

// Generate builds a personalized program starting today.
//
// The template is chosen from the weeks left until the race (8-week template
// when there is no race date). Station work is biased toward the weak
// stations, the week is collapsed to the requested number of training days
// and volumes are scaled to the fitness level.
func Generate(in PersonalizationInput, now time.Time) (GeneratedProgram, error) {
	if res := ValidatePersonalization(in, now); !res.Valid {
		return GeneratedProgram{}, fmt.Errorf("%w: %s", ErrInvalidPersonalization, strings.Join(res.Errors, "; "))
	}

	start := startOfDay(now)
	var raceDate *time.Time
	tmpl, _ := catalog.GetTemplateByID(catalog.TemplateEightWeek)
	if in.RaceDate != "" {
		race, _ := ParseRaceDate(in.RaceDate, now.Location())
		raceDate = &race
		tmpl = catalog.SelectTemplateForWeeksUntilRace(WeeksUntil(start, race))
	}

	weak := make([]domain.Station, 0, len(in.WeakStations))
	for _, s := range in.WeakStations {
		weak = appendUnique(weak, domain.Station(s))
	}
	if len(weak) == 0 {
		weak = append(weak, domain.DefaultWeakStations...)
	}

	level := domain.SkillLevel(in.FitnessLevel)
	weeks := domain.CloneWeeks(tmpl.Weeks)
	for i := range weeks {
		emphasizeWeakStations(&weeks[i], weak)
		collapseDays(&weeks[i], in.DaysPerWeek)
		scaleForLevel(&weeks[i], level)
	}

	return GeneratedProgram{
		ID:           uuid.NewString(),
		TemplateID:   tmpl.ID,
		Name:         fmt.Sprintf("%s (personalized)", tmpl.Name),
		TotalWeeks:   len(weeks),
		Weeks:        weeks,
		StartDate:    start,
		RaceDate:     raceDate,
		FitnessLevel: level,
		DaysPerWeek:  in.DaysPerWeek,
		WeakStations: weak,
	}, nil
}

// FromTemplate enrolls the template as-is, starting today. The program id is
// the template id.
func FromTemplate(tmpl domain.ProgramTemplate, now time.Time) GeneratedProgram {
	weeks := domain.CloneWeeks(tmpl.Weeks)
	return GeneratedProgram{
		ID:         tmpl.ID,
		TemplateID: tmpl.ID,
		Name:       tmpl.Name,
		TotalWeeks: len(weeks),
		Weeks:      weeks,
		StartDate:  startOfDay(now),
	}
}

// WeeksUntil returns the number of started weeks between from and to, at day
// granularity. A race later today is zero weeks away.
func WeeksUntil(from, to time.Time) int {
	days := int(startOfDay(to).Sub(startOfDay(from)).Hours()/24 + 0.5)
	if days <= 0 {
		return 0
	}
	return (days + 6) / 7
}

func appendUnique(list []domain.Station, s domain.Station) []domain.Station {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}
