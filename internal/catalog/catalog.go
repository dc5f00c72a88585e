// Package catalog holds the fixed-length periodized HYROX program templates.
package catalog

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"errors"
)

const (
	TemplateEightWeek  = "hyrox-8-week"
	TemplateTwelveWeek = "hyrox-12-week"

	// ShortProgramMaxWeeks is the longest lead time served by the 8-week template.
	ShortProgramMaxWeeks = 10
)

var ErrTemplateNotFound = errors.New("program template not found")

//nolint:gochecknoglobals // templates are built once and only handed out as copies.
var templates = []domain.ProgramTemplate{
	buildTemplate(templateSpec{
		id:          TemplateEightWeek,
		name:        "8-Week HYROX Race Prep",
		description: "Compressed build for athletes with a race on the horizon: short base, two-week build with a deload, peak, race-specific simulation and a taper.",
		level:       domain.LevelIntermediate,
		slots:       fiveDaySlots,
		phases: []phaseSpec{
			{name: "Base", theme: "Aerobic engine and station technique", weeks: 2},
			{name: "Build", theme: "Threshold running and heavier sleds", weeks: 2, deloadLast: true},
			{name: "Peak", theme: "Race-pace intervals and long coverage", weeks: 2},
			{name: "Race Specific", theme: "Full race simulation", weeks: 1},
			{name: "Taper", theme: "Sharpen and recover for race day", weeks: 1, deloadLast: true},
		},
	}),
	buildTemplate(templateSpec{
		id:          TemplateTwelveWeek,
		name:        "12-Week HYROX Foundation to Race",
		description: "Progressive plan for athletes new to HYROX: a long aerobic base, build blocks with deloads, then peak, simulation and taper.",
		level:       domain.LevelBeginner,
		slots:       fourDaySlots,
		phases: []phaseSpec{
			{name: "Base", theme: "Aerobic engine and movement quality", weeks: 4, deloadLast: true},
			{name: "Build", theme: "Strength endurance on every station", weeks: 4, deloadLast: true},
			{name: "Peak", theme: "Race-pace intervals and long coverage", weeks: 2},
			{name: "Race Specific", theme: "Full race simulation", weeks: 1},
			{name: "Taper", theme: "Sharpen and recover for race day", weeks: 1, deloadLast: true},
		},
	}),
}

// ListTemplates returns every template.
func ListTemplates() []domain.ProgramTemplate {
	out := make([]domain.ProgramTemplate, len(templates))
	for i, t := range templates {
		out[i] = t.Clone()
	}
	return out
}

// GetTemplateByID returns the template with the given id or ErrTemplateNotFound.
func GetTemplateByID(id string) (domain.ProgramTemplate, error) {
	for _, t := range templates {
		if t.ID == id {
			return t.Clone(), nil
		}
	}
	return domain.ProgramTemplate{}, ErrTemplateNotFound
}

// SelectTemplateForWeeksUntilRace picks the 8-week template when the race is
// at most ShortProgramMaxWeeks away and the 12-week template otherwise.
func SelectTemplateForWeeksUntilRace(weeks int) domain.ProgramTemplate {
	id := TemplateTwelveWeek
	if weeks <= ShortProgramMaxWeeks {
		id = TemplateEightWeek
	}
	t, _ := GetTemplateByID(id)
	return t
}
