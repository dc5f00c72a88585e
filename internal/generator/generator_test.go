package generator_test

import (
	"alcyxob/hyrox-trainer/internal/catalog"
	"alcyxob/hyrox-trainer/internal/domain"
	"alcyxob/hyrox-trainer/internal/generator"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var now = time.Date(2025, time.March, 3, 9, 30, 0, 0, time.UTC) // a Monday

func TestValidatePersonalization(t *testing.T) {
	tests := []struct {
		name       string
		input      generator.PersonalizationInput
		wantErrors []string // substrings, one per expected error
	}{
		{
			name:  "valid without race date",
			input: generator.PersonalizationInput{FitnessLevel: "beginner", DaysPerWeek: 3},
		},
		{
			name: "valid with everything",
			input: generator.PersonalizationInput{FitnessLevel: "advanced", DaysPerWeek: 6,
				RaceDate: "2025-06-01", WeakStations: []string{"sled_pull", "rowing"}},
		},
		{
			name:  "race today is allowed",
			input: generator.PersonalizationInput{FitnessLevel: "intermediate", DaysPerWeek: 4, RaceDate: "2025-03-03"},
		},
		{
			name:       "unknown level only",
			input:      generator.PersonalizationInput{FitnessLevel: "expert", DaysPerWeek: 4},
			wantErrors: []string{"fitnessLevel"},
		},
		{
			name:       "too few days",
			input:      generator.PersonalizationInput{FitnessLevel: "beginner", DaysPerWeek: 2},
			wantErrors: []string{"daysPerWeek"},
		},
		{
			name:       "too many days",
			input:      generator.PersonalizationInput{FitnessLevel: "beginner", DaysPerWeek: 7},
			wantErrors: []string{"daysPerWeek"},
		},
		{
			name:       "race in the past",
			input:      generator.PersonalizationInput{FitnessLevel: "beginner", DaysPerWeek: 4, RaceDate: "2025-03-02"},
			wantErrors: []string{"past"},
		},
		{
			name:       "race date unparsable",
			input:      generator.PersonalizationInput{FitnessLevel: "beginner", DaysPerWeek: 4, RaceDate: "next spring"},
			wantErrors: []string{"raceDate"},
		},
		{
			name: "every field wrong",
			input: generator.PersonalizationInput{FitnessLevel: "", DaysPerWeek: 0,
				RaceDate: "2020-01-01T00:00:00Z", WeakStations: []string{"swimming"}},
			wantErrors: []string{"fitnessLevel", "daysPerWeek", "past", "swimming"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generator.ValidatePersonalization(tt.input, now)
			if got.Valid != (len(tt.wantErrors) == 0) {
				t.Fatalf("Valid = %v, errors %v", got.Valid, got.Errors)
			}
			if len(got.Errors) != len(tt.wantErrors) {
				t.Fatalf("got %d errors %v, want %d", len(got.Errors), got.Errors, len(tt.wantErrors))
			}
			for i, want := range tt.wantErrors {
				if !strings.Contains(got.Errors[i], want) {
					t.Errorf("error %d = %q, want it to mention %q", i, got.Errors[i], want)
				}
			}
		})
	}
}

func TestGenerate_TemplateSelection(t *testing.T) {
	tests := []struct {
		name     string
		raceDate string
		want     string
	}{
		{name: "no race date", want: catalog.TemplateEightWeek},
		{name: "six weeks out", raceDate: "2025-04-14", want: catalog.TemplateEightWeek},
		{name: "exactly ten weeks out", raceDate: "2025-05-12", want: catalog.TemplateEightWeek},
		{name: "ten weeks and a day", raceDate: "2025-05-13", want: catalog.TemplateTwelveWeek},
		{name: "half a year out", raceDate: "2025-09-01T08:00:00Z", want: catalog.TemplateTwelveWeek},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := generator.Generate(generator.PersonalizationInput{
				FitnessLevel: "intermediate", DaysPerWeek: 6, RaceDate: tt.raceDate,
			}, now)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if p.TemplateID != tt.want {
				t.Errorf("TemplateID = %s, want %s", p.TemplateID, tt.want)
			}
			if p.TotalWeeks != len(p.Weeks) {
				t.Errorf("TotalWeeks = %d, weeks %d", p.TotalWeeks, len(p.Weeks))
			}
			if (tt.raceDate == "") != (p.RaceDate == nil) {
				t.Errorf("RaceDate = %v for input %q", p.RaceDate, tt.raceDate)
			}
		})
	}
}

func TestGenerate_Invalid(t *testing.T) {
	_, err := generator.Generate(generator.PersonalizationInput{FitnessLevel: "expert", DaysPerWeek: 4}, now)
	if !errors.Is(err, generator.ErrInvalidPersonalization) {
		t.Errorf("error = %v, want ErrInvalidPersonalization", err)
	}
}

func TestGenerate_StartsToday(t *testing.T) {
	p, err := generator.Generate(generator.PersonalizationInput{FitnessLevel: "beginner", DaysPerWeek: 4}, now)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	if !p.StartDate.Equal(want) {
		t.Errorf("StartDate = %v, want %v", p.StartDate, want)
	}
	if p.ID == "" || p.ID == p.TemplateID {
		t.Errorf("ID = %q, want a fresh program id", p.ID)
	}
	if diff := cmp.Diff(domain.DefaultWeakStations, p.WeakStations); diff != "" {
		t.Errorf("default weak stations (-want +got):\n%s", diff)
	}
}

func TestGenerate_CollapsesToRequestedDays(t *testing.T) {
	p, err := generator.Generate(generator.PersonalizationInput{FitnessLevel: "intermediate", DaysPerWeek: 3}, now)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	tmpl, _ := catalog.GetTemplateByID(p.TemplateID)

	for i, wp := range p.Weeks {
		training := 0
		for _, w := range wp.Workouts {
			if w.Type == domain.WorkoutQuick {
				t.Errorf("week %d: quick workout survived collapsing to 3 days", wp.Week)
			}
			if w.Type != domain.WorkoutRest {
				training++
			}
		}
		if training != 3 {
			t.Errorf("week %d: %d training days, want 3", wp.Week, training)
		}
		if len(wp.Workouts) != len(tmpl.Weeks[i].Workouts) {
			t.Errorf("week %d: %d slots, template has %d", wp.Week, len(wp.Workouts), len(tmpl.Weeks[i].Workouts))
		}
		for _, w := range tmpl.Weeks[i].Workouts {
			if !w.IsKey(domain.DefaultKeyCoverageThreshold) {
				continue
			}
			got, ok := domain.WorkoutAt(p.Weeks, wp.Week, w.DayOfWeek)
			if !ok || got.Type != w.Type {
				t.Errorf("week %d: key workout on day %d was dropped", wp.Week, w.DayOfWeek)
			}
		}
	}
}

func TestGenerate_NeverAddsDays(t *testing.T) {
	p, err := generator.Generate(generator.PersonalizationInput{FitnessLevel: "intermediate", DaysPerWeek: 6}, now)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	tmpl, _ := catalog.GetTemplateByID(p.TemplateID)
	for i, wp := range p.Weeks {
		if len(wp.Workouts) != len(tmpl.Weeks[i].Workouts) {
			t.Errorf("week %d: %d workouts, template has %d", wp.Week, len(wp.Workouts), len(tmpl.Weeks[i].Workouts))
		}
	}
}

func TestGenerate_WeakStationEmphasis(t *testing.T) {
	weak := []string{"sled_pull", "sandbag_lunges"}
	p, err := generator.Generate(generator.PersonalizationInput{
		FitnessLevel: "intermediate", DaysPerWeek: 5, WeakStations: weak,
	}, now)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	tmpl, _ := catalog.GetTemplateByID(p.TemplateID)

	for i, wp := range p.Weeks {
		gotMinutes, wantMinutes := 0, 0
		for _, w := range tmpl.Weeks[i].Workouts {
			wantMinutes += w.EstimatedMinutes
		}
		for _, w := range wp.Workouts {
			gotMinutes += w.EstimatedMinutes
			stations := w.Params.Stations
			if len(stations) == 0 {
				continue
			}
			weakCount := 0
			for j, s := range stations {
				if slices.Contains(stations[j+1:], s) {
					t.Errorf("week %d day %d: duplicate station %s", wp.Week, w.DayOfWeek, s)
				}
				if slices.Contains(weak, string(s)) {
					weakCount++
				}
			}
			if weakCount < min(len(weak), (len(stations)+1)/2) {
				t.Errorf("week %d day %d: %d of %v are weak", wp.Week, w.DayOfWeek, weakCount, stations)
			}
		}
		if gotMinutes != wantMinutes {
			t.Errorf("week %d: %d estimated minutes, template has %d", wp.Week, gotMinutes, wantMinutes)
		}
	}
}

func TestGenerate_LevelScaling(t *testing.T) {
	build := func(level string) generator.GeneratedProgram {
		t.Helper()
		p, err := generator.Generate(generator.PersonalizationInput{FitnessLevel: level, DaysPerWeek: 5}, now)
		if err != nil {
			t.Fatalf("Generate(%s): %v", level, err)
		}
		return p
	}
	beginner, intermediate, advanced := build("beginner"), build("intermediate"), build("advanced")

	runMinutes := func(p generator.GeneratedProgram) int {
		total := 0
		for _, wp := range p.Weeks {
			for _, w := range wp.Workouts {
				if w.Type == domain.WorkoutRun {
					total += w.Params.Duration
				}
				if w.Type == domain.WorkoutCoverage && p.FitnessLevel == domain.LevelBeginner && w.Params.Coverage > 90 {
					t.Errorf("beginner coverage %d above cap", w.Params.Coverage)
				}
			}
		}
		return total
	}
	b, i, a := runMinutes(beginner), runMinutes(intermediate), runMinutes(advanced)
	if b >= i || i >= a {
		t.Errorf("run minutes beginner %d, intermediate %d, advanced %d: want strictly increasing", b, i, a)
	}
}

func TestGenerate_DoesNotShareTemplateMemory(t *testing.T) {
	p, err := generator.Generate(generator.PersonalizationInput{FitnessLevel: "beginner", DaysPerWeek: 3}, now)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i := range p.Weeks {
		for j := range p.Weeks[i].Workouts {
			p.Weeks[i].Workouts[j].Title = "changed"
		}
	}
	tmpl, _ := catalog.GetTemplateByID(p.TemplateID)
	if tmpl.Weeks[0].Workouts[0].Title == "changed" {
		t.Error("generated program aliases the catalog template")
	}
}

func TestFromTemplate(t *testing.T) {
	tmpl, _ := catalog.GetTemplateByID(catalog.TemplateTwelveWeek)
	p := generator.FromTemplate(tmpl, now)
	if p.ID != tmpl.ID || p.TotalWeeks != 12 {
		t.Errorf("got id %s with %d weeks", p.ID, p.TotalWeeks)
	}
	if diff := cmp.Diff(tmpl.Weeks, p.Weeks); diff != "" {
		t.Errorf("template schedule changed (-want +got):\n%s", diff)
	}
}

func TestWeeksUntil(t *testing.T) {
	tests := []struct {
		days int
		want int
	}{
		{days: 0, want: 0},
		{days: 1, want: 1},
		{days: 7, want: 1},
		{days: 8, want: 2},
		{days: 70, want: 10},
		{days: 71, want: 11},
	}
	for _, tt := range tests {
		if got := generator.WeeksUntil(now, now.AddDate(0, 0, tt.days)); got != tt.want {
			t.Errorf("WeeksUntil(+%d days) = %d, want %d", tt.days, got, tt.want)
		}
	}
}
