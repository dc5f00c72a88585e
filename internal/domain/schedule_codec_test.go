package domain_test

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleWeeks() []domain.WeekPlan {
	return []domain.WeekPlan{
		{
			Week: 1, Phase: "Base", Theme: "Aerobic engine",
			Workouts: []domain.ScheduledWorkout{
				{DayOfWeek: 1, DayName: "Monday", Type: domain.WorkoutRun, EstimatedMinutes: 40,
					Params: domain.WorkoutParams{RunType: domain.RunZone2, Duration: 40}},
				{DayOfWeek: 3, DayName: "Wednesday", Type: domain.WorkoutStation, EstimatedMinutes: 45,
					Params: domain.WorkoutParams{Stations: []domain.Station{domain.StationSledPush}}},
			},
		},
		{
			Week: 2, Phase: "Taper", Theme: "Race week", IsDeload: true,
			Workouts: []domain.ScheduledWorkout{
				{DayOfWeek: 0, DayName: "Sunday", Type: domain.WorkoutRest},
			},
		},
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	weeks := sampleWeeks()
	data, err := domain.EncodeSchedule(weeks)
	if err != nil {
		t.Fatalf("EncodeSchedule: %v", err)
	}
	got, err := domain.DecodeSchedule(data)
	if err != nil {
		t.Fatalf("DecodeSchedule: %v", err)
	}
	if diff := cmp.Diff(weeks, got); diff != "" {
		t.Errorf("schedule mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSchedule_LegacyArrayIsMigrated(t *testing.T) {
	legacy := `[{"week":1,"phase":"Taper","theme":"t","isDeload":true,"workouts":[{"dayOfWeek":0,"type":"rest"}]}]`
	got, err := domain.DecodeSchedule([]byte(legacy))
	if err != nil {
		t.Fatalf("DecodeSchedule: %v", err)
	}
	if len(got) != 1 || got[0].Phase != "Taper" {
		t.Errorf("unexpected weeks: %+v", got)
	}
}

func TestDecodeSchedule_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{name: "empty", data: "  ", want: domain.ErrMalformedSchedule},
		{name: "garbage", data: "{not json", want: domain.ErrMalformedSchedule},
		{name: "future version", data: `{"version":7,"weeks":[]}`, want: domain.ErrUnsupportedScheduleVersion},
		{name: "gap in weeks", data: `{"version":1,"weeks":[{"week":2,"workouts":[{"dayOfWeek":1,"type":"rest"}]}]}`,
			want: domain.ErrMalformedSchedule},
		{name: "empty week", data: `{"version":1,"weeks":[{"week":1,"workouts":[]}]}`, want: domain.ErrMalformedSchedule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.DecodeSchedule([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("DecodeSchedule() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestScheduledWorkout_Validate(t *testing.T) {
	tests := []struct {
		name    string
		workout domain.ScheduledWorkout
		wantErr bool
	}{
		{
			name: "intervals complete",
			workout: domain.ScheduledWorkout{DayOfWeek: 2, Type: domain.WorkoutRun, Params: domain.WorkoutParams{
				RunType: domain.RunIntervals, Duration: 45, Reps: 6, Distance: 1000, Rest: 90}},
		},
		{
			name: "intervals missing rest",
			workout: domain.ScheduledWorkout{DayOfWeek: 2, Type: domain.WorkoutRun, Params: domain.WorkoutParams{
				RunType: domain.RunIntervals, Duration: 45, Reps: 6, Distance: 1000}},
			wantErr: true,
		},
		{
			name:    "strength without exercises",
			workout: domain.ScheduledWorkout{DayOfWeek: 2, Type: domain.WorkoutStrength, Params: domain.WorkoutParams{StrengthFocus: domain.FocusLower}},
			wantErr: true,
		},
		{
			name:    "coverage above 150",
			workout: domain.ScheduledWorkout{DayOfWeek: 6, Type: domain.WorkoutCoverage, Params: domain.WorkoutParams{Coverage: 151}},
			wantErr: true,
		},
		{
			name:    "rest needs nothing",
			workout: domain.ScheduledWorkout{DayOfWeek: 0, Type: domain.WorkoutRest},
		},
		{
			name:    "day out of range",
			workout: domain.ScheduledWorkout{DayOfWeek: 7, Type: domain.WorkoutRest},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.workout.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScheduledWorkout_IsKey(t *testing.T) {
	full := domain.ScheduledWorkout{Type: domain.WorkoutFull}
	high := domain.ScheduledWorkout{Type: domain.WorkoutCoverage, Params: domain.WorkoutParams{Coverage: 75}}
	low := domain.ScheduledWorkout{Type: domain.WorkoutCoverage, Params: domain.WorkoutParams{Coverage: 50}}
	run := domain.ScheduledWorkout{Type: domain.WorkoutRun}

	threshold := domain.DefaultKeyCoverageThreshold
	if !full.IsKey(threshold) || !high.IsKey(threshold) {
		t.Error("full and 75% coverage workouts must be key workouts")
	}
	if low.IsKey(threshold) || run.IsKey(threshold) {
		t.Error("50% coverage and run workouts must not be key workouts")
	}
}
