package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ScheduleVersion is the current schema version of a stored schedule.
const ScheduleVersion = 1

var (
	ErrUnsupportedScheduleVersion = errors.New("unsupported schedule version")
	ErrMalformedSchedule          = errors.New("malformed schedule")
)

// ScheduleEnvelope is the versioned storage form of a materialized schedule.
type ScheduleEnvelope struct {
	Version int        `bson:"version" json:"version"`
	Weeks   []WeekPlan `bson:"weeks" json:"weeks"`
}

// EncodeSchedule serializes weeks in the current schema version.
func EncodeSchedule(weeks []WeekPlan) ([]byte, error) {
	data, err := json.Marshal(ScheduleEnvelope{Version: ScheduleVersion, Weeks: weeks})
	if err != nil {
		return nil, fmt.Errorf("marshal schedule: %w", err)
	}
	return data, nil
}

// DecodeSchedule parses a stored schedule. Version 0 schedules, stored as a
// bare JSON array of weeks, are migrated to the current version.
func DecodeSchedule(data []byte) ([]WeekPlan, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedSchedule)
	}

	var env ScheduleEnvelope
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &env.Weeks); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedSchedule, err)
		}
	} else {
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedSchedule, err)
		}
		if err := CheckScheduleVersion(env.Version); err != nil {
			return nil, err
		}
	}

	if err := CheckScheduleShape(env.Weeks); err != nil {
		return nil, err
	}
	return env.Weeks, nil
}

// CheckScheduleVersion rejects versions this build cannot read.
func CheckScheduleVersion(version int) error {
	if version != ScheduleVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedScheduleVersion, version)
	}
	return nil
}

// CheckScheduleShape verifies week numbering runs 1..N without gaps and that
// every week has at least one workout with a valid day.
func CheckScheduleShape(weeks []WeekPlan) error {
	if len(weeks) == 0 {
		return fmt.Errorf("%w: no weeks", ErrMalformedSchedule)
	}
	for i, wp := range weeks {
		if wp.Week != i+1 {
			return fmt.Errorf("%w: week %d at position %d", ErrMalformedSchedule, wp.Week, i+1)
		}
		if len(wp.Workouts) == 0 {
			return fmt.Errorf("%w: week %d has no workouts", ErrMalformedSchedule, wp.Week)
		}
		for _, w := range wp.Workouts {
			if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
				return fmt.Errorf("%w: week %d has day %d", ErrMalformedSchedule, wp.Week, w.DayOfWeek)
			}
		}
	}
	return nil
}
