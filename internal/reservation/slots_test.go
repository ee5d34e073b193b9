package reservation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandSchedule(t *testing.T) {
	// Monday 2024-01-01.
	from := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name        string
		day         time.Weekday
		startHour   int
		endHour     int
		horizonDays int
		wantTimes   []time.Time
	}{
		{
			name:        "one slot per matching weekday",
			day:         time.Monday,
			startHour:   9,
			endHour:     12,
			horizonDays: 15,
			wantTimes: []time.Time{
				time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
			},
		},
		{
			name:        "weekday later in the window",
			day:         time.Wednesday,
			startHour:   14,
			endHour:     16,
			horizonDays: 7,
			wantTimes: []time.Time{
				time.Date(2024, 1, 3, 14, 0, 0, 0, time.UTC),
			},
		},
		{
			name:        "zero horizon yields nothing",
			day:         time.Monday,
			startHour:   9,
			endHour:     12,
			horizonDays: 0,
			wantTimes:   nil,
		},
		{
			name:        "weekday absent from short horizon",
			day:         time.Sunday,
			startHour:   9,
			endHour:     12,
			horizonDays: 6,
			wantTimes:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched := Schedule{
				ID:        uuid.New(),
				DoctorID:  uuid.New(),
				DayOfWeek: tt.day,
				StartHour: tt.startHour,
				EndHour:   tt.endHour,
			}

			got, err := ExpandSchedule(sched, from, tt.horizonDays)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTimes, got)
		})
	}
}

func TestExpandScheduleStartTimeOfDayIgnored(t *testing.T) {
	sched := Schedule{ID: uuid.New(), DayOfWeek: time.Monday, StartHour: 9, EndHour: 12}

	// Generation late on Monday still emits today's slot; the horizon
	// counts calendar days, not elapsed time.
	from := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
	got, err := ExpandSchedule(sched, from, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), got[0])
}

func TestExpandScheduleInvalid(t *testing.T) {
	for _, window := range [][2]int{{12, 9}, {9, 9}} {
		sched := Schedule{
			ID:        uuid.New(),
			DayOfWeek: time.Monday,
			StartHour: window[0],
			EndHour:   window[1],
		}

		got, err := ExpandSchedule(sched, time.Now(), 15)
		assert.ErrorIs(t, err, ErrInvalidSchedule)
		assert.Empty(t, got)
	}
}

func TestValidateSchedule(t *testing.T) {
	valid := Schedule{DayOfWeek: time.Tuesday, StartHour: 9, EndHour: 17}
	assert.NoError(t, ValidateSchedule(valid))

	tests := []struct {
		name  string
		sched Schedule
	}{
		{"inverted window", Schedule{DayOfWeek: time.Monday, StartHour: 17, EndHour: 9}},
		{"empty window", Schedule{DayOfWeek: time.Monday, StartHour: 9, EndHour: 9}},
		{"negative start", Schedule{DayOfWeek: time.Monday, StartHour: -1, EndHour: 9}},
		{"end past midnight", Schedule{DayOfWeek: time.Monday, StartHour: 9, EndHour: 25}},
		{"bad weekday", Schedule{DayOfWeek: time.Weekday(7), StartHour: 9, EndHour: 17}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateSchedule(tt.sched), ErrInvalidSchedule)
		})
	}
}
