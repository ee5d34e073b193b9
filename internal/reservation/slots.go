package reservation

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSchedule marks a schedule whose availability window is
// empty or inverted. Such schedules are rejected at creation time, so
// hitting this during generation means bad data reached the store; the
// generator refuses to emit slots for it rather than producing
// nonsense times.
var ErrInvalidSchedule = errors.New("invalid schedule")

// ExpandSchedule turns one weekly schedule into concrete slot times
// over [from, from+horizonDays), one slot per calendar day whose
// weekday matches. The slot lands on the schedule's start hour; the
// rest of the [StartHour, EndHour) window is intentionally not sliced
// into finer slots.
func ExpandSchedule(s Schedule, from time.Time, horizonDays int) ([]time.Time, error) {
	if s.StartHour >= s.EndHour {
		return nil, fmt.Errorf("%w: schedule %s has empty window [%d, %d)", ErrInvalidSchedule, s.ID, s.StartHour, s.EndHour)
	}

	var slots []time.Time
	year, month, day := from.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, from.Location())

	for i := 0; i < horizonDays; i++ {
		d := start.AddDate(0, 0, i)
		if d.Weekday() != s.DayOfWeek {
			continue
		}
		slots = append(slots, d.Add(time.Duration(s.StartHour)*time.Hour))
	}

	return slots, nil
}

// ValidateSchedule is the shared create/update check.
func ValidateSchedule(s Schedule) error {
	if s.DayOfWeek < time.Sunday || s.DayOfWeek > time.Saturday {
		return fmt.Errorf("%w: day of week %d out of range", ErrInvalidSchedule, s.DayOfWeek)
	}
	if s.StartHour < 0 || s.EndHour > 24 {
		return fmt.Errorf("%w: hours must lie within [0, 24], got [%d, %d)", ErrInvalidSchedule, s.StartHour, s.EndHour)
	}
	if s.StartHour >= s.EndHour {
		return fmt.Errorf("%w: start hour %d must be before end hour %d", ErrInvalidSchedule, s.StartHour, s.EndHour)
	}
	return nil
}
