package booking

import (
	"fmt"
	"slices"
	"time"
)

const (
	SlotInterval = 30 * time.Minute

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// AllSlots returns every "HH:MM" start time of a day at the given granularity.
func AllSlots(interval time.Duration) []string {
	step := stepMinutes(interval)
	out := make([]string, 0, 24*60/step)
	for m := 0; m < 24*60; m += step {
		out = append(out, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return out
}

// Slots returns the selectable start times for date. When date is today in
// now's location, only slots at or after the next boundary strictly after now
// are kept: at 14:12 with 30 minute slots the first one is 14:30, at 14:00
// it is 14:30 as well. An empty date yields the full day.
func Slots(date string, now time.Time, interval time.Duration) []string {
	all := AllSlots(interval)
	if date == "" || date != now.Format(DateLayout) {
		return all
	}

	step := stepMinutes(interval)
	current := now.Hour()*60 + now.Minute()
	next := (current/step + 1) * step

	out := make([]string, 0, len(all))
	for i, s := range all {
		if i*step >= next {
			out = append(out, s)
		}
	}
	return out
}

// NoSlotsLeft reports whether date is today and the day has no slot left.
func NoSlotsLeft(date string, now time.Time, interval time.Duration) bool {
	return date != "" && date == now.Format(DateLayout) && len(Slots(date, now, interval)) == 0
}

func slotAvailable(date, hhmm string, now time.Time, interval time.Duration) bool {
	return slices.Contains(Slots(date, now, interval), hhmm)
}

func stepMinutes(interval time.Duration) int {
	step := int(interval / time.Minute)
	if step <= 0 || step > 24*60 {
		return int(SlotInterval / time.Minute)
	}
	return step
}
