package booking

import (
	"time"

	"github.com/elevate-events/lounge/internal/domain"
)

type Schedule struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	CrossesMidnight bool      `json:"crosses_midnight"`
}

// ScheduleFor resolves the draft's start and end in loc. ok is false while
// date, time or duration are missing.
func ScheduleFor(d domain.BookingDraft, loc *time.Location) (Schedule, bool) {
	if d.Date == "" || d.Time == "" || d.DurationHours <= 0 {
		return Schedule{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	start, err := time.ParseInLocation(DateLayout+" "+TimeLayout, d.Date+" "+d.Time, loc)
	if err != nil {
		return Schedule{}, false
	}
	end := start.Add(time.Duration(d.DurationHours) * time.Hour)

	return Schedule{
		Start:           start,
		End:             end,
		CrossesMidnight: end.Format(DateLayout) != start.Format(DateLayout),
	}, true
}
