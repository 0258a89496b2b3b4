package booking

import (
	"time"

	"github.com/elevate-events/lounge/internal/domain"
)

const (
	MinGuests        = 1
	MaxGuests        = 150
	MinDurationHours = 1
	MaxDurationHours = 12
)

// Reconcile restores the draft invariants after a mutation: a time that is no
// longer a valid slot is cleared, guests and duration are kept in range and
// guests never exceed the selected venue's capacity. Applying it twice is a
// no-op.
func Reconcile(d domain.BookingDraft, venues VenueLookup, now time.Time, interval time.Duration) domain.BookingDraft {
	if d.Time != "" && !slotAvailable(d.Date, d.Time, now, interval) {
		d.Time = ""
	}

	d.Guests = clamp(d.Guests, MinGuests, MaxGuests)
	d.DurationHours = clamp(d.DurationHours, MinDurationHours, MaxDurationHours)

	if d.VenueID != "" {
		if v, ok := venues.Get(d.VenueID); ok && d.Guests > v.Capacity {
			d.Guests = v.Capacity
		}
	}

	return d
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
