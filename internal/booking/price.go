package booking

import "github.com/elevate-events/lounge/internal/domain"

// VenueLookup resolves a venue id against the catalog.
type VenueLookup interface {
	Get(id string) (domain.Venue, bool)
}

// Total is the venue hourly price times the booked hours, 0 without a venue.
func Total(venues VenueLookup, d domain.BookingDraft) int64 {
	if d.VenueID == "" {
		return 0
	}
	v, ok := venues.Get(d.VenueID)
	if !ok {
		return 0
	}
	return v.HourlyPrice * int64(d.DurationHours)
}
