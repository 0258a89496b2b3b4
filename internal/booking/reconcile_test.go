package booking

import (
	"testing"
	"time"

	"github.com/elevate-events/lounge/internal/catalog"
	"github.com/elevate-events/lounge/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestReconcile(t *testing.T) {
	venues := catalog.Default()
	now := time.Date(2026, 10, 18, 14, 12, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   domain.BookingDraft
		want domain.BookingDraft
	}{
		{
			name: "guests clamped to venue capacity",
			in:   domain.BookingDraft{VenueID: "gold", Guests: 10, DurationHours: 2},
			want: domain.BookingDraft{VenueID: "gold", Guests: 6, DurationHours: 2},
		},
		{
			name: "guests within capacity untouched",
			in:   domain.BookingDraft{VenueID: "vip", Guests: 10, DurationHours: 2},
			want: domain.BookingDraft{VenueID: "vip", Guests: 10, DurationHours: 2},
		},
		{
			name: "past slot today cleared",
			in:   domain.BookingDraft{Date: "2026-10-18", Time: "14:00", Guests: 2, DurationHours: 2},
			want: domain.BookingDraft{Date: "2026-10-18", Guests: 2, DurationHours: 2},
		},
		{
			name: "future slot today kept",
			in:   domain.BookingDraft{Date: "2026-10-18", Time: "14:30", Guests: 2, DurationHours: 2},
			want: domain.BookingDraft{Date: "2026-10-18", Time: "14:30", Guests: 2, DurationHours: 2},
		},
		{
			name: "off grid time cleared",
			in:   domain.BookingDraft{Date: "2026-10-19", Time: "14:15", Guests: 2, DurationHours: 2},
			want: domain.BookingDraft{Date: "2026-10-19", Guests: 2, DurationHours: 2},
		},
		{
			name: "ranges enforced",
			in:   domain.BookingDraft{Guests: 0, DurationHours: 40},
			want: domain.BookingDraft{Guests: 1, DurationHours: 12},
		},
		{
			name: "guest upper bound",
			in:   domain.BookingDraft{Guests: 500, DurationHours: 1},
			want: domain.BookingDraft{Guests: 150, DurationHours: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.in, venues, now, SlotInterval)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Reconcile(got, venues, now, SlotInterval), "not idempotent")
		})
	}
}
