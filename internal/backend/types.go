package backend

import (
	"encoding/json"
	"time"
)

// CreateBookingRequest is the body of POST /bookings.
type CreateBookingRequest struct {
	LoungeID        string `json:"lounge_id" validate:"required"`
	BookingDate     string `json:"booking_date" validate:"required,datetime=2006-01-02"`
	StartTime       string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime         string `json:"end_time" validate:"required,datetime=15:04"`
	EndsNextDay     bool   `json:"ends_next_day"`
	DurationHours   int    `json:"duration_hours" validate:"min=1,max=12"`
	Guests          int    `json:"guests" validate:"min=1,max=150"`
	SpecialRequests string `json:"special_requests,omitempty"`
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Email           string `json:"email" validate:"required,email_shape"`
	Phone           string `json:"phone" validate:"required"`
	PaymentMethod   string `json:"payment_method" validate:"required,oneof=credit paypal klarna"`
	TotalAmount     int64  `json:"total_amount" validate:"gte=0"`
	Currency        string `json:"currency" validate:"required,len=3"`
}

type CreateBookingResponse struct {
	BookingReference string `json:"booking_reference"`
	Status           string `json:"status"`
}

type Booking struct {
	BookingReference string    `json:"booking_reference"`
	LoungeID         string    `json:"lounge_id"`
	BookingDate      string    `json:"booking_date"`
	StartTime        string    `json:"start_time"`
	DurationHours    int       `json:"duration_hours"`
	Guests           int       `json:"guests"`
	Status           string    `json:"status"`
	TotalAmount      float64   `json:"total_amount"`
	CreatedAt        time.Time `json:"created_at"`
}

// MembershipTier is the tier as the API sends it. Features arrive either as
// a JSON array or as a string holding one.
type MembershipTier struct {
	ID                    int64           `json:"id"`
	Name                  string          `json:"name"`
	Slug                  string          `json:"slug"`
	Description           string          `json:"description"`
	MonthlyPrice          float64         `json:"monthly_price"`
	AnnualPrice           float64         `json:"annual_price"`
	DiscountPercentage    int             `json:"discount_percentage"`
	ComplimentaryDrinks   int             `json:"complimentary_drinks"`
	PriorityBooking       bool            `json:"priority_booking"`
	PrivateLoungeAccess   bool            `json:"private_lounge_access"`
	TransportationService bool            `json:"transportation_service"`
	Features              json.RawMessage `json:"features"`
}

// FeaturesText returns the raw features payload with one level of string
// quoting removed.
func (t MembershipTier) FeaturesText() string {
	var s string
	if err := json.Unmarshal(t.Features, &s); err == nil {
		return s
	}
	return string(t.Features)
}

type LoungeAvailabilityResponse struct {
	Date     string               `json:"date"`
	Time     string               `json:"time"`
	Duration int                  `json:"duration"`
	Lounges  []LoungeAvailability `json:"lounges"`
}

type LoungeAvailability struct {
	LoungeID  string `json:"lounge_id"`
	Available bool   `json:"available"`
}
