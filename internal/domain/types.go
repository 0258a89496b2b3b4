package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentCredit PaymentMethod = "credit"
	PaymentPayPal PaymentMethod = "paypal"
	PaymentKlarna PaymentMethod = "klarna"
)

// PaymentMethods lists the accepted methods in display order.
var PaymentMethods = []PaymentMethod{PaymentCredit, PaymentPayPal, PaymentKlarna}

func (m PaymentMethod) Valid() bool {
	for _, pm := range PaymentMethods {
		if m == pm {
			return true
		}
	}
	return false
}

type Venue struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	HourlyPrice int64    `json:"hourly_price"`
	Capacity    int      `json:"capacity"`
	Features    []string `json:"features"`
	Image       string   `json:"image"`
}

// BookingDraft is the in-progress reservation. Empty strings mean "not chosen yet".
type BookingDraft struct {
	Date            string        `json:"date"` // YYYY-MM-DD
	Time            string        `json:"time"` // HH:MM
	VenueID         string        `json:"venue_id"`
	Guests          int           `json:"guests"`
	DurationHours   int           `json:"duration_hours"`
	SpecialRequests string        `json:"special_requests"`
	FirstName       string        `json:"first_name"`
	LastName        string        `json:"last_name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
}

// ValidationErrors maps a draft field to a localized message.
type ValidationErrors map[string]string

func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

type WizardState struct {
	Step       int              `json:"step"`
	Draft      BookingDraft     `json:"draft"`
	Errors     ValidationErrors `json:"errors"`
	Submitting bool             `json:"submitting"`
	Reference  string           `json:"reference,omitempty"`
	Lang       string           `json:"lang,omitempty"`
}

func (s WizardState) Confirmed() bool {
	return s.Reference != ""
}

type SubmissionStatus string

const (
	SubmissionConfirmed SubmissionStatus = "confirmed"
	SubmissionFailed    SubmissionStatus = "failed"
)

// Submission is one create-booking attempt recorded by this service.
type Submission struct {
	ID            uuid.UUID
	SessionID     uuid.UUID
	Reference     string
	VenueID       string
	Date          string
	Time          string
	Guests        int
	DurationHours int
	Total         int64
	PaymentMethod PaymentMethod
	Status        SubmissionStatus
	Error         string
	CreatedAt     time.Time
}

type Event struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Date           time.Time `json:"date"`
	Location       string    `json:"location"`
	Price          float64   `json:"price"`
	Capacity       int       `json:"capacity"`
	AvailableSpots int       `json:"available_spots"`
	ImageURL       string    `json:"image_url"`
}

type MembershipTier struct {
	ID                    int64    `json:"id"`
	Name                  string   `json:"name"`
	Slug                  string   `json:"slug"`
	Description           string   `json:"description"`
	MonthlyPrice          float64  `json:"monthly_price"`
	AnnualPrice           float64  `json:"annual_price"`
	DiscountPercentage    int      `json:"discount_percentage"`
	ComplimentaryDrinks   int      `json:"complimentary_drinks"`
	PriorityBooking       bool     `json:"priority_booking"`
	PrivateLoungeAccess   bool     `json:"private_lounge_access"`
	TransportationService bool     `json:"transportation_service"`
	Features              []string `json:"features"`
	AnnualSavings         float64  `json:"annual_savings"`
}

type LoungeAvailability struct {
	VenueID   string `json:"lounge_id"`
	Available bool   `json:"available"`
}
