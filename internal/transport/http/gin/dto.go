package httpgin

import (
	"time"

	"github.com/elevate-events/lounge/internal/booking"
	"github.com/elevate-events/lounge/internal/domain"
)

type StartWizardRequest struct {
	Lang string `json:"lang" binding:"omitempty,oneof=en de"`
}

// PatchDraftRequest carries the edited fields only. Omitted fields keep their
// value; an empty string clears a field.
type PatchDraftRequest struct {
	Date            *string `json:"date" binding:"omitempty,isodate"`
	Time            *string `json:"time" binding:"omitempty,hhmm"`
	Guests          *int    `json:"guests"`
	DurationHours   *int    `json:"duration_hours"`
	SpecialRequests *string `json:"special_requests" binding:"omitempty,max=2000"`
	FirstName       *string `json:"first_name" binding:"omitempty,max=100"`
	LastName        *string `json:"last_name" binding:"omitempty,max=100"`
	Email           *string `json:"email" binding:"omitempty,max=254"`
	Phone           *string `json:"phone" binding:"omitempty,max=40"`
	PaymentMethod   *string `json:"payment_method" binding:"omitempty,oneof=credit paypal klarna"`
}

func (r PatchDraftRequest) toPatch() booking.Patch {
	p := booking.Patch{
		Date:            r.Date,
		Time:            r.Time,
		Guests:          r.Guests,
		DurationHours:   r.DurationHours,
		SpecialRequests: r.SpecialRequests,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Email:           r.Email,
		Phone:           r.Phone,
	}
	if r.PaymentMethod != nil {
		pm := domain.PaymentMethod(*r.PaymentMethod)
		p.PaymentMethod = &pm
	}
	return p
}

type SelectVenueRequest struct {
	VenueID string `json:"venue_id" binding:"required"`
}

type SlotsQuery struct {
	Date string `form:"date" binding:"required,isodate"`
}

type QuoteQuery struct {
	Venue    string `form:"venue" binding:"required"`
	Duration int    `form:"duration" binding:"required,min=1,max=12"`
}

type EventsQuery struct {
	Category string `form:"category"`
}

type AvailabilityQuery struct {
	Date     string `form:"date" binding:"required,isodate"`
	Time     string `form:"time" binding:"required,hhmm"`
	Duration int    `form:"duration" binding:"omitempty,min=1,max=12"`
	Category string `form:"category"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// WizardResponse is a session view tagged with its session id.
type WizardResponse struct {
	SessionID string `json:"session_id"`
	booking.View
}

type SlotsResponse struct {
	Date    string   `json:"date"`
	Slots   []string `json:"slots"`
	NoSlots bool     `json:"no_slots"`
	Message string   `json:"message,omitempty"`
}

type QuoteResponse struct {
	VenueID       string `json:"venue_id"`
	DurationHours int    `json:"duration_hours"`
	Total         int64  `json:"total"`
	TotalDisplay  string `json:"total_display"`
}

type SubmissionResponse struct {
	ID            string `json:"id"`
	Reference     string `json:"reference,omitempty"`
	Status        string `json:"status"`
	VenueID       string `json:"venue_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Guests        int    `json:"guests"`
	DurationHours int    `json:"duration_hours"`
	Total         int64  `json:"total"`
	Error         string `json:"error,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func toSubmissionResponse(s domain.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:            s.ID.String(),
		Reference:     s.Reference,
		Status:        string(s.Status),
		VenueID:       s.VenueID,
		Date:          s.Date,
		Time:          s.Time,
		Guests:        s.Guests,
		DurationHours: s.DurationHours,
		Total:         s.Total,
		Error:         s.Error,
		CreatedAt:     s.CreatedAt.Format(time.RFC3339),
	}
}
