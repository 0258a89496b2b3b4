package booking

import (
	"regexp"
	"strings"

	"github.com/elevate-events/lounge/internal/domain"
	"github.com/elevate-events/lounge/internal/i18n"
)

const (
	FieldDate          = "date"
	FieldTime          = "time"
	FieldVenue         = "venue_id"
	FieldFirstName     = "first_name"
	FieldLastName      = "last_name"
	FieldEmail         = "email"
	FieldPhone         = "phone"
	FieldPaymentMethod = "payment_method"
	FieldSubmit        = "submit"
)

// Localizer turns a message key into user facing text.
type Localizer interface {
	T(key string) string
}

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail is a shape check only: no whitespace, exactly one "@" and a dot
// inside the domain part.
func ValidEmail(s string) bool {
	return emailShape.MatchString(s)
}

// ValidateStep returns the errors blocking step. Unknown steps have none.
func ValidateStep(step int, d domain.BookingDraft, msgs Localizer) domain.ValidationErrors {
	errs := domain.ValidationErrors{}

	switch step {
	case 1:
		if d.Date == "" {
			errs[FieldDate] = msgs.T(i18n.KeyDate)
		}
		if d.Time == "" {
			errs[FieldTime] = msgs.T(i18n.KeyTime)
		}
	case 2:
		if d.VenueID == "" {
			errs[FieldVenue] = msgs.T(i18n.KeyLounge)
		}
	case 3:
		if strings.TrimSpace(d.FirstName) == "" {
			errs[FieldFirstName] = msgs.T(i18n.KeyFirstName)
		}
		if strings.TrimSpace(d.LastName) == "" {
			errs[FieldLastName] = msgs.T(i18n.KeyLastName)
		}
		if !ValidEmail(d.Email) {
			errs[FieldEmail] = msgs.T(i18n.KeyEmail)
		}
		if strings.TrimSpace(d.Phone) == "" {
			errs[FieldPhone] = msgs.T(i18n.KeyPhone)
		}
	case 4:
		if d.PaymentMethod == "" {
			errs[FieldPaymentMethod] = msgs.T(i18n.KeyPayment)
		}
	}

	return errs
}
