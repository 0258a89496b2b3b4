package i18n

import (
	"golang.org/x/text/language"
)

const (
	KeyDate      = "errors.date"
	KeyTime      = "errors.time"
	KeyLounge    = "errors.lounge"
	KeyFirstName = "errors.first_name"
	KeyLastName  = "errors.last_name"
	KeyEmail     = "errors.email"
	KeyPhone     = "errors.phone"
	KeyPayment   = "errors.payment"
	KeySubmit    = "errors.submit"
	KeyNoSlots   = "step1.no_slots"
)

var supported = []language.Tag{
	language.English, // first entry is the fallback
	language.German,
}

var matcher = language.NewMatcher(supported)

var tables = map[language.Tag]map[string]string{
	language.English: {
		KeyDate:      "Please select a date.",
		KeyTime:      "Please select a time.",
		KeyLounge:    "Please select a lounge.",
		KeyFirstName: "First name is required.",
		KeyLastName:  "Last name is required.",
		KeyEmail:     "Please enter a valid email address.",
		KeyPhone:     "Phone number is required.",
		KeyPayment:   "Please select a payment method.",
		KeySubmit:    "Something went wrong while submitting your reservation. Please try again.",
		KeyNoSlots:   "No time slots left today. Please choose another date.",
	},
	language.German: {
		KeyDate:      "Bitte wählen Sie ein Datum.",
		KeyTime:      "Bitte wählen Sie eine Uhrzeit.",
		KeyLounge:    "Bitte wählen Sie eine Lounge.",
		KeyFirstName: "Vorname ist erforderlich.",
		KeyLastName:  "Nachname ist erforderlich.",
		KeyEmail:     "Bitte geben Sie eine gültige E-Mail-Adresse ein.",
		KeyPhone:     "Telefonnummer ist erforderlich.",
		KeyPayment:   "Bitte wählen Sie eine Zahlungsmethode.",
		KeySubmit:    "Beim Absenden Ihrer Reservierung ist ein Fehler aufgetreten. Bitte versuchen Sie es erneut.",
		KeyNoSlots:   "Heute sind keine Zeitfenster mehr frei. Bitte wählen Sie ein anderes Datum.",
	},
}

// Messages resolves message keys for one language.
type Messages struct {
	tag language.Tag
}

// For returns the messages for the best supported match of lang.
// Unknown or empty languages fall back to English.
func For(lang string) Messages {
	tag, err := language.Parse(lang)
	if err != nil {
		return Messages{tag: language.English}
	}
	_, idx, _ := matcher.Match(tag)
	return Messages{tag: supported[idx]}
}

// FromAcceptLanguage picks a supported language from an Accept-Language header.
func FromAcceptLanguage(header string) Messages {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Messages{tag: language.English}
	}
	_, idx, _ := matcher.Match(tags...)
	return Messages{tag: supported[idx]}
}

func (m Messages) Lang() string {
	return m.tag.String()
}

// T returns the message for key, then the English message, then key itself.
func (m Messages) T(key string) string {
	if s, ok := tables[m.tag][key]; ok {
		return s
	}
	if s, ok := tables[language.English][key]; ok {
		return s
	}
	return key
}
