package redisx

import (
	"fmt"
	"strings"
)

const ns = "elevate:v1"

func KeyWizardSession(id string) string {
	return fmt.Sprintf("%s:wizard:%s", ns, id)
}

func KeySubmitLock(sessionID string) string {
	return fmt.Sprintf("%s:wizard:%s:submit", ns, sessionID)
}

func KeyIdempotency(sessionID, idemKey string) string {
	return fmt.Sprintf("%s:idem:submit:%s:%s", ns, sessionID, idemKey)
}

func KeyEvents(category string) string {
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf("%s:events:%s", ns, category)
}

func KeyMembershipTiers() string {
	return ns + ":membership-tiers"
}

// KeyAvailability addresses one cached lounge availability lookup. All of
// them share the AvailabilityPattern prefix so they can be dropped together.
func KeyAvailability(date, hhmm string, duration int, category string) string {
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf("%s:availability:%s:%s:%d:%s",
		ns, date, strings.ReplaceAll(hhmm, ":", ""), duration, category)
}

func AvailabilityPattern() string {
	return ns + ":availability:*"
}

func KeyRateLimit(scope string) string {
	return fmt.Sprintf("%s:rl:%s", ns, scope)
}

func ChannelBookingConfirmed() string {
	return ns + ":booking.confirmed"
}
