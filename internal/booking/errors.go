package booking

import "errors"

var (
	ErrUnknownVenue         = errors.New("unknown venue")
	ErrInvalidDate          = errors.New("date must be YYYY-MM-DD")
	ErrDateInPast           = errors.New("date is in the past")
	ErrInvalidTime          = errors.New("time must be HH:MM")
	ErrSlotUnavailable      = errors.New("time slot is not available for the selected date")
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
	ErrStepInvalid          = errors.New("current step has validation errors")
	ErrLastStep             = errors.New("last step reached, submit instead")
	ErrNotOnPaymentStep     = errors.New("submission is only possible from the payment step")
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrAlreadyConfirmed     = errors.New("reservation already confirmed")
	ErrSubmissionFailed     = errors.New("submission failed")
)
