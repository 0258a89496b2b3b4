package booking

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elevate-events/lounge/internal/domain"
	"github.com/elevate-events/lounge/internal/i18n"
)

const (
	FirstStep = 1
	LastStep  = 4

	DefaultGuests        = 2
	DefaultDurationHours = 2
)

// Patch carries the draft fields a user edited. Nil fields are left alone.
type Patch struct {
	Date            *string
	Time            *string
	Guests          *int
	DurationHours   *int
	SpecialRequests *string
	FirstName       *string
	LastName        *string
	Email           *string
	Phone           *string
	PaymentMethod   *domain.PaymentMethod
}

// Request is what gets sent to the booking backend on submission.
type Request struct {
	Draft    domain.BookingDraft
	Venue    domain.Venue
	Total    int64
	Schedule Schedule
}

// Creator creates a booking and returns its reference. An empty reference is
// allowed; the wizard then generates one.
type Creator interface {
	CreateBooking(ctx context.Context, req Request) (string, error)
}

// View is the state plus everything derived from it.
type View struct {
	domain.WizardState
	Confirmed    bool      `json:"confirmed"`
	Slots        []string  `json:"slots"`
	NoSlotsLeft  bool      `json:"no_slots"`
	NoSlotsText  string    `json:"no_slots_message,omitempty"`
	Total        int64     `json:"total"`
	TotalDisplay string    `json:"total_display"`
	Schedule     *Schedule `json:"schedule,omitempty"`
}

// Wizard applies user events to a WizardState. It holds no per-user data and
// is safe for concurrent use.
type Wizard struct {
	venues   VenueLookup
	now      func() time.Time
	loc      *time.Location
	interval time.Duration
}

type Option func(*Wizard)

func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(w *Wizard) { w.loc = loc }
}

func WithSlotInterval(d time.Duration) Option {
	return func(w *Wizard) { w.interval = d }
}

func New(venues VenueLookup, opts ...Option) *Wizard {
	w := &Wizard{
		venues:   venues,
		now:      time.Now,
		loc:      time.Local,
		interval: SlotInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.loc == nil {
		w.loc = time.Local
	}
	if w.interval <= 0 {
		w.interval = SlotInterval
	}
	return w
}

// Now returns the current time in the venue's location.
func (w *Wizard) Now() time.Time {
	return w.now().In(w.loc)
}

func (w *Wizard) Location() *time.Location {
	return w.loc
}

func (w *Wizard) SlotInterval() time.Duration {
	return w.interval
}

func (w *Wizard) Start(lang string) domain.WizardState {
	return domain.WizardState{
		Step: FirstStep,
		Draft: domain.BookingDraft{
			Guests:        DefaultGuests,
			DurationHours: DefaultDurationHours,
		},
		Errors: domain.ValidationErrors{},
		Lang:   i18n.For(lang).Lang(),
	}
}

// Reconcile re-establishes the draft invariants against the current clock.
func (w *Wizard) Reconcile(s *domain.WizardState) {
	s.Draft = Reconcile(s.Draft, w.venues, w.Now(), w.interval)
}

// Update applies p atomically: on error s is left untouched.
func (w *Wizard) Update(s *domain.WizardState, p Patch) error {
	if err := w.interactive(s); err != nil {
		return err
	}

	now := w.Now()
	d := s.Draft

	if p.Date != nil {
		date := strings.TrimSpace(*p.Date)
		if date != "" {
			if _, err := time.ParseInLocation(DateLayout, date, w.loc); err != nil {
				return fmt.Errorf("%w: %q", ErrInvalidDate, date)
			}
			if date < now.Format(DateLayout) {
				return ErrDateInPast
			}
		}
		d.Date = date
	}
	if p.Time != nil {
		hhmm := strings.TrimSpace(*p.Time)
		if hhmm != "" {
			if _, err := time.Parse(TimeLayout, hhmm); err != nil {
				return fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
			}
		}
		d.Time = hhmm
	}
	if p.Guests != nil {
		d.Guests = clamp(*p.Guests, MinGuests, MaxGuests)
	}
	if p.DurationHours != nil {
		d.DurationHours = clamp(*p.DurationHours, MinDurationHours, MaxDurationHours)
	}
	if p.SpecialRequests != nil {
		d.SpecialRequests = *p.SpecialRequests
	}
	if p.FirstName != nil {
		d.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		d.LastName = *p.LastName
	}
	if p.Email != nil {
		d.Email = *p.Email
	}
	if p.Phone != nil {
		d.Phone = *p.Phone
	}
	if p.PaymentMethod != nil {
		pm := *p.PaymentMethod
		if pm != "" && !pm.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, pm)
		}
		d.PaymentMethod = pm
	}

	// A freshly chosen time must be selectable; a time kept from before is
	// only cleared by reconciliation.
	if p.Time != nil && d.Time != "" && !slotAvailable(d.Date, d.Time, now, w.interval) {
		return ErrSlotUnavailable
	}

	s.Draft = Reconcile(d, w.venues, now, w.interval)
	return nil
}

// SelectVenue picks a lounge and clamps the guest count to its capacity at once.
func (w *Wizard) SelectVenue(s *domain.WizardState, id string) error {
	if err := w.interactive(s); err != nil {
		return err
	}

	v, ok := w.venues.Get(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownVenue, id)
	}

	s.Draft.VenueID = v.ID
	if s.Draft.Guests > v.Capacity {
		s.Draft.Guests = v.Capacity
	}
	w.Reconcile(s)
	return nil
}

// Validate recomputes the errors of the current step, replacing earlier ones.
func (w *Wizard) Validate(s *domain.WizardState) bool {
	s.Errors = ValidateStep(s.Step, s.Draft, i18n.For(s.Lang))
	return s.Errors.Empty()
}

// Next validates the current step and advances when it is complete. Step 4
// has no next step; submission takes its place.
func (w *Wizard) Next(s *domain.WizardState) error {
	if err := w.interactive(s); err != nil {
		return err
	}
	if s.Step >= LastStep {
		return ErrLastStep
	}

	w.Reconcile(s)
	if !w.Validate(s) {
		return ErrStepInvalid
	}
	s.Step++
	return nil
}

// Previous moves back one step without validating.
func (w *Wizard) Previous(s *domain.WizardState) error {
	if err := w.interactive(s); err != nil {
		return err
	}
	if s.Step > FirstStep {
		s.Step--
	}
	s.Errors = domain.ValidationErrors{}
	return nil
}

// BeginSubmit re-validates the payment step and marks the state as submitting.
func (w *Wizard) BeginSubmit(s *domain.WizardState) (Request, error) {
	if err := w.interactive(s); err != nil {
		return Request{}, err
	}
	if s.Step != LastStep {
		return Request{}, ErrNotOnPaymentStep
	}

	w.Reconcile(s)
	if step, errs := w.firstIncompleteStep(s); step != 0 {
		s.Step = step
		s.Errors = errs
		return Request{}, ErrStepInvalid
	}
	if !w.Validate(s) {
		return Request{}, ErrStepInvalid
	}

	req := Request{
		Draft: s.Draft,
		Total: Total(w.venues, s.Draft),
	}
	req.Venue, _ = w.venues.Get(s.Draft.VenueID)
	req.Schedule, _ = ScheduleFor(s.Draft, w.loc)

	s.Submitting = true
	return req, nil
}

// CompleteSubmit switches the state to the confirmation view.
func (w *Wizard) CompleteSubmit(s *domain.WizardState, reference string) {
	if reference == "" {
		reference = NewReference(w.now())
	}
	s.Submitting = false
	s.Reference = reference
	s.Errors = domain.ValidationErrors{}
}

// FailSubmit returns the state to interactive with a single banner error.
func (w *Wizard) FailSubmit(s *domain.WizardState) {
	s.Submitting = false
	s.Errors = domain.ValidationErrors{
		FieldSubmit: i18n.For(s.Lang).T(i18n.KeySubmit),
	}
}

// Submit runs the whole submission against c. Backend rejections and
// transport failures end the same way: the draft is kept and ErrSubmissionFailed
// is returned.
func (w *Wizard) Submit(ctx context.Context, s *domain.WizardState, c Creator) error {
	req, err := w.BeginSubmit(s)
	if err != nil {
		return err
	}

	ref, err := c.CreateBooking(ctx, req)
	if err != nil {
		w.FailSubmit(s)
		return fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	w.CompleteSubmit(s, ref)
	return nil
}

// View derives slots, price and schedule for s.
func (w *Wizard) View(s domain.WizardState) View {
	now := w.Now()
	msgs := i18n.For(s.Lang)
	total := Total(w.venues, s.Draft)

	v := View{
		WizardState:  s,
		Confirmed:    s.Confirmed(),
		Slots:        Slots(s.Draft.Date, now, w.interval),
		NoSlotsLeft:  NoSlotsLeft(s.Draft.Date, now, w.interval),
		Total:        total,
		TotalDisplay: msgs.FormatEUR(total),
	}
	if v.NoSlotsLeft {
		v.NoSlotsText = msgs.T(i18n.KeyNoSlots)
	}
	if sch, ok := ScheduleFor(s.Draft, w.loc); ok {
		v.Schedule = &sch
	}
	if v.Errors == nil {
		v.Errors = domain.ValidationErrors{}
	}
	return v
}

// firstIncompleteStep re-checks the steps before payment. The clock may have
// cleared a same-day time or turned the date into a past one since they were
// passed.
func (w *Wizard) firstIncompleteStep(s *domain.WizardState) (int, domain.ValidationErrors) {
	msgs := i18n.For(s.Lang)
	today := w.Now().Format(DateLayout)

	for step := FirstStep; step < LastStep; step++ {
		errs := ValidateStep(step, s.Draft, msgs)
		if step == FirstStep && s.Draft.Date != "" && s.Draft.Date < today {
			errs[FieldDate] = msgs.T(i18n.KeyDate)
		}
		if !errs.Empty() {
			return step, errs
		}
	}
	return 0, nil
}

func (w *Wizard) interactive(s *domain.WizardState) error {
	if s.Confirmed() {
		return ErrAlreadyConfirmed
	}
	if s.Submitting {
		return ErrSubmissionInProgress
	}
	return nil
}

// NewReference builds a human readable confirmation reference from t.
func NewReference(t time.Time) string {
	return "EV-" + strings.ToUpper(strconv.FormatInt(t.UnixMilli(), 36))
}
