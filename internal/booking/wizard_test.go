package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/elevate-events/lounge/internal/catalog"
	"github.com/elevate-events/lounge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreator struct {
	ref   string
	err   error
	calls int
	last  Request
}

func (f *fakeCreator) CreateBooking(_ context.Context, req Request) (string, error) {
	f.calls++
	f.last = req
	return f.ref, f.err
}

func ptr[T any](v T) *T { return &v }

func newTestWizard(now *time.Time) *Wizard {
	return New(
		catalog.Default(),
		WithClock(func() time.Time { return *now }),
		WithLocation(time.UTC),
	)
}

func completeDraft(t *testing.T, w *Wizard, s *domain.WizardState) {
	t.Helper()

	tomorrow := w.Now().AddDate(0, 0, 1).Format(DateLayout)
	require.NoError(t, w.Update(s, Patch{
		Date:          ptr(tomorrow),
		Time:          ptr("20:00"),
		Guests:        ptr(4),
		DurationHours: ptr(2),
	}))
	require.NoError(t, w.Next(s))

	require.NoError(t, w.SelectVenue(s, "gold"))
	require.NoError(t, w.Next(s))

	require.NoError(t, w.Update(s, Patch{
		FirstName: ptr("Ada"),
		LastName:  ptr("Lovelace"),
		Email:     ptr("ada@example.com"),
		Phone:     ptr("12345"),
	}))
	require.NoError(t, w.Next(s))

	require.NoError(t, w.Update(s, Patch{PaymentMethod: ptr(domain.PaymentCredit)}))
	require.Equal(t, LastStep, s.Step)
}

func TestStart(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 12, 0, 0, time.UTC)
	w := newTestWizard(&now)

	s := w.Start("de-DE")

	assert.Equal(t, FirstStep, s.Step)
	assert.Equal(t, DefaultGuests, s.Draft.Guests)
	assert.Equal(t, DefaultDurationHours, s.Draft.DurationHours)
	assert.Empty(t, s.Draft.Date)
	assert.Empty(t, s.Errors)
	assert.Equal(t, "de", s.Lang)
	assert.False(t, s.Confirmed())
}

func TestWizardEndToEnd(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 12, 0, 0, time.UTC)
	w := newTestWizard(&now)
	s := w.Start("en")

	completeDraft(t, w, &s)

	creator := &fakeCreator{ref: "EV-BACKEND1"}
	require.NoError(t, w.Submit(context.Background(), &s, creator))

	assert.Equal(t, 1, creator.calls)
	assert.Equal(t, "EV-BACKEND1", s.Reference)
	assert.True(t, s.Confirmed())
	assert.False(t, s.Submitting)
	assert.Empty(t, s.Errors)

	assert.EqualValues(t, 240, creator.last.Total)
	assert.Equal(t, "gold", creator.last.Venue.ID)
	assert.Equal(t, "Ada", creator.last.Draft.FirstName)
	assert.Equal(t, "2026-10-19 22:00", creator.last.Schedule.End.Format(DateLayout+" "+TimeLayout))

	assert.True(t, w.View(s).Confirmed)
	assert.ErrorIs(t, w.Update(&s, Patch{FirstName: ptr("Grace")}), ErrAlreadyConfirmed)
	assert.ErrorIs(t, w.Submit(context.Background(), &s, creator), ErrAlreadyConfirmed)
	assert.Equal(t, 1, creator.calls)
}

func TestSubmitGeneratesReference(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 12, 0, 0, time.UTC)
	w := newTestWizard(&now)
	s := w.Start("en")
	completeDraft(t, w, &s)

	require.NoError(t, w.Submit(context.Background(), &s, &fakeCreator{}))

	assert.Equal(t, NewReference(now), s.Reference)
	assert.True(t, strings.HasPrefix(s.Reference, "EV-"))
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 12, 0, 0, time.UTC)
	w := newTestWizard(&now)
	s := w.Start("en")
	completeDraft(t, w, &s)
	before := s.Draft

	creator := &fakeCreator{err: errors.New("backend rejected booking")}
	err := w.Submit(context.Background(), &s, creator)

	require.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Equal(t, before, s.Draft)
	assert.False(t, s.Submitting)
	assert.False(t, s.Confirmed())
	assert.Equal(t, LastStep, s.Step)
	require.Len(t, s.Errors, 1)
	assert.NotEmpty(t, s.Errors[FieldSubmit])

	creator.err = nil
	creator.ref = "EV-RETRY"
	require.NoError(t, w.Submit(context.Background(), &s, creator))
	assert.Equal(t, "EV-RETRY", s.Reference)
}

func TestSubmitWhileSubmitting(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 12, 0, 0, time.UTC)
	w := newTestWizard(&now)
	s := w.Start("en")
	completeDraft(t, w, &s)

	_, err := w.BeginSubmit(&s)
	require.NoError(t, err)
	require.True(t, s.Submitting)

	_, err = w.BeginSubmit(&s)
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	assert.ErrorIs(t, w.Update(&s, Patch{Phone: ptr("999")}), ErrSubmissionInProgress)
	assert.ErrorIs(t, w.Previous(&s), ErrSubmissionInProgress)

	w.FailSubmit(&s)
	assert.False(t, s.Submitting)
	assert.Equal(t, "12345", s.Draft.Phone)
}

func TestSubmitRequiresPaymentStep(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 12, 0, 0, time.UTC)
	w := newTestWizard(&now)
	s := w.Start("en")

	err := w.Submit(context.Background(), &s, &fakeCreator{})
	assert.ErrorIs(t, err, ErrNotOnPaymentStep)
}

func TestSubmitRevalidatesPayment(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 12, 0, 0, time.UTC)
	w := newTestWizard(&now)
	s := w.Start("en")
	completeDraft(t, w, &s)
	require.NoError(t, w.Update(&s, Patch{PaymentMethod: ptr(domain.PaymentMethod(""))}))

	creator := &fakeCreator{}
	err := w.Submit(context.Background(), &s, creator)

	assert.ErrorIs(t, err, ErrStepInvalid)
	assert.Contains(t, s.Errors, FieldPaymentMethod)
	assert.False(t, s.Submitting)
	assert.Zero(t, creator.calls)
}

func TestSubmitAfterChosenSlotPassed(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 12, 0, 0, time.UTC)
	w := newTestWizard(&now)
	s := w.Start("en")
	completeDraft(t, w, &s)

	s.Step = FirstStep
	require.NoError(t, w.Update(&s, Patch{Date: ptr("2026-10-18"), Time: ptr("14:30")}))
	s.Step = LastStep

	now = now.Add(30 * time.Minute)
	creator := &fakeCreator{}
	err := w.Submit(context.Background(), &s, creator)

	require.ErrorIs(t, err, ErrStepInvalid)
	assert.NotErrorIs(t, err, ErrSubmissionFailed)
	assert.Zero(t, creator.calls)
	assert.False(t, s.Submitting)
	assert.Equal(t, FirstStep, s.Step)
	assert.Empty(t, s.Draft.Time)
	assert.Equal(t, []string{FieldTime}, keys(s.Errors))
	assert.Equal(t, "gold", s.Draft.VenueID)

	require.NoError(t, w.Update(&s, Patch{Time: ptr("15:00")}))
	require.NoError(t, w.Next(&s))
	require.NoError(t, w.Next(&s))
	require.NoError(t, w.Next(&s))
	require.NoError(t, w.Submit(context.Background(), &s, creator))
	assert.Equal(t, 1, creator.calls)
	assert.Equal(t, "15:00", creator.last.Draft.Time)
}

func TestSubmitAfterDateTurnedPast(t *testing.T) {
	now := time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)
	w := newTestWizard(&now)
	s := w.Start("en")
	completeDraft(t, w, &s)

	now = now.AddDate(0, 0, 2)
	creator := &fakeCreator{}
	err := w.Submit(context.Background(), &s, creator)

	require.ErrorIs(t, err, ErrStepInvalid)
	assert.Zero(t, creator.calls)
	assert.Equal(t, FirstStep, s.Step)
	assert.Contains(t, s.Errors, FieldDate)
}

func TestNextBlockedByErrors(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 12, 0, 0, time.UTC)
	w := newTestWizard(&now)
	s := w.Start("en")

	require.NoError(t, w.Update(&s, Patch{Date: ptr("2026-10-20")}))
	err := w.Next(&s)

	assert.ErrorIs(t, err, ErrStepInvalid)
	assert.Equal(t, 1, s.Step)
	assert.Equal(t, []string{FieldTime}, keys(s.Errors))

	require.NoError(t, w.Update(&s, Patch{Time: ptr("09:30")}))
	require.NoError(t, w.Next(&s))
	assert.Equal(t, 2, s.Step)
	assert.Empty(t, s.Errors)
}

func TestErrorsReplacedPerStep(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 12, 0, 0, time.UTC)
	w := newTestWizard(&now)
	s := w.Start("en")
	require.NoError(t, w.Update(&s, Patch{Date: ptr("2026-10-20"), Time: ptr("10:00")}))
	require.NoError(t, w.Next(&s))

	assert.ErrorIs(t, w.Next(&s), ErrStepInvalid)
	assert.Equal(t, []string{FieldVenue}, keys(s.Errors))
}

func TestPreviousNeverValidates(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 12, 0, 0, time.UTC)
	w := newTestWizard(&now)
	s := w.Start("en")
	s.Step = 3

	require.NoError(t, w.Previous(&s))
	assert.Equal(t, 2, s.Step)
	require.NoError(t, w.Previous(&s))
	require.NoError(t, w.Previous(&s))
	assert.Equal(t, FirstStep, s.Step)
	assert.Empty(t, s.Errors)
}

func TestNextOnLastStep(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 12, 0, 0, time.UTC)
	w := newTestWizard(&now)
	s := w.Start("en")
	completeDraft(t, w, &s)

	assert.ErrorIs(t, w.Next(&s), ErrLastStep)
	assert.Equal(t, LastStep, s.Step)
}

func TestSelectVenueClampsGuests(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 12, 0, 0, time.UTC)
	w := newTestWizard(&now)
	s := w.Start("en")
	require.NoError(t, w.Update(&s, Patch{Guests: ptr(10)}))

	require.NoError(t, w.SelectVenue(&s, "gold"))
	assert.Equal(t, 6, s.Draft.Guests)

	require.NoError(t, w.SelectVenue(&s, "vip"))
	assert.Equal(t, 6, s.Draft.Guests, "switching to a larger lounge does not restore guests")

	require.NoError(t, w.Update(&s, Patch{Guests: ptr(40)}))
	assert.Equal(t, 12, s.Draft.Guests)

	assert.ErrorIs(t, w.SelectVenue(&s, "bronze"), ErrUnknownVenue)
	assert.Equal(t, "vip", s.Draft.VenueID)
}

func TestDateChangeClearsTime(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 12, 0, 0, time.UTC)
	w := newTestWizard(&now)
	s := w.Start("en")

	require.NoError(t, w.Update(&s, Patch{Date: ptr("2026-10-19"), Time: ptr("09:00")}))
	assert.Equal(t, "09:00", s.Draft.Time)

	require.NoError(t, w.Update(&s, Patch{Date: ptr("2026-10-18")}))
	assert.Equal(t, "2026-10-18", s.Draft.Date)
	assert.Empty(t, s.Draft.Time)
}

func TestClockAdvanceClearsTime(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 12, 0, 0, time.UTC)
	w := newTestWizard(&now)
	s := w.Start("en")
	require.NoError(t, w.Update(&s, Patch{Date: ptr("2026-10-18"), Time: ptr("14:30")}))

	now = time.Date(2026, 10, 18, 14, 40, 0, 0, time.UTC)
	w.Reconcile(&s)

	assert.Empty(t, s.Draft.Time)
}

func TestUpdateRejectsBadInput(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 12, 0, 0, time.UTC)
	w := newTestWizard(&now)

	tests := []struct {
		name  string
		patch Patch
		want  error
	}{
		{name: "malformed date", patch: Patch{Date: ptr("18.10.2026")}, want: ErrInvalidDate},
		{name: "past date", patch: Patch{Date: ptr("2026-10-17")}, want: ErrDateInPast},
		{name: "malformed time", patch: Patch{Date: ptr("2026-10-19"), Time: ptr("8pm")}, want: ErrInvalidTime},
		{name: "passed slot today", patch: Patch{Date: ptr("2026-10-18"), Time: ptr("13:00")}, want: ErrSlotUnavailable},
		{name: "off grid slot", patch: Patch{Date: ptr("2026-10-19"), Time: ptr("13:10")}, want: ErrSlotUnavailable},
		{name: "payment method", patch: Patch{PaymentMethod: ptr(domain.PaymentMethod("cash"))}, want: ErrInvalidPaymentMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := w.Start("en")
			before := s

			err := w.Update(&s, tt.patch)

			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, s)
		})
	}
}

func TestUpdateClampsRanges(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 12, 0, 0, time.UTC)
	w := newTestWizard(&now)
	s := w.Start("en")

	require.NoError(t, w.Update(&s, Patch{Guests: ptr(0), DurationHours: ptr(99)}))
	assert.Equal(t, MinGuests, s.Draft.Guests)
	assert.Equal(t, MaxDurationHours, s.Draft.DurationHours)

	require.NoError(t, w.Update(&s, Patch{Guests: ptr(151), DurationHours: ptr(-3)}))
	assert.Equal(t, MaxGuests, s.Draft.Guests)
	assert.Equal(t, MinDurationHours, s.Draft.DurationHours)
}

func TestView(t *testing.T) {
	now := time.Date(2026, 10, 18, 23, 45, 0, 0, time.UTC)
	w := newTestWizard(&now)
	s := w.Start("de")

	require.NoError(t, w.Update(&s, Patch{Date: ptr("2026-10-18"), DurationHours: ptr(3)}))
	require.NoError(t, w.SelectVenue(&s, "platinum"))

	v := w.View(s)
	assert.Empty(t, v.Slots)
	assert.True(t, v.NoSlotsLeft)
	assert.NotEmpty(t, v.NoSlotsText)
	assert.EqualValues(t, 450, v.Total)
	assert.Equal(t, "450 €", v.TotalDisplay)
	assert.Nil(t, v.Schedule)
	assert.NotNil(t, v.Errors)
}

func TestNewReference(t *testing.T) {
	ref := NewReference(time.UnixMilli(1700000000000))
	assert.Equal(t, "EV-LOYW3V28", ref)
}

func keys(m domain.ValidationErrors) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
