package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/elevate-events/lounge/internal/booking"
	"github.com/elevate-events/lounge/internal/domain"
	redisx "github.com/elevate-events/lounge/internal/redis"
	"github.com/elevate-events/lounge/internal/repository"
	redisrepo "github.com/elevate-events/lounge/internal/repository/redis"
	"github.com/google/uuid"
)

type Config struct {
	SubmitLockTTL time.Duration
}

type Deps struct {
	Wizard      *booking.Wizard
	Sessions    *redisrepo.SessionStore
	Idempotency *redisrepo.IdempotencyStore
	Limiter     *redisrepo.SlidingWindowLimiter
	Cache       *redisrepo.Cache
	PubSub      *redisx.BookingsPubSub
	Creator     booking.Creator
	Ledger      Ledger
	Log         *slog.Logger
}

// Service runs wizard sessions kept in Redis. Each call loads the session,
// applies one event and stores the result.
type Service struct {
	wizard   *booking.Wizard
	sessions *redisrepo.SessionStore
	idem     *redisrepo.IdempotencyStore
	limiter  *redisrepo.SlidingWindowLimiter
	cache    *redisrepo.Cache
	pubsub   *redisx.BookingsPubSub
	creator  booking.Creator
	ledger   Ledger
	log      *slog.Logger
	cfg      Config
}

func New(d Deps, cfg Config) *Service {
	if cfg.SubmitLockTTL <= 0 {
		cfg.SubmitLockTTL = 30 * time.Second
	}

	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		wizard:   d.Wizard,
		sessions: d.Sessions,
		idem:     d.Idempotency,
		limiter:  d.Limiter,
		cache:    d.Cache,
		pubsub:   d.PubSub,
		creator:  d.Creator,
		ledger:   d.Ledger,
		log:      log.With(slog.String("component", "wizard")),
		cfg:      cfg,
	}
}

// Start opens a new session on step 1 with the default draft.
//
// Parameters:
//   - ctx: request-scoped context.
//   - lang: preferred language, "en" or "de"; anything else falls back to English.
//
// Returns:
//   - uuid.UUID: the session ID.
//   - booking.View: the initial view.
func (s *Service) Start(ctx context.Context, lang string) (uuid.UUID, booking.View, error) {
	const op = "service.wizard.Start"

	id := uuid.New()
	st := s.wizard.Start(lang)

	if err := s.sessions.Create(ctx, id, st); err != nil {
		return uuid.Nil, booking.View{}, fmt.Errorf("%s: %w", op, err)
	}

	return id, s.wizard.View(st), nil
}

// Get returns the current view of a session. A chosen time that has fallen
// into the past is dropped before the view is built.
//
// Returns:
//   - error: wizard.ErrSessionNotFound if the session is unknown or expired.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (booking.View, error) {
	const op = "service.wizard.Get"

	st, err := s.load(ctx, id)
	if err != nil {
		return booking.View{}, fmt.Errorf("%s: %w", op, err)
	}

	if !st.Confirmed() && !st.Submitting {
		before := st.Draft
		s.wizard.Reconcile(&st)
		if st.Draft != before {
			cur, err := s.apply(ctx, id, func(cur *domain.WizardState) error {
				if !cur.Confirmed() && !cur.Submitting {
					s.wizard.Reconcile(cur)
				}
				return nil
			})
			if err != nil {
				return booking.View{}, fmt.Errorf("%s: %w", op, err)
			}
			st = *cur
		}
	}

	return s.wizard.View(st), nil
}

// Update applies a partial draft edit.
//
// Returns:
//   - error: booking.ErrInvalidDate, ErrDateInPast, ErrInvalidTime,
//     ErrSlotUnavailable or ErrInvalidPaymentMethod for rejected input.
//   - error: booking.ErrSubmissionInProgress or ErrAlreadyConfirmed once the
//     wizard no longer accepts edits.
func (s *Service) Update(ctx context.Context, id uuid.UUID, p booking.Patch) (booking.View, error) {
	return s.mutate(ctx, id, "service.wizard.Update", func(st *domain.WizardState) error {
		return s.wizard.Update(st, p)
	})
}

// SelectVenue picks a lounge for the session.
//
// Returns:
//   - error: booking.ErrUnknownVenue if venueID is not in the catalog.
func (s *Service) SelectVenue(ctx context.Context, id uuid.UUID, venueID string) (booking.View, error) {
	return s.mutate(ctx, id, "service.wizard.SelectVenue", func(st *domain.WizardState) error {
		return s.wizard.SelectVenue(st, venueID)
	})
}

// Next validates the current step and advances. When the step is incomplete
// the view carrying the field errors is returned together with
// booking.ErrStepInvalid.
func (s *Service) Next(ctx context.Context, id uuid.UUID) (booking.View, error) {
	return s.mutate(ctx, id, "service.wizard.Next", s.wizard.Next)
}

func (s *Service) Previous(ctx context.Context, id uuid.UUID) (booking.View, error) {
	return s.mutate(ctx, id, "service.wizard.Previous", s.wizard.Previous)
}

// Submit sends the booking to the API. Only one submission per session runs
// at a time. With a non-empty idemKey a repeated call returns the first
// successful result.
//
// Parameters:
//   - ctx: request-scoped context.
//   - id: session ID.
//   - idemKey: optional Idempotency-Key of the request.
//   - client: rate limit bucket, usually the client IP.
//
// Returns:
//   - booking.View: the view after the attempt, also on failure.
//   - error: *wizard.RateLimitedError when the client submits too often.
//   - error: booking.ErrSubmissionInProgress if another submission holds the lock.
//   - error: booking.ErrStepInvalid if the payment step is incomplete.
//   - error: booking.ErrSubmissionFailed if the API rejected the booking or was unreachable.
func (s *Service) Submit(ctx context.Context, id uuid.UUID, idemKey, client string) (booking.View, error) {
	const op = "service.wizard.Submit"

	if s.limiter != nil && client != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, client)
		if err != nil {
			return booking.View{}, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			return booking.View{}, fmt.Errorf("%s: %w", op, &RateLimitedError{RetryAfter: retry})
		}
	}

	idemRedisKey := ""
	if idemKey != "" {
		idemRedisKey = redisx.KeyIdempotency(id.String(), idemKey)

		payload, found, err := s.idem.GetResult(ctx, idemRedisKey)
		if err != nil {
			return booking.View{}, fmt.Errorf("%s: %w", op, err)
		}
		if found {
			var v booking.View
			if err := json.Unmarshal([]byte(payload), &v); err == nil {
				return v, nil
			}
		}
	}

	lockKey := redisx.KeySubmitLock(id.String())
	acquired, err := s.idem.AcquireLock(ctx, lockKey, s.cfg.SubmitLockTTL)
	if err != nil {
		return booking.View{}, fmt.Errorf("%s: %w", op, err)
	}
	if !acquired {
		return booking.View{}, fmt.Errorf("%s: %w", op, booking.ErrSubmissionInProgress)
	}
	defer func() {
		if err := s.idem.Release(context.WithoutCancel(ctx), lockKey); err != nil {
			s.log.WarnContext(ctx, "release submit lock", slog.String("session_id", id.String()), slog.Any("err", err))
		}
	}()

	var req booking.Request
	cur, err := s.apply(ctx, id, func(cur *domain.WizardState) error {
		// Holding the lock means no attempt is running; a leftover flag comes
		// from an aborted one.
		cur.Submitting = false

		var err error
		req, err = s.wizard.BeginSubmit(cur)
		return err
	})
	if err != nil {
		if cur != nil {
			return s.wizard.View(*cur), fmt.Errorf("%s: %w", op, err)
		}
		return booking.View{}, fmt.Errorf("%s: %w", op, err)
	}
	st := *cur

	ref, createErr := s.creator.CreateBooking(ctx, req)

	sub := domain.Submission{
		ID:            uuid.New(),
		SessionID:     id,
		VenueID:       req.Draft.VenueID,
		Date:          req.Draft.Date,
		Time:          req.Draft.Time,
		Guests:        req.Draft.Guests,
		DurationHours: req.Draft.DurationHours,
		Total:         req.Total,
		PaymentMethod: req.Draft.PaymentMethod,
		CreatedAt:     s.wizard.Now(),
	}

	var onCommit func(context.Context)
	if createErr != nil {
		s.wizard.FailSubmit(&st)
		sub.Status = domain.SubmissionFailed
		sub.Error = createErr.Error()

		s.log.WarnContext(ctx, "booking rejected",
			slog.String("session_id", id.String()),
			slog.Any("err", createErr),
		)
	} else {
		s.wizard.CompleteSubmit(&st, ref)
		sub.Status = domain.SubmissionConfirmed
		sub.Reference = st.Reference

		msg := redisx.BookingConfirmed{
			Reference: st.Reference,
			VenueID:   req.Draft.VenueID,
			Date:      req.Draft.Date,
			Time:      req.Draft.Time,
		}
		onCommit = func(ctx context.Context) {
			if s.cache != nil {
				_ = s.cache.InvalidateAvailability(ctx)
			}
			if s.pubsub != nil {
				_ = s.pubsub.PublishBookingConfirmed(ctx, msg)
			}
		}

		s.log.InfoContext(ctx, "booking confirmed",
			slog.String("session_id", id.String()),
			slog.String("reference", st.Reference),
		)
	}

	// The outcome stands even if it cannot be recorded, and other instances
	// still hear about the booking.
	recorded := false
	if s.ledger != nil {
		if err := s.ledger.Record(context.WithoutCancel(ctx), sub, onCommit); err != nil {
			s.log.ErrorContext(ctx, "record submission",
				slog.String("session_id", id.String()),
				slog.Any("err", err),
			)
		} else {
			recorded = true
		}
	}
	if !recorded && onCommit != nil {
		onCommit(context.WithoutCancel(ctx))
	}

	if err := s.save(context.WithoutCancel(ctx), id, st); err != nil {
		return booking.View{}, fmt.Errorf("%s: %w", op, err)
	}

	view := s.wizard.View(st)

	if createErr != nil {
		return view, fmt.Errorf("%s: %w: %w", op, booking.ErrSubmissionFailed, createErr)
	}

	if idemRedisKey != "" {
		if b, err := json.Marshal(view); err == nil {
			_ = s.idem.SaveResult(ctx, idemRedisKey, string(b))
		}
	}

	return view, nil
}

// Submissions lists the recorded attempts of a session, newest first.
func (s *Service) Submissions(ctx context.Context, id uuid.UUID) ([]domain.Submission, error) {
	const op = "service.wizard.Submissions"

	if _, err := s.load(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.ledger == nil {
		return nil, nil
	}

	subs, err := s.ledger.ListBySession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return subs, nil
}

func (s *Service) mutate(
	ctx context.Context,
	id uuid.UUID,
	op string,
	fn func(st *domain.WizardState) error,
) (booking.View, error) {
	locked, err := s.idem.IsLocked(ctx, redisx.KeySubmitLock(id.String()))
	if err != nil {
		return booking.View{}, fmt.Errorf("%s: %w", op, err)
	}
	if locked {
		return booking.View{}, fmt.Errorf("%s: %w", op, booking.ErrSubmissionInProgress)
	}

	st, err := s.apply(ctx, id, fn)
	if err != nil {
		if st != nil {
			return s.wizard.View(*st), fmt.Errorf("%s: %w", op, err)
		}
		return booking.View{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.wizard.View(*st), nil
}

// apply runs fn on the stored state and saves the result unless the session
// was written concurrently, in which case fn runs again on the fresh state.
// A failed step check is saved as well: the state now carries its errors.
// The returned state is nil when it could not be loaded.
func (s *Service) apply(
	ctx context.Context,
	id uuid.UUID,
	fn func(st *domain.WizardState) error,
) (*domain.WizardState, error) {
	var (
		st    domain.WizardState
		fnErr error
	)

	err := s.sessions.Update(ctx, id, func(cur *domain.WizardState) error {
		fnErr = fn(cur)
		st = *cur
		if fnErr != nil && !errors.Is(fnErr, booking.ErrStepInvalid) {
			return fnErr
		}
		return nil
	})
	switch {
	case err == nil:
		return &st, fnErr
	case fnErr != nil && errors.Is(err, fnErr):
		return &st, fnErr
	default:
		return nil, sessionErr(err)
	}
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (domain.WizardState, error) {
	st, err := s.sessions.Get(ctx, id)
	if err != nil {
		return domain.WizardState{}, sessionErr(err)
	}
	return st, nil
}

func (s *Service) save(ctx context.Context, id uuid.UUID, st domain.WizardState) error {
	if err := s.sessions.Save(ctx, id, st); err != nil {
		return sessionErr(err)
	}
	return nil
}

func sessionErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}
