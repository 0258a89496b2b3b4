package content

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/elevate-events/lounge/internal/backend"
	"github.com/elevate-events/lounge/internal/booking"
	"github.com/elevate-events/lounge/internal/catalog"
	"github.com/elevate-events/lounge/internal/domain"
	redisx "github.com/elevate-events/lounge/internal/redis"
	"github.com/elevate-events/lounge/internal/repository"
	redisrepo "github.com/elevate-events/lounge/internal/repository/redis"
)

// Backend is the part of the booking API this service reads.
type Backend interface {
	ListEvents(ctx context.Context, category string) ([]domain.Event, error)
	ListMembershipTiers(ctx context.Context) ([]backend.MembershipTier, error)
	CheckLoungeAvailability(ctx context.Context, date, hhmm string, duration int, category string) ([]backend.LoungeAvailability, error)
	GetBooking(ctx context.Context, reference string) (*backend.Booking, error)
}

// References resolves references that only exist in the local ledger.
type References interface {
	GetByReference(ctx context.Context, reference string) (*domain.Submission, error)
}

type Config struct {
	EventsTTL       time.Duration
	TiersTTL        time.Duration
	AvailabilityTTL time.Duration
}

// BookingSummary is a booking as shown on the confirmation page.
type BookingSummary struct {
	Reference     string  `json:"reference"`
	VenueID       string  `json:"lounge_id"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	DurationHours int     `json:"duration_hours"`
	Guests        int     `json:"guests"`
	Status        string  `json:"status"`
	Total         float64 `json:"total"`
	Source        string  `json:"source"`
}

type Service struct {
	api   Backend
	refs  References
	cache *redisrepo.Cache
	cfg   Config
}

func New(api Backend, refs References, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.EventsTTL <= 0 {
		cfg.EventsTTL = 60 * time.Second
	}

	if cfg.TiersTTL <= 0 {
		cfg.TiersTTL = 10 * time.Minute
	}

	if cfg.AvailabilityTTL <= 0 {
		cfg.AvailabilityTTL = 15 * time.Second
	}

	return &Service{
		api:   api,
		refs:  refs,
		cache: cache,
		cfg:   cfg,
	}
}

// Events lists events of category; "" and "all" mean every category.
func (s *Service) Events(ctx context.Context, category string) ([]domain.Event, error) {
	const op = "service.content.Events"

	if category == "all" {
		category = ""
	}

	events, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisx.KeyEvents(category),
		s.cfg.EventsTTL,
		func(ctx context.Context) ([]domain.Event, error) {
			ev, err := s.api.ListEvents(ctx, category)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
			}
			if ev == nil {
				ev = []domain.Event{}
			}
			return ev, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

// MembershipTiers lists the tiers with their features parsed and the
// annual savings filled in.
func (s *Service) MembershipTiers(ctx context.Context) ([]domain.MembershipTier, error) {
	const op = "service.content.MembershipTiers"

	tiers, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisx.KeyMembershipTiers(),
		s.cfg.TiersTTL,
		func(ctx context.Context) ([]domain.MembershipTier, error) {
			raw, err := s.api.ListMembershipTiers(ctx)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
			}

			out := make([]domain.MembershipTier, 0, len(raw))
			for _, t := range raw {
				out = append(out, toTier(t))
			}
			return out, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tiers, nil
}

// LoungeAvailability asks the API which lounges are free for the given
// window. Results are cached briefly and dropped when a booking is confirmed.
//
// Returns:
//   - error: content.ErrInvalidQuery if date or time are malformed.
func (s *Service) LoungeAvailability(
	ctx context.Context,
	date, hhmm string,
	duration int,
	category string,
) ([]domain.LoungeAvailability, error) {
	const op = "service.content.LoungeAvailability"

	if _, err := time.Parse(booking.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%s: %w: date %q", op, ErrInvalidQuery, date)
	}
	if _, err := time.Parse(booking.TimeLayout, hhmm); err != nil {
		return nil, fmt.Errorf("%s: %w: time %q", op, ErrInvalidQuery, hhmm)
	}
	if duration <= 0 {
		duration = booking.DefaultDurationHours
	}
	duration = min(duration, booking.MaxDurationHours)
	if category == "all" {
		category = ""
	}

	out, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisx.KeyAvailability(date, hhmm, duration, category),
		s.cfg.AvailabilityTTL,
		func(ctx context.Context) ([]domain.LoungeAvailability, error) {
			raw, err := s.api.CheckLoungeAvailability(ctx, date, hhmm, duration, category)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
			}

			res := make([]domain.LoungeAvailability, 0, len(raw))
			for _, a := range raw {
				res = append(res, domain.LoungeAvailability{VenueID: a.LoungeID, Available: a.Available})
			}
			return res, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Booking looks a reference up at the API first and falls back to the local
// ledger, which also knows references generated by this service.
//
// Returns:
//   - error: content.ErrBookingNotFound if neither knows the reference.
func (s *Service) Booking(ctx context.Context, reference string) (*BookingSummary, error) {
	const op = "service.content.Booking"

	b, err := s.api.GetBooking(ctx, reference)
	if err == nil {
		return &BookingSummary{
			Reference:     b.BookingReference,
			VenueID:       b.LoungeID,
			Date:          b.BookingDate,
			Time:          b.StartTime,
			DurationHours: b.DurationHours,
			Guests:        b.Guests,
			Status:        b.Status,
			Total:         b.TotalAmount,
			Source:        "api",
		}, nil
	}
	if !backend.IsNotFound(err) {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
	}

	if s.refs == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
	}

	sub, err := s.refs.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &BookingSummary{
		Reference:     sub.Reference,
		VenueID:       sub.VenueID,
		Date:          sub.Date,
		Time:          sub.Time,
		DurationHours: sub.DurationHours,
		Guests:        sub.Guests,
		Status:        string(sub.Status),
		Total:         float64(sub.Total),
		Source:        "ledger",
	}, nil
}

// InvalidateAvailability drops all cached availability answers.
func (s *Service) InvalidateAvailability(ctx context.Context) error {
	return s.cache.InvalidateAvailability(ctx)
}

func toTier(t backend.MembershipTier) domain.MembershipTier {
	return domain.MembershipTier{
		ID:                    t.ID,
		Name:                  t.Name,
		Slug:                  t.Slug,
		Description:           t.Description,
		MonthlyPrice:          t.MonthlyPrice,
		AnnualPrice:           t.AnnualPrice,
		DiscountPercentage:    t.DiscountPercentage,
		ComplimentaryDrinks:   t.ComplimentaryDrinks,
		PriorityBooking:       t.PriorityBooking,
		PrivateLoungeAccess:   t.PrivateLoungeAccess,
		TransportationService: t.TransportationService,
		Features:              catalog.ParseFeatures(t.FeaturesText()),
		AnnualSavings:         AnnualSavings(t.MonthlyPrice, t.AnnualPrice),
	}
}

// AnnualSavings is what paying yearly saves over twelve monthly payments,
// rounded to cents and never negative.
func AnnualSavings(monthly, annual float64) float64 {
	v := monthly*12 - annual
	if v <= 0 {
		return 0
	}
	return math.Round(v*100) / 100
}
