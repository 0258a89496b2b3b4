package service

import (
	"log/slog"

	"github.com/elevate-events/lounge/internal/backend"
	"github.com/elevate-events/lounge/internal/booking"
	redisx "github.com/elevate-events/lounge/internal/redis"
	postgresrepo "github.com/elevate-events/lounge/internal/repository/postgres"
	redisrepo "github.com/elevate-events/lounge/internal/repository/redis"
	"github.com/elevate-events/lounge/internal/service/content"
	"github.com/elevate-events/lounge/internal/service/wizard"
)

type Services struct {
	Wizard  *wizard.Service
	Content *content.Service
}

type Config struct {
	Wizard  wizard.Config
	Content content.Config
}

type Deps struct {
	Wizard      *booking.Wizard
	Store       *postgresrepo.Store
	Sessions    *redisrepo.SessionStore
	Idempotency *redisrepo.IdempotencyStore
	Cache       *redisrepo.Cache
	PubSub      *redisx.BookingsPubSub
	Limiter     *redisrepo.SlidingWindowLimiter
	Backend     *backend.Client
	Log         *slog.Logger
}

func NewServices(d Deps, cfg Config) *Services {
	return &Services{
		Wizard: wizard.New(wizard.Deps{
			Wizard:      d.Wizard,
			Sessions:    d.Sessions,
			Idempotency: d.Idempotency,
			Limiter:     d.Limiter,
			Cache:       d.Cache,
			PubSub:      d.PubSub,
			Creator:     d.Backend,
			Ledger:      wizard.NewPostgresLedger(d.Store),
			Log:         d.Log,
		}, cfg.Wizard),
		Content: content.New(d.Backend, d.Store.Submissions(), d.Cache, cfg.Content),
	}
}
