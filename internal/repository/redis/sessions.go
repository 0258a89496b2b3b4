package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/elevate-events/lounge/internal/domain"
	redisx "github.com/elevate-events/lounge/internal/redis"
	"github.com/elevate-events/lounge/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps wizard states as JSON. Every read or write pushes the
// expiry forward by ttl.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

// Create stores st under id.
//
// Returns:
//   - error: repository.ErrConflict if id is already taken.
func (s *SessionStore) Create(ctx context.Context, id uuid.UUID, st domain.WizardState) error {
	const op = "redisrepo.SessionStore.Create"

	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ok, err := s.rdb.SetNX(ctx, redisx.KeyWizardSession(id.String()), b, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrConflict)
	}

	return nil
}

// Get loads the state of id.
//
// Returns:
//   - error: repository.ErrNotFound if the session never existed or expired.
func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (domain.WizardState, error) {
	const op = "redisrepo.SessionStore.Get"

	raw, err := s.rdb.GetEx(ctx, redisx.KeyWizardSession(id.String()), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.WizardState{}, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	if err != nil {
		return domain.WizardState{}, fmt.Errorf("%s: %w", op, err)
	}

	var st domain.WizardState
	if err := json.Unmarshal(raw, &st); err != nil {
		return domain.WizardState{}, fmt.Errorf("%s: %w", op, err)
	}
	if st.Errors == nil {
		st.Errors = domain.ValidationErrors{}
	}

	return st, nil
}

// Save overwrites the state of an existing session.
//
// Returns:
//   - error: repository.ErrNotFound if the session expired in the meantime.
func (s *SessionStore) Save(ctx context.Context, id uuid.UUID, st domain.WizardState) error {
	const op = "redisrepo.SessionStore.Save"

	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ok, err := s.rdb.SetXX(ctx, redisx.KeyWizardSession(id.String()), b, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}

const maxUpdateAttempts = 5

// Update applies fn to the current state of id and writes the result back
// only if nobody saved the session in between. On a concurrent write fn runs
// again on the fresh state. An error from fn aborts without writing and is
// returned as is.
//
// Returns:
//   - error: repository.ErrNotFound if the session never existed or expired.
//   - error: repository.ErrConflict if the session kept changing under fn.
func (s *SessionStore) Update(ctx context.Context, id uuid.UUID, fn func(st *domain.WizardState) error) error {
	const op = "redisrepo.SessionStore.Update"

	key := redisx.KeyWizardSession(id.String())

	var fnErr error
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}

		var st domain.WizardState
		if err := json.Unmarshal(raw, &st); err != nil {
			return err
		}
		if st.Errors == nil {
			st.Errors = domain.ValidationErrors{}
		}

		if fnErr = fn(&st); fnErr != nil {
			return fnErr
		}

		b, err := json.Marshal(st)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, b, s.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		fnErr = nil

		err := s.rdb.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case fnErr != nil:
			return fnErr
		default:
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return fmt.Errorf("%s: %w", op, repository.ErrConflict)
}
