package wizard

import (
	"context"
	"fmt"

	"github.com/elevate-events/lounge/internal/domain"
	postgresrepo "github.com/elevate-events/lounge/internal/repository/postgres"
	"github.com/elevate-events/lounge/internal/uow"
	"github.com/google/uuid"
)

// Ledger records every submission attempt.
type Ledger interface {
	Record(ctx context.Context, sub domain.Submission, onCommit uow.AfterCommit) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Submission, error)
}

type PostgresLedger struct {
	store *postgresrepo.Store
	uow   *uow.UoW
}

func NewPostgresLedger(store *postgresrepo.Store) *PostgresLedger {
	return &PostgresLedger{
		store: store,
		uow:   uow.NewUoW(store),
	}
}

// Record inserts sub and runs onCommit, if any, once the row is committed.
func (l *PostgresLedger) Record(ctx context.Context, sub domain.Submission, onCommit uow.AfterCommit) error {
	const op = "service.wizard.PostgresLedger.Record"

	err := l.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		if err := l.store.Submissions().With(tx).Insert(ctx, sub); err != nil {
			return err
		}

		if onCommit != nil {
			after(onCommit)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (l *PostgresLedger) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Submission, error) {
	return l.store.Submissions().ListBySession(ctx, sessionID)
}
