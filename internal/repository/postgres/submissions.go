package postgresrepo

import (
	"context"

	"github.com/elevate-events/lounge/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubmissionRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *SubmissionRepo) With(db DB) *SubmissionRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *SubmissionRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Insert records one submission attempt.
//
// Returns:
//   - error: repository.ErrConflict if the reference was already recorded.
func (r *SubmissionRepo) Insert(ctx context.Context, s domain.Submission) error {
	const op = "postgresrepo.SubmissionRepo.Insert"

	var ref *string
	if s.Reference != "" {
		ref = &s.Reference
	}

	_, err := r.handle().Exec(ctx,
		`INSERT INTO wizard_submissions (
			id, session_id, reference, venue_id, booking_date, start_time,
			guests, duration_hours, total, payment_method, status, error, created_at
		 ) VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10, $11, $12, $13)`,
		s.ID, s.SessionID, ref, s.VenueID, s.Date, s.Time,
		s.Guests, s.DurationHours, s.Total, string(s.PaymentMethod),
		string(s.Status), s.Error, s.CreatedAt,
	)

	return wrapDBErr(op, err)
}

// GetByReference returns the confirmed submission behind a reference.
//
// Returns:
//   - error: repository.ErrNotFound if no submission carries the reference.
func (r *SubmissionRepo) GetByReference(ctx context.Context, reference string) (*domain.Submission, error) {
	const op = "postgresrepo.SubmissionRepo.GetByReference"

	row := r.handle().QueryRow(ctx,
		`SELECT `+submissionColumns+`
		 FROM wizard_submissions
		 WHERE reference = $1`,
		reference,
	)

	s, err := scanSubmission(row)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return s, nil
}

// ListBySession returns a session's attempts, newest first.
func (r *SubmissionRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Submission, error) {
	const op = "postgresrepo.SubmissionRepo.ListBySession"

	rows, err := r.handle().Query(ctx,
		`SELECT `+submissionColumns+`
		 FROM wizard_submissions
		 WHERE session_id = $1
		 ORDER BY created_at DESC`,
		sessionID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

const submissionColumns = `id, session_id, COALESCE(reference, ''), venue_id,
	to_char(booking_date, 'YYYY-MM-DD'), start_time, guests, duration_hours,
	total, payment_method, status, error, created_at`

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var (
		s      domain.Submission
		pm     string
		status string
	)

	err := row.Scan(
		&s.ID, &s.SessionID, &s.Reference, &s.VenueID,
		&s.Date, &s.Time, &s.Guests, &s.DurationHours,
		&s.Total, &pm, &status, &s.Error, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.PaymentMethod = domain.PaymentMethod(pm)
	s.Status = domain.SubmissionStatus(status)

	return &s, nil
}
