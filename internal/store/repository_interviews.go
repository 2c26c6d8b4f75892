package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

func (s *Store) CreateInterview(ctx context.Context, iv Interview) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO interviews (id, company_id, job_id, status, duration_minutes)
		VALUES ($1, $2, $3, $4, $5)`,
		iv.ID, iv.CompanyID, iv.JobID, iv.Status, int4PtrParam(iv.DurationMinutes))
	return err
}

func (s *Store) GetInterview(ctx context.Context, id string) (*Interview, error) {
	var (
		iv          Interview
		duration    pgtype.Int4
		completedAt pgtype.Timestamptz
	)
	err := s.Pool.QueryRow(ctx, `
		SELECT id, company_id, job_id, status, duration_minutes, completed_at, created_at
		FROM interviews WHERE id = $1`, id).
		Scan(&iv.ID, &iv.CompanyID, &iv.JobID, &iv.Status, &duration, &completedAt, &iv.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	iv.DurationMinutes = intPtrVal(duration)
	iv.CompletedAt = timePtrVal(completedAt)
	return &iv, nil
}

func (s *Store) MarkInterviewActive(ctx context.Context, id string) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE interviews SET status = 'active'
		WHERE id = $1 AND status = 'pending'`, id)
	return err
}

// CompleteInterview is idempotent: the completion timestamp sticks on the
// first call and later calls leave it alone.
func (s *Store) CompleteInterview(ctx context.Context, id string, now time.Time) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE interviews SET status = 'completed', completed_at = COALESCE(completed_at, $2)
		WHERE id = $1 AND status <> 'cancelled'`, id, now)
	return err
}

func (s *Store) CancelInterview(ctx context.Context, id string) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE interviews SET status = 'cancelled'
		WHERE id = $1 AND status NOT IN ('completed', 'cancelled')`, id)
	return err
}

// SetInterviewDuration supports mid-session extensions. Heartbeats pick the
// new value up on their next pass; no transactional coupling.
func (s *Store) SetInterviewDuration(ctx context.Context, id string, minutes int) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE interviews SET duration_minutes = $2
		WHERE id = $1 AND status IN ('pending', 'active')`, id, minutes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
