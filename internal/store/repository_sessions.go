package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const sessionColumns = `id, interview_id, company_id, candidate_id, job_id, status, billing_mode,
	room_name, room_region, required_participants, schedule_mode, scheduled_at, started_at,
	last_active_at, credits_deducted, end_reason, created_at, updated_at`

// Statuses a session can hold before anyone pressed start.
var waitingStatuses = []string{"waiting_both", "waiting_candidate", "waiting_interviewer", "both_ready"}

func scanSession(row pgx.Row) (*Session, error) {
	var (
		s                                  Session
		scheduledAt, startedAt, lastActive pgtype.Timestamptz
	)
	err := row.Scan(&s.ID, &s.InterviewID, &s.CompanyID, &s.CandidateID, &s.JobID, &s.Status,
		&s.BillingMode, &s.RoomName, &s.RoomRegion, &s.RequiredParticipants, &s.ScheduleMode,
		&scheduledAt, &startedAt, &lastActive, &s.CreditsDeducted, &s.EndReason,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	s.ScheduledAt = timePtrVal(scheduledAt)
	s.StartedAt = timePtrVal(startedAt)
	s.LastActiveAt = timePtrVal(lastActive)
	return &s, nil
}

func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO sessions (id, interview_id, company_id, candidate_id, job_id, status,
			billing_mode, room_name, room_region, required_participants, schedule_mode, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		sess.ID, sess.InterviewID, sess.CompanyID, sess.CandidateID, sess.JobID, sess.Status,
		sess.BillingMode, sess.RoomName, sess.RoomRegion, sess.RequiredParticipants,
		sess.ScheduleMode, timeParam(sess.ScheduledAt))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateRoomToken
	}
	return err
}

func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	return scanSession(row)
}

// UpdateSessionStatus performs a conditional status transition. Returns false
// when the row was not in the expected status, so racing callers lose cleanly.
func (s *Store) UpdateSessionStatus(ctx context.Context, id, from, to string, now time.Time) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE sessions SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`,
		id, from, to, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkSessionStarted flips both_ready into in_progress and stamps started_at
// exactly once. Exactly one of two concurrent callers observes a row affected.
func (s *Store) MarkSessionStarted(ctx context.Context, id string, now time.Time) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE sessions
		SET status = 'in_progress', started_at = COALESCE(started_at, $2),
			last_active_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'both_ready'`,
		id, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AdvanceSessionBilling adds delta billed minutes, conditioned on the
// previously observed counter so duplicate heartbeats cannot double-count.
func (s *Store) AdvanceSessionBilling(ctx context.Context, id string, prevDeducted, delta int, now time.Time) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE sessions
		SET credits_deducted = credits_deducted + $3, last_active_at = $4, updated_at = $4
		WHERE id = $1 AND credits_deducted = $2 AND status = 'in_progress'`,
		id, prevDeducted, delta, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// TouchSession refreshes liveness without billing. No-op on terminal rows.
func (s *Store) TouchSession(ctx context.Context, id string, now time.Time) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE sessions SET last_active_at = $2, updated_at = $2
		WHERE id = $1 AND status NOT IN ('completed', 'cancelled', 'missed')`,
		id, now)
	return err
}

func (s *Store) CompleteSession(ctx context.Context, id, reason string, now time.Time) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE sessions SET status = 'completed', end_reason = $2, updated_at = $3
		WHERE id = $1 AND status NOT IN ('completed', 'cancelled', 'missed')`,
		id, reason, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) CancelSession(ctx context.Context, id, reason string, now time.Time) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE sessions SET status = 'cancelled', end_reason = $2, updated_at = $3
		WHERE id = $1 AND status NOT IN ('completed', 'cancelled', 'missed', 'in_progress')`,
		id, reason, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) MarkSessionMissed(ctx context.Context, id string, now time.Time) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE sessions SET status = 'missed', end_reason = 'missed_window', updated_at = $2
		WHERE id = $1 AND status = ANY($3)`,
		id, now, waitingStatuses)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// OverdueSession carries the owning interview's planned duration alongside the
// session so sweep callers can tell overtime from abandonment.
type OverdueSession struct {
	Session
	DurationMinutes *int
}

// ListOverdueActiveSessions returns in_progress sessions that either ran past
// their planned duration plus buffer, or stopped heartbeating before
// abandonedCutoff.
func (s *Store) ListOverdueActiveSessions(ctx context.Context, now time.Time, bufferMinutes int, abandonedCutoff time.Time) ([]OverdueSession, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+prefixedSessionColumns("s")+`, i.duration_minutes
		FROM sessions s
		JOIN interviews i ON i.id = s.interview_id
		WHERE s.status = 'in_progress'
		  AND (
			COALESCE(s.last_active_at, s.updated_at) < $1
			OR (i.duration_minutes IS NOT NULL
				AND s.started_at IS NOT NULL
				AND s.started_at + make_interval(mins => i.duration_minutes + $2) < $3)
		  )
		ORDER BY s.updated_at`,
		abandonedCutoff, bufferMinutes, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OverdueSession
	for rows.Next() {
		var (
			o                                  OverdueSession
			scheduledAt, startedAt, lastActive pgtype.Timestamptz
			duration                           pgtype.Int4
		)
		if err := rows.Scan(&o.ID, &o.InterviewID, &o.CompanyID, &o.CandidateID, &o.JobID,
			&o.Status, &o.BillingMode, &o.RoomName, &o.RoomRegion, &o.RequiredParticipants,
			&o.ScheduleMode, &scheduledAt, &startedAt, &lastActive, &o.CreditsDeducted,
			&o.EndReason, &o.CreatedAt, &o.UpdatedAt, &duration); err != nil {
			return nil, err
		}
		o.ScheduledAt = timePtrVal(scheduledAt)
		o.StartedAt = timePtrVal(startedAt)
		o.LastActiveAt = timePtrVal(lastActive)
		o.DurationMinutes = intPtrVal(duration)
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListStaleWaitingSessions returns pre-start sessions untouched since cutoff.
func (s *Store) ListStaleWaitingSessions(ctx context.Context, cutoff time.Time) ([]Session, error) {
	return s.querySessions(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE status = ANY($1) AND updated_at < $2
		ORDER BY updated_at`,
		waitingStatuses, cutoff)
}

// ListMissedScheduledSessions returns scheduled sessions whose confirmed slot
// plus grace has passed without a start.
func (s *Store) ListMissedScheduledSessions(ctx context.Context, now time.Time, graceMinutes int) ([]Session, error) {
	return s.querySessions(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE schedule_mode = 'scheduled'
		  AND scheduled_at IS NOT NULL
		  AND scheduled_at + make_interval(mins => $2) < $1
		  AND status = ANY($3)
		ORDER BY scheduled_at`,
		now, graceMinutes, waitingStatuses)
}

func (s *Store) ListSessions(ctx context.Context, companyID string, limit, offset int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.querySessions(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE ($1 = '' OR company_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		companyID, limit, offset)
}

func (s *Store) querySessions(ctx context.Context, sql string, args ...any) ([]Session, error) {
	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sess)
	}
	return out, rows.Err()
}

func prefixedSessionColumns(alias string) string {
	return alias + `.id, ` + alias + `.interview_id, ` + alias + `.company_id, ` +
		alias + `.candidate_id, ` + alias + `.job_id, ` + alias + `.status, ` +
		alias + `.billing_mode, ` + alias + `.room_name, ` + alias + `.room_region, ` +
		alias + `.required_participants, ` + alias + `.schedule_mode, ` + alias + `.scheduled_at, ` +
		alias + `.started_at, ` + alias + `.last_active_at, ` + alias + `.credits_deducted, ` +
		alias + `.end_reason, ` + alias + `.created_at, ` + alias + `.updated_at`
}
