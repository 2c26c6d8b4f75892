package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const participantColumns = `id, session_id, user_id, role, join_order, joined_at, last_heartbeat_at, created_at`

func (s *Store) CreateParticipant(ctx context.Context, p Participant) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO participants (id, session_id, user_id, role, join_order)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, user_id) DO NOTHING`,
		p.ID, p.SessionID, p.UserID, p.Role, p.JoinOrder)
	return err
}

func (s *Store) GetParticipant(ctx context.Context, sessionID, userID string) (*Participant, error) {
	var (
		p                     Participant
		joinedAt, heartbeatAt pgtype.Timestamptz
	)
	err := s.Pool.QueryRow(ctx, `
		SELECT `+participantColumns+` FROM participants
		WHERE session_id = $1 AND user_id = $2`, sessionID, userID).
		Scan(&p.ID, &p.SessionID, &p.UserID, &p.Role, &p.JoinOrder, &joinedAt, &heartbeatAt, &p.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	p.JoinedAt = timePtrVal(joinedAt)
	p.LastHeartbeatAt = timePtrVal(heartbeatAt)
	return &p, nil
}

func (s *Store) ListParticipants(ctx context.Context, sessionID string) ([]Participant, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+participantColumns+` FROM participants
		WHERE session_id = $1 ORDER BY join_order`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Participant
	for rows.Next() {
		var (
			p                     Participant
			joinedAt, heartbeatAt pgtype.Timestamptz
		)
		if err := rows.Scan(&p.ID, &p.SessionID, &p.UserID, &p.Role, &p.JoinOrder,
			&joinedAt, &heartbeatAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.JoinedAt = timePtrVal(joinedAt)
		p.LastHeartbeatAt = timePtrVal(heartbeatAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkParticipantJoined stamps joined_at once; repeat joins only refresh the
// heartbeat timestamp.
func (s *Store) MarkParticipantJoined(ctx context.Context, sessionID, userID string, now time.Time) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE participants
		SET joined_at = COALESCE(joined_at, $3), last_heartbeat_at = $3
		WHERE session_id = $1 AND user_id = $2`, sessionID, userID, now)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) TouchParticipantHeartbeat(ctx context.Context, sessionID, userID string, now time.Time) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE participants SET last_heartbeat_at = $3
		WHERE session_id = $1 AND user_id = $2`, sessionID, userID, now)
	return err
}

func (s *Store) CountJoinedByRole(ctx context.Context, sessionID, role string) (int, error) {
	var n int
	err := s.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM participants
		WHERE session_id = $1 AND role = $2 AND joined_at IS NOT NULL`, sessionID, role).Scan(&n)
	return n, err
}

func (s *Store) CountParticipants(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM participants WHERE session_id = $1`, sessionID).Scan(&n)
	return n, err
}
