package session

import (
	"context"

	"hirewire/internal/lifecycle"
	"hirewire/internal/rooms"
	"hirewire/internal/store"

	"github.com/rs/zerolog/log"
)

// Complete ends a session normally. Calling it again is a no-op update, and
// every call re-attempts room teardown so a failed first teardown gets a
// second chance.
func (s *Service) Complete(ctx context.Context, sessionID string) (*View, error) {
	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	ok, err := s.store.CompleteSession(ctx, sessionID, "completed", now)
	if err != nil {
		return nil, err
	}
	if ok {
		metricCompletedTotal.Add(1)
	}
	if err := s.store.CompleteInterview(ctx, sess.InterviewID, now); err != nil {
		log.Error().Err(err).Str("interview_id", sess.InterviewID).Msg("complete interview failed")
	}
	s.syncCandidate(ctx, sess.CandidateID, "completed")
	s.teardownRoom(ctx, sess)
	return s.view(ctx, sessionID)
}

// Cancel is only legal before the session runs: a live session must go
// through Complete.
func (s *Service) Cancel(ctx context.Context, sessionID string) (*View, error) {
	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cur := lifecycle.Status(sess.Status)
	if cur == lifecycle.StatusInProgress {
		return nil, ErrSessionInProgress
	}
	if lifecycle.IsTerminal(cur) {
		return nil, ErrSessionClosed
	}
	now := s.now()
	ok, err := s.store.CancelSession(ctx, sessionID, "cancelled", now)
	if err != nil {
		return nil, err
	}
	if !ok {
		fresh, err := s.getSession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if fresh.Status == string(lifecycle.StatusInProgress) {
			return nil, ErrSessionInProgress
		}
		return nil, ErrSessionClosed
	}
	if err := s.store.CancelInterview(ctx, sess.InterviewID); err != nil {
		log.Error().Err(err).Str("interview_id", sess.InterviewID).Msg("cancel interview failed")
	}
	s.syncCandidate(ctx, sess.CandidateID, "pending")
	s.teardownRoom(ctx, sess)
	return s.view(ctx, sessionID)
}

func (s *Service) teardownRoom(ctx context.Context, sess *store.Session) {
	if sess.RoomName == "" {
		return
	}
	ref := rooms.Ref{Name: sess.RoomName, Region: sess.RoomRegion}
	if err := s.rooms.DeleteRoom(ctx, ref); err != nil {
		metricRoomTeardownFailsTotal.Add(1)
		log.Warn().Err(err).Str("session_id", sess.ID).Str("room", sess.RoomName).Msg("room teardown failed")
	}
}

func (s *Service) syncCandidate(ctx context.Context, candidateID, status string) {
	if err := s.dir.SetCandidateStatus(ctx, candidateID, status); err != nil {
		log.Warn().Err(err).Str("candidate_id", candidateID).Str("status", status).Msg("candidate status sync failed")
	}
}
