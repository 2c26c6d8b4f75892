package sweep

import (
	"context"
	"time"

	"hirewire/internal/billing"
	"hirewire/internal/directory"
	"hirewire/internal/rooms"
	"hirewire/internal/store"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AbandonedThresholdMinutes int
	AutoEndBufferMinutes      int
	MissedWindowGraceMinutes  int
}

func (c Config) withDefaults() Config {
	if c.AbandonedThresholdMinutes <= 0 {
		c.AbandonedThresholdMinutes = 5
	}
	if c.AutoEndBufferMinutes <= 0 {
		c.AutoEndBufferMinutes = 2
	}
	if c.MissedWindowGraceMinutes <= 0 {
		c.MissedWindowGraceMinutes = 15
	}
	return c
}

type sweepStore interface {
	ListOverdueActiveSessions(ctx context.Context, now time.Time, bufferMinutes int, abandonedCutoff time.Time) ([]store.OverdueSession, error)
	ListStaleWaitingSessions(ctx context.Context, cutoff time.Time) ([]store.Session, error)
	ListMissedScheduledSessions(ctx context.Context, now time.Time, graceMinutes int) ([]store.Session, error)
	CompleteSession(ctx context.Context, id, reason string, now time.Time) (bool, error)
	CancelSession(ctx context.Context, id, reason string, now time.Time) (bool, error)
	MarkSessionMissed(ctx context.Context, id string, now time.Time) (bool, error)
	CompleteInterview(ctx context.Context, id string, now time.Time) error
	CancelInterview(ctx context.Context, id string) error
}

// Service converges sessions the heartbeat path will never revisit. Every
// pass is idempotent and safe to run on overlapping schedules: selection
// filters terminal statuses and the closing updates are conditional.
type Service struct {
	store sweepStore
	rooms rooms.Deleter
	dir   directory.Client
	cfg   Config
	now   func() time.Time
}

func NewService(st sweepStore, rm rooms.Deleter, dir directory.Client, cfg Config) *Service {
	return &Service{
		store: st,
		rooms: rm,
		dir:   dir,
		cfg:   cfg.withDefaults(),
		now:   time.Now,
	}
}

// SweepAbandoned force-completes in_progress sessions that ran past their
// planned window or whose clients stopped heartbeating.
func (s *Service) SweepAbandoned(ctx context.Context) (*Report, error) {
	metricSweepRunsTotal.Add(1)
	now := s.now()
	cutoff := now.Add(-time.Duration(s.cfg.AbandonedThresholdMinutes) * time.Minute)
	sessions, err := s.store.ListOverdueActiveSessions(ctx, now, s.cfg.AutoEndBufferMinutes, cutoff)
	if err != nil {
		return nil, err
	}

	report := &Report{Scanned: len(sessions)}
	for _, sess := range sessions {
		reason := "abandoned"
		if sess.StartedAt != nil {
			elapsed := billing.MinutesElapsed(*sess.StartedAt, now)
			if billing.DurationExceeded(elapsed, sess.DurationMinutes, s.cfg.AutoEndBufferMinutes) {
				reason = "overtime"
			}
		}
		item := ItemResult{SessionID: sess.ID, Reason: reason}
		closed, err := s.store.CompleteSession(ctx, sess.ID, reason, now)
		if err != nil {
			item.Error = err.Error()
			metricSweepFailuresTotal.Add(1)
			log.Error().Err(err).Str("session_id", sess.ID).Msg("sweep complete failed")
			report.Items = append(report.Items, item)
			continue
		}
		if closed {
			item.Closed = true
			report.Closed++
			metricSweepClosedTotal.Add(1)
			if err := s.store.CompleteInterview(ctx, sess.InterviewID, now); err != nil {
				log.Error().Err(err).Str("interview_id", sess.InterviewID).Msg("sweep complete interview failed")
			}
			s.syncCandidate(ctx, sess.CandidateID, "completed")
			s.teardownRoom(ctx, sess.Session)
			log.Info().Str("session_id", sess.ID).Str("reason", reason).Msg("swept active session")
		}
		report.Items = append(report.Items, item)
	}
	return report, nil
}

// SweepWaitingRoom cancels pre-start sessions nobody has touched lately and
// puts the candidate back into a re-enterable state.
func (s *Service) SweepWaitingRoom(ctx context.Context) (*Report, error) {
	metricSweepRunsTotal.Add(1)
	now := s.now()
	cutoff := now.Add(-time.Duration(s.cfg.AbandonedThresholdMinutes) * time.Minute)
	sessions, err := s.store.ListStaleWaitingSessions(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	report := &Report{Scanned: len(sessions)}
	for _, sess := range sessions {
		item := ItemResult{SessionID: sess.ID, Reason: "waiting_room_expired"}
		closed, err := s.store.CancelSession(ctx, sess.ID, "waiting_room_expired", now)
		if err != nil {
			item.Error = err.Error()
			metricSweepFailuresTotal.Add(1)
			log.Error().Err(err).Str("session_id", sess.ID).Msg("sweep cancel failed")
			report.Items = append(report.Items, item)
			continue
		}
		if closed {
			item.Closed = true
			report.Closed++
			metricSweepClosedTotal.Add(1)
			if err := s.store.CancelInterview(ctx, sess.InterviewID); err != nil {
				log.Error().Err(err).Str("interview_id", sess.InterviewID).Msg("sweep cancel interview failed")
			}
			s.syncCandidate(ctx, sess.CandidateID, "pending")
			s.teardownRoom(ctx, sess)
			log.Info().Str("session_id", sess.ID).Msg("swept waiting-room session")
		}
		report.Items = append(report.Items, item)
	}
	return report, nil
}

// SweepMissed marks scheduled sessions whose confirmed slot passed unclaimed.
func (s *Service) SweepMissed(ctx context.Context) (*Report, error) {
	metricSweepRunsTotal.Add(1)
	now := s.now()
	sessions, err := s.store.ListMissedScheduledSessions(ctx, now, s.cfg.MissedWindowGraceMinutes)
	if err != nil {
		return nil, err
	}

	report := &Report{Scanned: len(sessions)}
	for _, sess := range sessions {
		item := ItemResult{SessionID: sess.ID, Reason: "missed_window"}
		closed, err := s.store.MarkSessionMissed(ctx, sess.ID, now)
		if err != nil {
			item.Error = err.Error()
			metricSweepFailuresTotal.Add(1)
			log.Error().Err(err).Str("session_id", sess.ID).Msg("sweep missed failed")
			report.Items = append(report.Items, item)
			continue
		}
		if closed {
			item.Closed = true
			report.Closed++
			metricSweepClosedTotal.Add(1)
			if err := s.store.CancelInterview(ctx, sess.InterviewID); err != nil {
				log.Error().Err(err).Str("interview_id", sess.InterviewID).Msg("sweep missed interview cancel failed")
			}
			s.syncCandidate(ctx, sess.CandidateID, "pending")
			s.teardownRoom(ctx, sess)
			log.Info().Str("session_id", sess.ID).Msg("swept missed session")
		}
		report.Items = append(report.Items, item)
	}
	return report, nil
}

// RunAll executes the three passes in sequence, keeping going when one pass
// fails outright.
func (s *Service) RunAll(ctx context.Context) {
	if _, err := s.SweepAbandoned(ctx); err != nil {
		log.Error().Err(err).Msg("abandoned sweep failed")
	}
	if _, err := s.SweepWaitingRoom(ctx); err != nil {
		log.Error().Err(err).Msg("waiting-room sweep failed")
	}
	if _, err := s.SweepMissed(ctx); err != nil {
		log.Error().Err(err).Msg("missed sweep failed")
	}
}

func (s *Service) teardownRoom(ctx context.Context, sess store.Session) {
	if sess.RoomName == "" {
		return
	}
	ref := rooms.Ref{Name: sess.RoomName, Region: sess.RoomRegion}
	if err := s.rooms.DeleteRoom(ctx, ref); err != nil {
		log.Warn().Err(err).Str("session_id", sess.ID).Str("room", sess.RoomName).Msg("room teardown failed")
	}
}

func (s *Service) syncCandidate(ctx context.Context, candidateID, status string) {
	if err := s.dir.SetCandidateStatus(ctx, candidateID, status); err != nil {
		log.Warn().Err(err).Str("candidate_id", candidateID).Str("status", status).Msg("candidate status sync failed")
	}
}
