package session

import (
	"context"
	"errors"
	"time"

	"hirewire/internal/billing"
	"hirewire/internal/lifecycle"
	"hirewire/internal/store"

	"github.com/rs/zerolog/log"
)

// Heartbeat converts elapsed wall clock into deducted credits and decides
// whether the session must be force-ended. Billing is driven entirely by the
// persisted credits_deducted counter, so a crash between the ledger deduct
// and the session update heals itself on the next call.
func (s *Service) Heartbeat(ctx context.Context, sessionID, callerUserID string) (*HeartbeatResult, error) {
	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if lifecycle.IsTerminal(lifecycle.Status(sess.Status)) {
		return nil, ErrSessionClosed
	}
	metricHeartbeatsTotal.Add(1)
	now := s.now()

	if callerUserID != "" {
		if err := s.store.TouchParticipantHeartbeat(ctx, sessionID, callerUserID, now); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Str("user_id", callerUserID).Msg("participant heartbeat touch failed")
		}
	}

	// A heartbeat before start is proof of life, nothing more.
	if sess.StartedAt == nil {
		if err := s.store.TouchSession(ctx, sessionID, now); err != nil {
			return nil, err
		}
		return &HeartbeatResult{SessionID: sessionID, Status: sess.Status}, nil
	}

	elapsed := billing.MinutesElapsed(*sess.StartedAt, now)
	iv, err := s.store.GetInterview(ctx, sess.InterviewID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInterviewNotFound
		}
		return nil, err
	}

	if sess.BillingMode == billingModeFree {
		return s.heartbeatFree(ctx, sess, iv, elapsed, now)
	}

	deducted := sess.CreditsDeducted
	var balance int64
	warning := billing.WarningNone

	needed := billing.NeededMinutes(elapsed, deducted, s.cfg.MaxDeductPerCall)
	if needed > 0 {
		newBal, err := s.ledger.DeductMinutes(ctx, sess.CompanyID, sess.ID, needed, billing.MinuteRange(deducted, needed))
		switch {
		case errors.Is(err, store.ErrInsufficientCredits):
			// The failed deduction is the exhaustion signal; deducted stays put.
			balance = newBal
			warning = billing.WarningExhausted
		case err != nil:
			return nil, err
		default:
			ok, advErr := s.store.AdvanceSessionBilling(ctx, sess.ID, deducted, needed, now)
			if advErr != nil {
				return nil, advErr
			}
			if !ok {
				// A duplicate heartbeat advanced the counter first. Hand the
				// minutes back so the company is not billed twice for them.
				balance = s.refundDuplicate(ctx, sess, needed, newBal)
				fresh, err := s.getSession(ctx, sessionID)
				if err != nil {
					return nil, err
				}
				deducted = fresh.CreditsDeducted
			} else {
				deducted += needed
				balance = newBal
				metricMinutesBilledTotal.Add(int64(needed))
			}
			warning = billing.WarningForBalance(balance)
		}
	} else {
		if err := s.store.TouchSession(ctx, sessionID, now); err != nil {
			return nil, err
		}
		bal, err := s.store.GetAccountBalance(ctx, sess.CompanyID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		balance = bal
		warning = billing.WarningForBalance(balance)
	}

	reason := billing.AutoEndNone
	switch {
	case billing.DurationExceeded(elapsed, iv.DurationMinutes, s.cfg.AutoEndBufferMinutes):
		reason = billing.AutoEndDurationExceeded
	case warning == billing.WarningExhausted:
		reason = billing.AutoEndCreditsExhausted
	}

	res := &HeartbeatResult{
		SessionID:       sessionID,
		Status:          sess.Status,
		MinutesElapsed:  elapsed,
		CreditsDeducted: deducted,
		NewBalance:      balance,
		CreditWarning:   string(warning),
	}
	if reason != billing.AutoEndNone {
		s.forceEnd(ctx, sess, string(reason), now)
		res.Status = string(lifecycle.StatusCompleted)
		res.AutoEnded = true
		res.AutoEndReason = string(reason)
		res.Message = billing.AutoEndMessage(reason)
	}
	return res, nil
}

// heartbeatFree handles no-charge sessions: no ledger traffic, but the
// duration cap and liveness bookkeeping still apply.
func (s *Service) heartbeatFree(ctx context.Context, sess *store.Session, iv *store.Interview, elapsed int, now time.Time) (*HeartbeatResult, error) {
	if err := s.store.TouchSession(ctx, sess.ID, now); err != nil {
		return nil, err
	}
	res := &HeartbeatResult{
		SessionID:      sess.ID,
		Status:         sess.Status,
		MinutesElapsed: elapsed,
	}
	if billing.DurationExceeded(elapsed, iv.DurationMinutes, s.cfg.AutoEndBufferMinutes) {
		s.forceEnd(ctx, sess, string(billing.AutoEndDurationExceeded), now)
		res.Status = string(lifecycle.StatusCompleted)
		res.AutoEnded = true
		res.AutoEndReason = string(billing.AutoEndDurationExceeded)
		res.Message = billing.AutoEndMessage(billing.AutoEndDurationExceeded)
	}
	return res, nil
}

func (s *Service) refundDuplicate(ctx context.Context, sess *store.Session, minutes int, balanceBefore int64) int64 {
	newBal, err := s.ledger.RefundMinutes(ctx, sess.CompanyID, sess.ID, minutes, "duplicate_heartbeat_refund")
	if err != nil {
		log.Error().Err(err).Str("session_id", sess.ID).Int("minutes", minutes).Msg("duplicate heartbeat refund failed")
		return balanceBefore
	}
	log.Warn().Str("session_id", sess.ID).Int("minutes", minutes).Msg("duplicate heartbeat refunded")
	return newBal
}

// forceEnd closes out the session after a policy decision. The authoritative
// status writes land first; room teardown runs last and its failure is only
// logged.
func (s *Service) forceEnd(ctx context.Context, sess *store.Session, reason string, now time.Time) {
	if _, err := s.store.CompleteSession(ctx, sess.ID, reason, now); err != nil {
		log.Error().Err(err).Str("session_id", sess.ID).Str("reason", reason).Msg("force end session failed")
		return
	}
	if err := s.store.CompleteInterview(ctx, sess.InterviewID, now); err != nil {
		log.Error().Err(err).Str("interview_id", sess.InterviewID).Msg("force end interview failed")
	}
	s.syncCandidate(ctx, sess.CandidateID, "completed")
	s.teardownRoom(ctx, sess)
	metricAutoEndTotal.Add(1)
	log.Info().Str("session_id", sess.ID).Str("reason", reason).Msg("session auto-ended")
}
