package session

import (
	"context"
	"errors"
	"time"

	"hirewire/internal/directory"
	"hirewire/internal/lifecycle"
	"hirewire/internal/rooms"
	"hirewire/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	roleInterviewer = "interviewer"
	roleCandidate   = "candidate"

	billingModeStandard = "standard"
	billingModeFree     = "free"

	roomTokenAttempts = 3
)

type Config struct {
	MaxDeductPerCall     int
	AutoEndBufferMinutes int
	RequiredParticipants int
	MaxParticipants      int
}

func (c Config) withDefaults() Config {
	if c.MaxDeductPerCall <= 0 {
		c.MaxDeductPerCall = 5
	}
	if c.AutoEndBufferMinutes <= 0 {
		c.AutoEndBufferMinutes = 2
	}
	if c.RequiredParticipants <= 0 {
		c.RequiredParticipants = 1
	}
	if c.MaxParticipants <= 0 {
		c.MaxParticipants = 3
	}
	return c
}

type sessionStore interface {
	CreateInterview(ctx context.Context, iv store.Interview) error
	GetInterview(ctx context.Context, id string) (*store.Interview, error)
	MarkInterviewActive(ctx context.Context, id string) error
	CompleteInterview(ctx context.Context, id string, now time.Time) error
	CancelInterview(ctx context.Context, id string) error

	CreateSession(ctx context.Context, sess store.Session) error
	GetSession(ctx context.Context, id string) (*store.Session, error)
	UpdateSessionStatus(ctx context.Context, id, from, to string, now time.Time) (bool, error)
	MarkSessionStarted(ctx context.Context, id string, now time.Time) (bool, error)
	AdvanceSessionBilling(ctx context.Context, id string, prevDeducted, delta int, now time.Time) (bool, error)
	TouchSession(ctx context.Context, id string, now time.Time) error
	CompleteSession(ctx context.Context, id, reason string, now time.Time) (bool, error)
	CancelSession(ctx context.Context, id, reason string, now time.Time) (bool, error)

	CreateParticipant(ctx context.Context, p store.Participant) error
	GetParticipant(ctx context.Context, sessionID, userID string) (*store.Participant, error)
	ListParticipants(ctx context.Context, sessionID string) ([]store.Participant, error)
	MarkParticipantJoined(ctx context.Context, sessionID, userID string, now time.Time) error
	TouchParticipantHeartbeat(ctx context.Context, sessionID, userID string, now time.Time) error
	CountJoinedByRole(ctx context.Context, sessionID, role string) (int, error)
	CountParticipants(ctx context.Context, sessionID string) (int, error)

	GetAccountBalance(ctx context.Context, companyID string) (int64, error)
}

type creditLedger interface {
	DeductMinutes(ctx context.Context, companyID, sessionID string, minutes int, description string) (int64, error)
	RefundMinutes(ctx context.Context, companyID, sessionID string, minutes int, description string) (int64, error)
}

// Service drives the session lifecycle and the heartbeat billing loop.
type Service struct {
	store  sessionStore
	ledger creditLedger
	rooms  rooms.Deleter
	dir    directory.Client
	cfg    Config
	now    func() time.Time
}

func NewService(st sessionStore, led creditLedger, rm rooms.Deleter, dir directory.Client, cfg Config) *Service {
	return &Service{
		store:  st,
		ledger: led,
		rooms:  rm,
		dir:    dir,
		cfg:    cfg.withDefaults(),
		now:    time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*View, error) {
	if req.CompanyID == "" || req.CandidateID == "" {
		return nil, ErrInvalidRequest
	}
	billingMode := req.BillingMode
	switch billingMode {
	case "":
		billingMode = billingModeStandard
	case billingModeStandard, billingModeFree:
	default:
		return nil, ErrInvalidRequest
	}
	required := req.RequiredParticipants
	if required <= 0 {
		required = s.cfg.RequiredParticipants
	}
	if len(req.InterviewerIDs)+1 > s.cfg.MaxParticipants {
		return nil, ErrSessionFull
	}

	iv := store.Interview{
		ID:              store.NewID(),
		CompanyID:       req.CompanyID,
		JobID:           req.JobID,
		Status:          "pending",
		DurationMinutes: req.DurationMinutes,
	}
	if err := s.store.CreateInterview(ctx, iv); err != nil {
		return nil, err
	}

	scheduleMode := "instant"
	if req.ScheduledAt != nil {
		scheduleMode = "scheduled"
	}
	sess := store.Session{
		ID:                   store.NewID(),
		InterviewID:          iv.ID,
		CompanyID:            req.CompanyID,
		CandidateID:          req.CandidateID,
		JobID:                req.JobID,
		Status:               string(lifecycle.StatusWaitingBoth),
		BillingMode:          billingMode,
		RoomRegion:           req.RoomRegion,
		RequiredParticipants: required,
		ScheduleMode:         scheduleMode,
		ScheduledAt:          req.ScheduledAt,
	}
	// Room tokens are globally unique; a collision just means drawing again.
	var err error
	for attempt := 0; attempt < roomTokenAttempts; attempt++ {
		sess.RoomName = "hw-" + uuid.NewString()
		err = s.store.CreateSession(ctx, sess)
		if !errors.Is(err, store.ErrDuplicateRoomToken) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	candidate := store.Participant{
		ID:        store.NewID(),
		SessionID: sess.ID,
		UserID:    req.CandidateID,
		Role:      roleCandidate,
		JoinOrder: 0,
	}
	if err := s.store.CreateParticipant(ctx, candidate); err != nil {
		return nil, err
	}
	for i, userID := range req.InterviewerIDs {
		p := store.Participant{
			ID:        store.NewID(),
			SessionID: sess.ID,
			UserID:    userID,
			Role:      roleInterviewer,
			JoinOrder: i + 1,
		}
		if err := s.store.CreateParticipant(ctx, p); err != nil {
			return nil, err
		}
	}

	return s.view(ctx, sess.ID)
}

// Join records a participant's arrival and advances the waiting-room status.
// Joining a terminal session is a no-op that reports the current state.
func (s *Service) Join(ctx context.Context, sessionID string, req JoinRequest) (*View, error) {
	if req.UserID == "" {
		return nil, ErrInvalidRequest
	}
	if req.Role != roleInterviewer && req.Role != roleCandidate {
		return nil, ErrInvalidRequest
	}
	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if lifecycle.IsTerminal(lifecycle.Status(sess.Status)) {
		return s.view(ctx, sessionID)
	}

	now := s.now()
	if _, err := s.store.GetParticipant(ctx, sessionID, req.UserID); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		count, err := s.store.CountParticipants(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if count >= s.cfg.MaxParticipants {
			return nil, ErrSessionFull
		}
		p := store.Participant{
			ID:        store.NewID(),
			SessionID: sessionID,
			UserID:    req.UserID,
			Role:      req.Role,
			JoinOrder: count,
		}
		if err := s.store.CreateParticipant(ctx, p); err != nil {
			return nil, err
		}
	}
	if err := s.store.MarkParticipantJoined(ctx, sessionID, req.UserID, now); err != nil {
		return nil, err
	}

	participants, err := s.store.ListParticipants(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	candidateJoined := false
	for _, p := range participants {
		if p.Role == roleCandidate && p.JoinedAt != nil {
			candidateJoined = true
			break
		}
	}
	joinedInterviewers, err := s.store.CountJoinedByRole(ctx, sessionID, roleInterviewer)
	if err != nil {
		return nil, err
	}

	next := lifecycle.NextOnJoin(lifecycle.Status(sess.Status), candidateJoined, joinedInterviewers, sess.RequiredParticipants)
	if string(next) != sess.Status {
		ok, err := s.store.UpdateSessionStatus(ctx, sessionID, sess.Status, string(next), now)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Lost a race with a concurrent join or sweep; the fresh read below
			// reports whatever won.
			log.Debug().Str("session_id", sessionID).Msg("join transition superseded")
		}
	} else {
		if err := s.store.TouchSession(ctx, sessionID, now); err != nil {
			return nil, err
		}
	}
	return s.view(ctx, sessionID)
}

// Start moves both_ready into in_progress. Of two racing callers exactly one
// performs the transition; the other receives the already-started record.
func (s *Service) Start(ctx context.Context, sessionID string) (*View, error) {
	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	ok, err := s.store.MarkSessionStarted(ctx, sessionID, now)
	if err != nil {
		return nil, err
	}
	if ok {
		if err := s.store.MarkInterviewActive(ctx, sess.InterviewID); err != nil {
			log.Error().Err(err).Str("interview_id", sess.InterviewID).Msg("mark interview active failed")
		}
		metricStartedTotal.Add(1)
		return s.view(ctx, sessionID)
	}

	fresh, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch {
	case fresh.Status == string(lifecycle.StatusInProgress):
		return s.view(ctx, sessionID)
	case lifecycle.IsTerminal(lifecycle.Status(fresh.Status)):
		return nil, ErrSessionClosed
	default:
		return nil, ErrNotReady
	}
}

func (s *Service) Get(ctx context.Context, sessionID string) (*View, error) {
	return s.view(ctx, sessionID)
}

func (s *Service) getSession(ctx context.Context, sessionID string) (*store.Session, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return sess, nil
}

func (s *Service) view(ctx context.Context, sessionID string) (*View, error) {
	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	participants, err := s.store.ListParticipants(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	v := viewFromSession(sess)
	for _, p := range participants {
		v.Participants = append(v.Participants, ParticipantView{
			UserID:          p.UserID,
			Role:            p.Role,
			JoinOrder:       p.JoinOrder,
			JoinedAt:        p.JoinedAt,
			LastHeartbeatAt: p.LastHeartbeatAt,
		})
	}
	return v, nil
}

func viewFromSession(sess *store.Session) *View {
	return &View{
		ID:                   sess.ID,
		InterviewID:          sess.InterviewID,
		CompanyID:            sess.CompanyID,
		CandidateID:          sess.CandidateID,
		JobID:                sess.JobID,
		Status:               sess.Status,
		BillingMode:          sess.BillingMode,
		RoomName:             sess.RoomName,
		RoomRegion:           sess.RoomRegion,
		RequiredParticipants: sess.RequiredParticipants,
		ScheduleMode:         sess.ScheduleMode,
		ScheduledAt:          sess.ScheduledAt,
		StartedAt:            sess.StartedAt,
		LastActiveAt:         sess.LastActiveAt,
		CreditsDeducted:      sess.CreditsDeducted,
		EndReason:            sess.EndReason,
		CreatedAt:            sess.CreatedAt,
	}
}
