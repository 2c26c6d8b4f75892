package session

import (
	"context"
	"sync"
	"time"

	"hirewire/internal/lifecycle"
	"hirewire/internal/rooms"
	"hirewire/internal/store"
)

// memStore is an in-memory stand-in for the pg-backed store. Conditional
// updates mirror the SQL semantics: they report whether a row actually
// changed instead of erroring.
type memStore struct {
	mu           sync.Mutex
	interviews   map[string]*store.Interview
	sessions     map[string]*store.Session
	participants map[string][]*store.Participant
	balances     map[string]int64
	roomNames    map[string]bool

	failCreateSession int    // remaining CreateSession calls to reject as duplicates
	advanceHook       func() // runs before AdvanceSessionBilling applies
}

func newMemStore() *memStore {
	return &memStore{
		interviews:   map[string]*store.Interview{},
		sessions:     map[string]*store.Session{},
		participants: map[string][]*store.Participant{},
		balances:     map[string]int64{},
		roomNames:    map[string]bool{},
	}
}

func (m *memStore) CreateInterview(ctx context.Context, iv store.Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := iv
	m.interviews[iv.ID] = &cp
	return nil
}

func (m *memStore) GetInterview(ctx context.Context, id string) (*store.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.interviews[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *iv
	return &cp, nil
}

func (m *memStore) MarkInterviewActive(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if iv, ok := m.interviews[id]; ok && iv.Status == "pending" {
		iv.Status = "active"
	}
	return nil
}

func (m *memStore) CompleteInterview(ctx context.Context, id string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if iv, ok := m.interviews[id]; ok && iv.Status != "cancelled" {
		iv.Status = "completed"
		if iv.CompletedAt == nil {
			iv.CompletedAt = &now
		}
	}
	return nil
}

func (m *memStore) CancelInterview(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if iv, ok := m.interviews[id]; ok && iv.Status != "completed" {
		iv.Status = "cancelled"
	}
	return nil
}

func (m *memStore) CreateSession(ctx context.Context, sess store.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateSession > 0 {
		m.failCreateSession--
		return store.ErrDuplicateRoomToken
	}
	if m.roomNames[sess.RoomName] {
		return store.ErrDuplicateRoomToken
	}
	m.roomNames[sess.RoomName] = true
	cp := sess
	m.sessions[sess.ID] = &cp
	return nil
}

func (m *memStore) GetSession(ctx context.Context, id string) (*store.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (m *memStore) UpdateSessionStatus(ctx context.Context, id, from, to string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok || sess.Status != from {
		return false, nil
	}
	sess.Status = to
	sess.LastActiveAt = &now
	sess.UpdatedAt = now
	return true, nil
}

func (m *memStore) MarkSessionStarted(ctx context.Context, id string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok || sess.Status != string(lifecycle.StatusBothReady) {
		return false, nil
	}
	sess.Status = string(lifecycle.StatusInProgress)
	if sess.StartedAt == nil {
		sess.StartedAt = &now
	}
	sess.LastActiveAt = &now
	sess.UpdatedAt = now
	return true, nil
}

func (m *memStore) AdvanceSessionBilling(ctx context.Context, id string, prevDeducted, delta int, now time.Time) (bool, error) {
	if m.advanceHook != nil {
		m.advanceHook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok || sess.Status != string(lifecycle.StatusInProgress) || sess.CreditsDeducted != prevDeducted {
		return false, nil
	}
	sess.CreditsDeducted += delta
	sess.LastActiveAt = &now
	sess.UpdatedAt = now
	return true, nil
}

func (m *memStore) TouchSession(ctx context.Context, id string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[id]; ok && !lifecycle.IsTerminal(lifecycle.Status(sess.Status)) {
		sess.LastActiveAt = &now
		sess.UpdatedAt = now
	}
	return nil
}

func (m *memStore) CompleteSession(ctx context.Context, id, reason string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok || lifecycle.IsTerminal(lifecycle.Status(sess.Status)) {
		return false, nil
	}
	sess.Status = string(lifecycle.StatusCompleted)
	sess.EndReason = reason
	sess.UpdatedAt = now
	return true, nil
}

func (m *memStore) CancelSession(ctx context.Context, id, reason string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return false, nil
	}
	cur := lifecycle.Status(sess.Status)
	if lifecycle.IsTerminal(cur) || cur == lifecycle.StatusInProgress {
		return false, nil
	}
	sess.Status = string(lifecycle.StatusCancelled)
	sess.EndReason = reason
	sess.UpdatedAt = now
	return true, nil
}

func (m *memStore) CreateParticipant(ctx context.Context, p store.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.participants[p.SessionID] {
		if existing.UserID == p.UserID {
			return nil
		}
	}
	cp := p
	m.participants[p.SessionID] = append(m.participants[p.SessionID], &cp)
	return nil
}

func (m *memStore) GetParticipant(ctx context.Context, sessionID, userID string) (*store.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.participants[sessionID] {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListParticipants(ctx context.Context, sessionID string) ([]store.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.Participant, 0, len(m.participants[sessionID]))
	for _, p := range m.participants[sessionID] {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memStore) MarkParticipantJoined(ctx context.Context, sessionID, userID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.participants[sessionID] {
		if p.UserID == userID {
			if p.JoinedAt == nil {
				p.JoinedAt = &now
			}
			p.LastHeartbeatAt = &now
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) TouchParticipantHeartbeat(ctx context.Context, sessionID, userID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.participants[sessionID] {
		if p.UserID == userID {
			p.LastHeartbeatAt = &now
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) CountJoinedByRole(ctx context.Context, sessionID, role string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.participants[sessionID] {
		if p.Role == role && p.JoinedAt != nil {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CountParticipants(ctx context.Context, sessionID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.participants[sessionID]), nil
}

func (m *memStore) GetAccountBalance(ctx context.Context, companyID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal, ok := m.balances[companyID]
	if !ok {
		return 0, store.ErrNotFound
	}
	return bal, nil
}

// memLedger debits against memStore balances with the same
// insufficient-credits contract as the real ledger.
type memLedger struct {
	store   *memStore
	deducts []int
	refunds []int
}

func (l *memLedger) DeductMinutes(ctx context.Context, companyID, sessionID string, minutes int, description string) (int64, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	bal := l.store.balances[companyID]
	if bal < int64(minutes) {
		return bal, store.ErrInsufficientCredits
	}
	bal -= int64(minutes)
	l.store.balances[companyID] = bal
	l.deducts = append(l.deducts, minutes)
	return bal, nil
}

func (l *memLedger) RefundMinutes(ctx context.Context, companyID, sessionID string, minutes int, description string) (int64, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	bal := l.store.balances[companyID] + int64(minutes)
	l.store.balances[companyID] = bal
	l.refunds = append(l.refunds, minutes)
	return bal, nil
}

type recordingDeleter struct {
	mu    sync.Mutex
	calls []rooms.Ref
	err   error
}

func (d *recordingDeleter) DeleteRoom(ctx context.Context, ref rooms.Ref) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, ref)
	return d.err
}

type recordingDirectory struct {
	mu    sync.Mutex
	calls []string
}

func (d *recordingDirectory) SetCandidateStatus(ctx context.Context, candidateID, status string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, candidateID+":"+status)
	return nil
}
