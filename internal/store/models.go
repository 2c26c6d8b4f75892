package store

import "time"

type Interview struct {
	ID              string
	CompanyID       string
	JobID           string
	Status          string
	DurationMinutes *int
	CompletedAt     *time.Time
	CreatedAt       time.Time
}

type Session struct {
	ID                   string
	InterviewID          string
	CompanyID            string
	CandidateID          string
	JobID                string
	Status               string
	BillingMode          string
	RoomName             string
	RoomRegion           string
	RequiredParticipants int
	ScheduleMode         string
	ScheduledAt          *time.Time
	StartedAt            *time.Time
	LastActiveAt         *time.Time
	CreditsDeducted      int
	EndReason            string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Participant struct {
	ID              string
	SessionID       string
	UserID          string
	Role            string
	JoinOrder       int
	JoinedAt        *time.Time
	LastHeartbeatAt *time.Time
	CreatedAt       time.Time
}

type Account struct {
	CompanyID string
	Balance   int64
	UpdatedAt time.Time
}

type LedgerEntry struct {
	ID          string
	CompanyID   string
	Type        string
	Amount      int64
	RefType     string
	RefID       string
	Description string
	CreatedAt   time.Time
}
