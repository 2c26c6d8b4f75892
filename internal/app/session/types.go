package session

import "time"

type CreateRequest struct {
	CompanyID            string     `json:"company_id"`
	CandidateID          string     `json:"candidate_id"`
	JobID                string     `json:"job_id"`
	InterviewerIDs       []string   `json:"interviewer_ids"`
	DurationMinutes      *int       `json:"duration_minutes"`
	ScheduledAt          *time.Time `json:"scheduled_at"`
	BillingMode          string     `json:"billing_mode"`
	RequiredParticipants int        `json:"required_participants"`
	RoomRegion           string     `json:"room_region"`
}

type JoinRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type View struct {
	ID                   string            `json:"id"`
	InterviewID          string            `json:"interview_id"`
	CompanyID            string            `json:"company_id"`
	CandidateID          string            `json:"candidate_id"`
	JobID                string            `json:"job_id"`
	Status               string            `json:"status"`
	BillingMode          string            `json:"billing_mode"`
	RoomName             string            `json:"room_name"`
	RoomRegion           string            `json:"room_region"`
	RequiredParticipants int               `json:"required_participants"`
	ScheduleMode         string            `json:"schedule_mode"`
	ScheduledAt          *time.Time        `json:"scheduled_at,omitempty"`
	StartedAt            *time.Time        `json:"started_at,omitempty"`
	LastActiveAt         *time.Time        `json:"last_active_at,omitempty"`
	CreditsDeducted      int               `json:"credits_deducted"`
	EndReason            string            `json:"end_reason,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	Participants         []ParticipantView `json:"participants,omitempty"`
}

type ParticipantView struct {
	UserID          string     `json:"user_id"`
	Role            string     `json:"role"`
	JoinOrder       int        `json:"join_order"`
	JoinedAt        *time.Time `json:"joined_at,omitempty"`
	LastHeartbeatAt *time.Time `json:"last_heartbeat_at,omitempty"`
}

type HeartbeatResult struct {
	SessionID       string `json:"session_id"`
	Status          string `json:"status"`
	MinutesElapsed  int    `json:"minutes_elapsed"`
	CreditsDeducted int    `json:"credits_deducted"`
	NewBalance      int64  `json:"new_balance"`
	CreditWarning   string `json:"credit_warning,omitempty"`
	AutoEnded       bool   `json:"auto_ended"`
	AutoEndReason   string `json:"auto_end_reason,omitempty"`
	Message         string `json:"message,omitempty"`
}
