package session

import "errors"

var (
	ErrInvalidRequest    = errors.New("invalid_request")
	ErrSessionNotFound   = errors.New("session_not_found")
	ErrInterviewNotFound = errors.New("interview_not_found")
	ErrSessionClosed     = errors.New("session_closed")
	ErrSessionInProgress = errors.New("session_in_progress")
	ErrNotReady          = errors.New("session_not_ready")
	ErrSessionFull       = errors.New("session_full")
)
