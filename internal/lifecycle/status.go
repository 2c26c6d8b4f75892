package lifecycle

// Status is the session's position in the interview lifecycle.
type Status string

const (
	StatusWaitingBoth        Status = "waiting_both"
	StatusWaitingCandidate   Status = "waiting_candidate"
	StatusWaitingInterviewer Status = "waiting_interviewer"
	StatusBothReady          Status = "both_ready"
	StatusInProgress         Status = "in_progress"
	StatusCompleted          Status = "completed"
	StatusCancelled          Status = "cancelled"
	StatusMissed             Status = "missed"
)

// IsTerminal reports whether s is absorbing: no transition function may move
// a session out of a terminal status.
func IsTerminal(s Status) bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusMissed:
		return true
	default:
		return false
	}
}

// IsWaiting reports whether s is a pre-start status.
func IsWaiting(s Status) bool {
	switch s {
	case StatusWaitingBoth, StatusWaitingCandidate, StatusWaitingInterviewer, StatusBothReady:
		return true
	default:
		return false
	}
}
