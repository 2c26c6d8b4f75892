package lifecycle

// NextOnJoin computes the status a session should hold after a join event,
// given who has joined so far. Terminal statuses and a running session are
// left untouched, so a late or repeated join can never regress state.
func NextOnJoin(current Status, candidateJoined bool, joinedInterviewers, requiredInterviewers int) Status {
	if IsTerminal(current) || current == StatusInProgress {
		return current
	}
	if requiredInterviewers < 1 {
		requiredInterviewers = 1
	}
	interviewersReady := joinedInterviewers >= requiredInterviewers
	switch {
	case candidateJoined && interviewersReady:
		return StatusBothReady
	case candidateJoined:
		return StatusWaitingInterviewer
	case interviewersReady:
		return StatusWaitingCandidate
	default:
		return StatusWaitingBoth
	}
}

// CanStart reports whether an explicit start call is legal right now.
func CanStart(current Status) bool {
	return current == StatusBothReady
}

// CanCancel reports whether a voluntary cancel is legal. A running session
// must go through complete instead.
func CanCancel(current Status) bool {
	return !IsTerminal(current) && current != StatusInProgress
}
