package billing

import (
	"fmt"
	"time"
)

// Warning is the credit-level signal surfaced to clients with each heartbeat.
type Warning string

const (
	WarningNone      Warning = ""
	WarningLow       Warning = "low"
	WarningCritical  Warning = "critical"
	WarningExhausted Warning = "exhausted"
)

// AutoEndReason says why the engine force-ended a session.
type AutoEndReason string

const (
	AutoEndNone             AutoEndReason = ""
	AutoEndDurationExceeded AutoEndReason = "duration_exceeded"
	AutoEndCreditsExhausted AutoEndReason = "credits_exhausted"
)

const (
	criticalBalance = 5
	lowBalance      = 10
)

// MinutesElapsed converts wall clock into billable minutes: any started
// fraction of a minute counts as a whole one.
func MinutesElapsed(startedAt, now time.Time) int {
	d := now.Sub(startedAt)
	if d <= 0 {
		return 0
	}
	mins := int(d / time.Minute)
	if d%time.Minute != 0 {
		mins++
	}
	return mins
}

// NeededMinutes is the unbilled backlog, clamped so a client that resumes
// after a long silence pays the deficit off over several heartbeats instead
// of one retroactive lump.
func NeededMinutes(minutesElapsed, creditsDeducted, maxPerCall int) int {
	needed := minutesElapsed - creditsDeducted
	if needed < 0 {
		return 0
	}
	if maxPerCall > 0 && needed > maxPerCall {
		return maxPerCall
	}
	return needed
}

func WarningForBalance(balance int64) Warning {
	switch {
	case balance <= 0:
		return WarningExhausted
	case balance <= criticalBalance:
		return WarningCritical
	case balance <= lowBalance:
		return WarningLow
	default:
		return WarningNone
	}
}

// DurationExceeded checks the planned duration plus buffer against elapsed
// minutes. A nil duration means the session has no cap.
func DurationExceeded(minutesElapsed int, durationMinutes *int, bufferMinutes int) bool {
	if durationMinutes == nil || *durationMinutes <= 0 {
		return false
	}
	return minutesElapsed >= *durationMinutes+bufferMinutes
}

// MinuteRange describes the minutes a deduction covers, for the ledger entry.
func MinuteRange(creditsDeducted, needed int) string {
	return fmt.Sprintf("minutes %d..%d", creditsDeducted+1, creditsDeducted+needed)
}

// AutoEndMessage is the human-readable reason shown to clients.
func AutoEndMessage(reason AutoEndReason) string {
	switch reason {
	case AutoEndDurationExceeded:
		return "interview duration limit reached"
	case AutoEndCreditsExhausted:
		return "company credits exhausted"
	default:
		return ""
	}
}
