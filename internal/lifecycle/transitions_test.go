package lifecycle

import "testing"

func TestNextOnJoin(t *testing.T) {
	tests := []struct {
		name            string
		current         Status
		candidateJoined bool
		joined          int
		required        int
		want            Status
	}{
		{name: "nobody joined", current: StatusWaitingBoth, want: StatusWaitingBoth},
		{name: "candidate only", current: StatusWaitingBoth, candidateJoined: true, want: StatusWaitingInterviewer},
		{name: "interviewer only", current: StatusWaitingBoth, joined: 1, required: 1, want: StatusWaitingCandidate},
		{name: "both joined", current: StatusWaitingCandidate, candidateJoined: true, joined: 1, required: 1, want: StatusBothReady},
		{name: "panel below quorum", current: StatusWaitingBoth, candidateJoined: true, joined: 1, required: 2, want: StatusWaitingInterviewer},
		{name: "panel at quorum", current: StatusWaitingInterviewer, candidateJoined: true, joined: 2, required: 2, want: StatusBothReady},
		{name: "required defaults to one", current: StatusWaitingBoth, candidateJoined: true, joined: 1, required: 0, want: StatusBothReady},
		{name: "completed is absorbing", current: StatusCompleted, candidateJoined: true, joined: 3, required: 1, want: StatusCompleted},
		{name: "cancelled is absorbing", current: StatusCancelled, candidateJoined: true, joined: 1, required: 1, want: StatusCancelled},
		{name: "missed is absorbing", current: StatusMissed, candidateJoined: true, joined: 1, required: 1, want: StatusMissed},
		{name: "running session untouched", current: StatusInProgress, candidateJoined: true, joined: 1, required: 1, want: StatusInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOnJoin(tt.current, tt.candidateJoined, tt.joined, tt.required)
			if got != tt.want {
				t.Fatalf("NextOnJoin() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNextOnJoinIdempotent(t *testing.T) {
	first := NextOnJoin(StatusWaitingBoth, true, 1, 1)
	second := NextOnJoin(first, true, 1, 1)
	if first != second {
		t.Fatalf("repeated join moved %q to %q", first, second)
	}
}

func TestCanStart(t *testing.T) {
	if !CanStart(StatusBothReady) {
		t.Fatal("expected start allowed from both_ready")
	}
	for _, s := range []Status{StatusWaitingBoth, StatusWaitingCandidate, StatusWaitingInterviewer, StatusInProgress, StatusCompleted, StatusCancelled, StatusMissed} {
		if CanStart(s) {
			t.Fatalf("expected start rejected from %q", s)
		}
	}
}

func TestCanCancel(t *testing.T) {
	for _, s := range []Status{StatusWaitingBoth, StatusWaitingCandidate, StatusWaitingInterviewer, StatusBothReady} {
		if !CanCancel(s) {
			t.Fatalf("expected cancel allowed from %q", s)
		}
	}
	for _, s := range []Status{StatusInProgress, StatusCompleted, StatusCancelled, StatusMissed} {
		if CanCancel(s) {
			t.Fatalf("expected cancel rejected from %q", s)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []Status{StatusCompleted, StatusCancelled, StatusMissed}
	for _, s := range terminal {
		if !IsTerminal(s) {
			t.Fatalf("expected %q terminal", s)
		}
	}
	if IsTerminal(StatusInProgress) || IsTerminal(StatusBothReady) {
		t.Fatal("active statuses must not be terminal")
	}
}
