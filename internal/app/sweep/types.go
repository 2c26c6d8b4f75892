package sweep

// Report summarizes one sweep pass. Items carry per-session outcomes so a
// partially failed batch is still observable.
type Report struct {
	Scanned int          `json:"scanned"`
	Closed  int          `json:"closed"`
	Items   []ItemResult `json:"items"`
}

type ItemResult struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
	Closed    bool   `json:"closed"`
	Error     string `json:"error,omitempty"`
}
