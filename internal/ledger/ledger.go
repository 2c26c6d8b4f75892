package ledger

import (
	"context"

	"hirewire/internal/store"
)

// Ledger is the credit-deduction facade the billing engine talks to. One
// credit buys one minute of session time.
type Ledger struct {
	Store *store.Store
}

func New(s *store.Store) *Ledger {
	return &Ledger{Store: s}
}

func (l *Ledger) DeductMinutes(ctx context.Context, companyID, sessionID string, minutes int, description string) (int64, error) {
	return l.Store.Deduct(ctx, companyID, int64(minutes), "session_debit", "session", sessionID, description)
}

func (l *Ledger) RefundMinutes(ctx context.Context, companyID, sessionID string, minutes int, description string) (int64, error) {
	return l.Store.Credit(ctx, companyID, int64(minutes), "session_refund", "session", sessionID, description)
}

func (l *Ledger) Balance(ctx context.Context, companyID string) (int64, error) {
	return l.Store.GetAccountBalance(ctx, companyID)
}
