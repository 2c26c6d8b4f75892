package store_test

import (
	"context"
	"errors"
	"testing"

	"hirewire/internal/store"
	"hirewire/internal/testutil"
)

func TestEnsureAccountIsIdempotent(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := st.EnsureAccount(ctx, "co_acc", 100); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	// Re-seeding must not reset the balance.
	if err := st.EnsureAccount(ctx, "co_acc", 9999); err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	bal, err := st.GetAccountBalance(ctx, "co_acc")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal != 100 {
		t.Fatalf("balance = %d, want 100", bal)
	}
}

func TestDeductWritesLedgerEntry(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := st.EnsureAccount(ctx, "co_led", 50); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	newBal, err := st.Deduct(ctx, "co_led", 3, "session_debit", "session", "sess_1", "minutes 0..3")
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if newBal != 47 {
		t.Fatalf("balance = %d, want 47", newBal)
	}

	entries, err := st.ListLedgerEntries(ctx, "co_led", nil, nil, 10, 0)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Type != "session_debit" || e.Amount != -3 || e.RefID != "sess_1" {
		t.Fatalf("entry = %+v", e)
	}
}

func TestDeductRejectsOverdraft(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := st.EnsureAccount(ctx, "co_poor", 2); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	bal, err := st.Deduct(ctx, "co_poor", 5, "session_debit", "session", "sess_1", "minutes 0..5")
	if !errors.Is(err, store.ErrInsufficientCredits) {
		t.Fatalf("err = %v, want insufficient credits", err)
	}
	if bal != 2 {
		t.Fatalf("reported balance = %d, want 2", bal)
	}

	// The failed attempt must leave no trace.
	after, err := st.GetAccountBalance(ctx, "co_poor")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if after != 2 {
		t.Fatalf("balance after failed deduct = %d, want 2", after)
	}
	entries, err := st.ListLedgerEntries(ctx, "co_poor", nil, nil, 10, 0)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %+v, want none", entries)
	}
}

func TestCreditRefundRoundTrip(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := st.EnsureAccount(ctx, "co_rt", 10); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, err := st.Deduct(ctx, "co_rt", 4, "session_debit", "session", "sess_1", "minutes 0..4"); err != nil {
		t.Fatalf("deduct: %v", err)
	}
	newBal, err := st.Credit(ctx, "co_rt", 4, "session_refund", "session", "sess_1", "duplicate_heartbeat_refund")
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if newBal != 10 {
		t.Fatalf("balance = %d, want 10", newBal)
	}

	entries, err := st.ListLedgerEntries(ctx, "co_rt", nil, nil, 10, 0)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	var sum int64
	for _, e := range entries {
		sum += e.Amount
	}
	if sum != 0 {
		t.Fatalf("ledger sum = %d, want 0", sum)
	}
}

func TestGetAccountBalanceMissingAccount(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()

	_, err := st.GetAccountBalance(context.Background(), "co_missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}
