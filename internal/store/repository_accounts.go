package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

func (s *Store) EnsureAccount(ctx context.Context, companyID string, initial int64) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO accounts (company_id, balance) VALUES ($1, $2)
		ON CONFLICT (company_id) DO NOTHING`, companyID, initial)
	return err
}

func (s *Store) GetAccountBalance(ctx context.Context, companyID string) (int64, error) {
	var bal int64
	err := s.Pool.QueryRow(ctx, `
		SELECT balance FROM accounts WHERE company_id = $1`, companyID).Scan(&bal)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return bal, nil
}

// Deduct removes amount credits inside a row-locked transaction and records a
// negative ledger entry. Rejects with ErrInsufficientCredits when the balance
// cannot cover the amount; the balance is never driven below zero.
func (s *Store) Deduct(ctx context.Context, companyID string, amount int64, entryType, refType, refID, description string) (int64, error) {
	if amount <= 0 {
		return 0, errors.New("amount must be positive")
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var bal int64
	err = tx.QueryRow(ctx, `
		SELECT balance FROM accounts WHERE company_id = $1 FOR UPDATE`, companyID).Scan(&bal)
	if err != nil {
		return 0, mapNotFound(err)
	}
	if bal < amount {
		return bal, ErrInsufficientCredits
	}
	newBal := bal - amount
	if _, err := tx.Exec(ctx, `
		UPDATE accounts SET balance = $2, updated_at = now() WHERE company_id = $1`,
		companyID, newBal); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO ledger_entries (id, company_id, type, amount, ref_type, ref_id, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		NewID(), companyID, entryType, -amount, refType, refID, description); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBal, nil
}

func (s *Store) Credit(ctx context.Context, companyID string, amount int64, entryType, refType, refID, description string) (int64, error) {
	if amount <= 0 {
		return 0, errors.New("amount must be positive")
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var bal int64
	err = tx.QueryRow(ctx, `
		SELECT balance FROM accounts WHERE company_id = $1 FOR UPDATE`, companyID).Scan(&bal)
	if err != nil {
		return 0, mapNotFound(err)
	}
	newBal := bal + amount
	if _, err := tx.Exec(ctx, `
		UPDATE accounts SET balance = $2, updated_at = now() WHERE company_id = $1`,
		companyID, newBal); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO ledger_entries (id, company_id, type, amount, ref_type, ref_id, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		NewID(), companyID, entryType, amount, refType, refID, description); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBal, nil
}

func (s *Store) ListLedgerEntries(ctx context.Context, companyID string, from, to *time.Time, limit, offset int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, company_id, type, amount, ref_type, ref_id, description, created_at
		FROM ledger_entries
		WHERE ($1 = '' OR company_id = $1)
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`,
		companyID, timeParam(from), timeParam(to), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.Type, &e.Amount, &e.RefType, &e.RefID,
			&e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
