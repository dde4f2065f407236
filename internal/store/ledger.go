package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/curriculum/internal/xp"
)

// RecordXPTransaction appends t to the ledger. The ledger is unique on
// (user, source, reference): a repeat is a no-op that reports false.
func (s *Store) RecordXPTransaction(ctx context.Context, t xp.Transaction) (bool, error) {
	var applied bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		applied, err = s.appendXP(ctx, tx, t)
		return err
	})
	return applied, err
}

// appendXP inserts t inside tx.
func (s *Store) appendXP(ctx context.Context, tx *sql.Tx, t xp.Transaction) (bool, error) {
	if t.Amount <= 0 {
		return false, fmt.Errorf("%w: %d", xp.ErrNonPositiveAmount, t.Amount)
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}

	seq, err := s.seq.Next(ctx, tx)
	if err != nil {
		return false, err
	}

	ins := builder().Insert("xp_transactions").
		Columns("id", "user_id", "amount", "source", "reference_id", "created_at", "sequence").
		Values(t.ID, t.UserID, t.Amount, string(t.Source), t.ReferenceID, t.CreatedAt.UTC(), seq).
		OnConflict(entsql.ConflictColumns("user_id", "source", "reference_id"), entsql.DoNothing())
	res, err := exec(ctx, tx, ins)
	if err != nil {
		return false, fmt.Errorf("insert xp transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert xp transaction: %w", err)
	}
	return n == 1, nil
}

// ListXPTransactions returns the user's ledger in sequence order.
func (s *Store) ListXPTransactions(ctx context.Context, userID string) ([]xp.Transaction, error) {
	return s.xpTransactions(ctx, entsql.EQ("user_id", userID))
}

// xpTransactions lists ledger rows matching p, or the whole ledger when p is nil.
func (s *Store) xpTransactions(ctx context.Context, p *entsql.Predicate) ([]xp.Transaction, error) {
	sel := builder().Select("id", "user_id", "amount", "source", "reference_id", "created_at", "sequence").
		From(builder().Table("xp_transactions")).
		OrderBy("sequence")
	if p != nil {
		sel = sel.Where(p)
	}
	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query xp transactions: %w", err)
	}
	defer rows.Close()

	var out []xp.Transaction
	for rows.Next() {
		var t xp.Transaction
		var source string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &source, &t.ReferenceID, &t.CreatedAt, &t.Sequence); err != nil {
			return nil, fmt.Errorf("scan xp transaction: %w", err)
		}
		t.Source = xp.Source(source)
		t.CreatedAt = t.CreatedAt.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}
