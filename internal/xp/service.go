package xp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/curriculum/internal/logging"
)

// Ledger is the persistence the XP service needs.
type Ledger interface {
	// RecordXPTransaction appends tx. It returns false without error when a
	// transaction with the same (user, source, reference) already exists.
	RecordXPTransaction(ctx context.Context, tx Transaction) (bool, error)

	// ListXPTransactions returns a user's transactions in ledger order.
	ListXPTransactions(ctx context.Context, userID string) ([]Transaction, error)

	// SaveProfile replaces the cached profile.
	SaveProfile(ctx context.Context, p Profile) error
}

// Service awards XP and keeps the cached profile in step with the ledger.
type Service struct {
	ledger Ledger
	curve  Curve
	log    *zap.Logger

	// Now is the clock used for transaction timestamps and streaks.
	Now func() time.Time
}

// NewService creates an XP service.
func NewService(ledger Ledger, curve Curve, log *zap.Logger) *Service {
	return &Service{ledger: ledger, curve: curve, log: logging.OrNop(log), Now: time.Now}
}

// Curve returns the level curve in use.
func (s *Service) Curve() Curve {
	return s.curve
}

// NewTransaction builds a ledger row stamped with a fresh id and the service clock.
func (s *Service) NewTransaction(userID string, amount int64, source Source, ref string) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, fmt.Errorf("%w: %d", ErrNonPositiveAmount, amount)
	}
	return Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      amount,
		Source:      source,
		ReferenceID: ref,
		CreatedAt:   s.Now().UTC(),
	}, nil
}

// Award appends one transaction. Awards are idempotent per
// (user, source, reference): a repeat returns applied=false.
func (s *Service) Award(ctx context.Context, userID string, amount int64, source Source, ref string) (Transaction, bool, error) {
	tx, err := s.NewTransaction(userID, amount, source, ref)
	if err != nil {
		return Transaction{}, false, err
	}
	applied, err := s.ledger.RecordXPTransaction(ctx, tx)
	if err != nil {
		return Transaction{}, false, fmt.Errorf("record xp: %w", err)
	}
	if applied {
		s.log.Debug("xp awarded",
			zap.String("user_id", userID),
			zap.Int64("amount", amount),
			zap.String("source", string(source)),
			zap.String("reference_id", ref))
	}
	return tx, applied, nil
}

// Profile recomputes the profile from the ledger without saving it.
func (s *Service) Profile(ctx context.Context, userID string) (Profile, error) {
	txs, err := s.ledger.ListXPTransactions(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("list xp transactions: %w", err)
	}
	return Recompute(userID, txs, s.curve, s.Now()), nil
}

// Current brings a cached profile up to the service clock and curve. The
// level follows the curve in use and the current streak lapses once a full
// day passes without activity.
func (s *Service) Current(p Profile) Profile {
	p.Level = s.curve.Level(p.TotalXP)
	p.NextLevelXP = s.curve.NextLevelXP(p.TotalXP)
	if p.LastActivityDate.IsZero() || Day(s.Now()).Sub(Day(p.LastActivityDate)) > 24*time.Hour {
		p.StreakDays = 0
	}
	return p
}

// Refresh recomputes the profile from the ledger and saves it.
func (s *Service) Refresh(ctx context.Context, userID string) (Profile, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if err := s.ledger.SaveProfile(ctx, p); err != nil {
		return Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}
