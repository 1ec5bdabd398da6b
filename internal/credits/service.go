package credits

import (
	"context"
	"errors"
	"fmt"

	"question-bank/internal/models"
)

// maxRetries bounds the optimistic retry loop. Contention on a single
// account is short read-modify-write cycles, so a loser re-reads and
// wins within a few rounds; hitting the bound means the store is
// misbehaving.
const maxRetries = 16

// Service exposes the two mutating credit operations plus reads.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Debit authorizes and applies a consumption of amount credits.
//
// Non-positive amounts fail with ErrInvalidAmount before any read.
// Unlimited-tier accounts are never checked or decremented and get no
// ledger entry (usage of those accounts is still visible through the
// AI logs). Standard-tier accounts are decremented through a
// compare-and-swap so that two concurrent debits cannot both apply
// against the same stale read; on success exactly one ledger entry with
// the negated amount is appended.
func (s *Service) Debit(ctx context.Context, accountID string, amount int64, reason string, metadata map[string]interface{}) (DebitResult, error) {
	if amount <= 0 {
		return DebitResult{}, ErrInvalidAmount
	}
	if reason == "" {
		reason = ReasonExtraction
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		acct, err := s.store.GetAccount(ctx, accountID)
		if err != nil {
			return DebitResult{}, err
		}

		if acct.Tier == TierUnlimited {
			return DebitResult{Remaining: acct.Balance, Unlimited: true}, nil
		}

		if acct.Balance < amount {
			return DebitResult{}, ErrInsufficientCredits
		}

		remaining := acct.Balance - amount
		err = s.store.UpdateBalance(ctx, accountID, acct.Balance, remaining)
		if errors.Is(err, ErrStaleBalance) {
			continue // lost the race, re-read and re-check
		}
		if err != nil {
			return DebitResult{}, err
		}

		entry := &models.CreditEntry{
			UserID:   accountID,
			Amount:   -amount,
			Reason:   reason,
			Metadata: metadata,
		}
		if err := s.store.AppendEntry(ctx, entry); err != nil {
			return DebitResult{}, err
		}
		return DebitResult{Remaining: remaining}, nil
	}

	return DebitResult{}, fmt.Errorf("%w: debit contention on account %s", ErrStorageUnavailable, accountID)
}

// Credit adds amount to the balance and appends a ledger entry with the
// signed amount. The amount may be any integer; negative allocations
// are corrective. Authorization is the caller's concern.
func (s *Service) Credit(ctx context.Context, accountID string, amount int64, reason string) (int64, error) {
	if reason == "" {
		reason = ReasonTopUp
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		acct, err := s.store.GetAccount(ctx, accountID)
		if err != nil {
			return 0, err
		}

		balance := acct.Balance + amount
		err = s.store.UpdateBalance(ctx, accountID, acct.Balance, balance)
		if errors.Is(err, ErrStaleBalance) {
			continue
		}
		if err != nil {
			return 0, err
		}

		entry := &models.CreditEntry{
			UserID: accountID,
			Amount: amount,
			Reason: reason,
		}
		if err := s.store.AppendEntry(ctx, entry); err != nil {
			return 0, err
		}
		return balance, nil
	}

	return 0, fmt.Errorf("%w: credit contention on account %s", ErrStorageUnavailable, accountID)
}

// Balance returns the account's current balance and tier.
func (s *Service) Balance(ctx context.Context, accountID string) (Account, error) {
	return s.store.GetAccount(ctx, accountID)
}

// Entries lists ledger entries newest first. An empty accountID selects
// all accounts.
func (s *Service) Entries(ctx context.Context, accountID string, limit int) ([]models.CreditEntry, error) {
	return s.store.Entries(ctx, accountID, limit)
}
