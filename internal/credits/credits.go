// Package credits implements the credit ledger: account balances, the
// debit authorization sequence and the append-only transaction log.
// Balance mutations go through a compare-and-swap at the store so that
// concurrent operations against the same account serialize instead of
// clobbering each other's writes.
package credits

import (
	"errors"

	"question-bank/internal/models"
)

// Tier is an account's privilege level, resolved once from the profile
// role at the store boundary and passed around as a closed enum.
type Tier int

const (
	// TierStandard accounts have their balance checked and decremented.
	TierStandard Tier = iota
	// TierUnlimited accounts bypass balance checks entirely; debits
	// neither read-modify-write the balance nor append a ledger entry.
	TierUnlimited
)

func (t Tier) String() string {
	if t == TierUnlimited {
		return "unlimited"
	}
	return "standard"
}

// TierForRole maps a profile role onto a tier. Only admins are
// unlimited.
func TierForRole(role string) Tier {
	if role == models.RoleAdmin {
		return TierUnlimited
	}
	return TierStandard
}

// Account is the ledger's view of a user: balance plus tier.
type Account struct {
	ID      string
	Balance int64
	Tier    Tier
}

// DebitResult is the outcome of a successful (or bypassed) debit.
type DebitResult struct {
	Remaining int64
	Unlimited bool
}

// Default reasons recorded on ledger entries when the caller supplies
// none.
const (
	ReasonExtraction = "AI extraction"
	ReasonTopUp      = "Manual top-up"
	ReasonAllocation = "Manual allocation"
)

// Typed failures. Handlers translate these onto transport errors with
// errors.Is; nothing in this package logs or swallows them.
var (
	// ErrInvalidAmount rejects non-positive debit amounts before any
	// storage access.
	ErrInvalidAmount = errors.New("credits: amount must be positive")

	// ErrInsufficientCredits means a standard-tier balance is below the
	// requested debit. No mutation has occurred.
	ErrInsufficientCredits = errors.New("credits: insufficient credits")

	// ErrAccountNotFound means the account was never provisioned.
	ErrAccountNotFound = errors.New("credits: account not found")

	// ErrStaleBalance is returned by Store.UpdateBalance when the
	// current balance no longer matches the expected value. The service
	// retries; callers outside this package normally never see it.
	ErrStaleBalance = errors.New("credits: stale balance")

	// ErrStorageUnavailable wraps infrastructure failures from the
	// underlying store.
	ErrStorageUnavailable = errors.New("credits: storage unavailable")
)
