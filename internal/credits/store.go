package credits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"question-bank/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the persistence boundary of the ledger. Implementations must
// make UpdateBalance atomic: the write applies only when the stored
// balance still equals old, otherwise ErrStaleBalance is returned and
// nothing changes.
type Store interface {
	GetAccount(ctx context.Context, id string) (Account, error)
	UpdateBalance(ctx context.Context, id string, old, next int64) error
	AppendEntry(ctx context.Context, entry *models.CreditEntry) error
	// Entries returns ledger entries newest first. An empty accountID
	// selects entries across all accounts.
	Entries(ctx context.Context, accountID string, limit int) ([]models.CreditEntry, error)
}

// GormStore implements Store against the users and credit_entries
// tables.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) GetAccount(ctx context.Context, id string) (Account, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Select("id", "credits", "role").First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, fmt.Errorf("%w: get account: %v", ErrStorageUnavailable, err)
	}
	return Account{ID: user.ID, Balance: user.Credits, Tier: TierForRole(user.Role)}, nil
}

// UpdateBalance performs the conditional overwrite:
//
//	UPDATE users SET credits = next WHERE id = ? AND credits = old
//
// Zero rows affected means either the account vanished or another
// writer got there first; the two are told apart with a follow-up read.
func (s *GormStore) UpdateBalance(ctx context.Context, id string, old, next int64) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND credits = ?", id, old).
		Update("credits", next)
	if res.Error != nil {
		return fmt.Errorf("%w: update balance: %v", ErrStorageUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("%w: update balance: %v", ErrStorageUnavailable, err)
		}
		if count == 0 {
			return ErrAccountNotFound
		}
		return ErrStaleBalance
	}
	return nil
}

func (s *GormStore) AppendEntry(ctx context.Context, entry *models.CreditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("%w: append entry: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *GormStore) Entries(ctx context.Context, accountID string, limit int) ([]models.CreditEntry, error) {
	q := s.DB.WithContext(ctx).Model(&models.CreditEntry{}).Order("created_at DESC, id DESC")
	if accountID != "" {
		q = q.Where("user_id = ?", accountID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var entries []models.CreditEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("%w: list entries: %v", ErrStorageUnavailable, err)
	}
	return entries, nil
}
