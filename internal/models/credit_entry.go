package models

import "time"

// CreditEntry is one immutable row of the credits ledger. Negative
// amounts are consumption, positive amounts are allocation. Rows are
// only ever inserted.
type CreditEntry struct {
	ID        string  `gorm:"primaryKey;size:36"`
	UserID    string  `gorm:"size:64;index;not null"`
	Amount    int64   `gorm:"not null"`
	Reason    string  `gorm:"size:128"`
	Metadata  JSONMap `gorm:"type:text"`
	CreatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
