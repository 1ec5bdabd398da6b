package models

import "time"

// QuestionSet groups questions for import, export and sharing.
type QuestionSet struct {
	ID        string     `gorm:"primaryKey;size:36"`
	Name      string     `gorm:"size:255;not null"`
	Tags      StringList `gorm:"type:text"`
	IsPrivate bool       `gorm:"index;default:true"`
	CreatorID string     `gorm:"size:64;index;not null"`
	CreatedAt time.Time  `gorm:"index"`
	UpdatedAt time.Time

	Questions []Question `gorm:"foreignKey:QuestionSetID"`
}

// QuestionSetShare records a set being shared with another user, by
// email. The recipient user id is filled in when the address matches a
// known profile at share time.
type QuestionSetShare struct {
	ID              string  `gorm:"primaryKey;size:36"`
	QuestionSetID   string  `gorm:"size:36;index;not null"`
	OwnerID         string  `gorm:"size:64;index;not null"`
	RecipientEmail  string  `gorm:"size:255;not null"`
	RecipientUserID *string `gorm:"size:64;index"`
	CreatedAt       time.Time
}
