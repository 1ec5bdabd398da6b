package models

import "time"

// Question difficulty and status values.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Question is a single assessment question. Ownership is by creator id;
// visibility is controlled by IsPrivate plus the caller's role.
type Question struct {
	ID            string     `gorm:"primaryKey;size:36"`
	CreatorID     string     `gorm:"size:64;index;not null"`
	QuestionSetID *string    `gorm:"size:36;index"`
	Title         string     `gorm:"size:512;not null"`
	Body          string     `gorm:"type:text;not null"`
	Explanation   string     `gorm:"type:text"`
	Answer        string     `gorm:"type:text"`
	Options       OptionList `gorm:"type:text"`
	Tags          StringList `gorm:"type:text"`
	Difficulty    string     `gorm:"size:16;index;default:Medium"`
	Category      string     `gorm:"size:64;index;default:General"`
	References    StringList `gorm:"type:text"`
	IsPrivate     bool       `gorm:"index;default:true"`
	Status        string     `gorm:"size:16;index;default:draft"`
	CreatedAt     time.Time  `gorm:"index"`
	UpdatedAt     time.Time  `gorm:"index"`
}
