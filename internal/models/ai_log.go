package models

import "time"

// AILog statuses.
const (
	AIStatusSuccess = "success"
	AIStatusFailed  = "failed"
)

// AILog records one extraction job: which file, how long the provider
// took and whether it succeeded. Also drives the per-user rate limit
// and the dashboard activity feed.
type AILog struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"size:64;index;not null"`
	FilePath  string    `gorm:"size:512"`
	Status    string    `gorm:"size:16;index"`
	LatencyMS int64     `gorm:"not null;default:0"`
	Metadata  JSONMap   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index"`
}
