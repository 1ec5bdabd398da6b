package database

import (
	"fmt"

	"question-bank/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.CreditEntry{},
		&models.Question{},
		&models.QuestionSet{},
		&models.QuestionSetShare{},
		&models.AILog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
