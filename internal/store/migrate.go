package store

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/faithbridge/member-insights/internal/models"
)

// RunMigrations creates or updates the prediction engine's tables.
func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Member{},
		&models.ActivityRecord{},
		&models.DonationRecord{},
		&models.SearchLogRecord{},
		&models.ContentItem{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
