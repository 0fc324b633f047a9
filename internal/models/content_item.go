package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentItem is a published teaching/content record with its view and
// engagement counters. The engine passes these through untransformed
// for the "top performing" content listing.
type ContentItem struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title           string    `json:"title" gorm:"not null"`
	Category        string    `json:"category"`
	ViewCount       int       `json:"view_count" gorm:"default:0"`
	EngagementCount int       `json:"engagement_count" gorm:"default:0"`
	PublishedAt     time.Time `json:"published_at"`
	CreatedAt       time.Time `json:"created_at"`
}

func (c *ContentItem) TableName() string { return "content_items" }

func (c *ContentItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
