package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SearchLogRecord captures one member search against the content
// library, with how many results it returned.
type SearchLogRecord struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Query        string    `json:"query" gorm:"not null"`
	ResultsCount int       `json:"results_count" gorm:"not null;default:0"`
	OccurredAt   time.Time `json:"occurred_at" gorm:"not null;index"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *SearchLogRecord) TableName() string { return "search_log_records" }

func (s *SearchLogRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
