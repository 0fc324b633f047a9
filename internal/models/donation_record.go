package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Donation status values as recorded by the giving platform.
const (
	DonationStatusActive    = "active"
	DonationStatusLapsed    = "lapsed"
	DonationStatusCompleted = "completed"
	DonationStatusPending   = "pending"
)

// DonationRecord is a read-only view of a single gift. Recurring gifts
// carry the standing-pledge flag and a lifecycle status.
type DonationRecord struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MemberID    uuid.UUID `json:"member_id" gorm:"type:uuid;not null;index"`
	Amount      float64   `json:"amount" gorm:"not null"`
	OccurredAt  time.Time `json:"occurred_at" gorm:"not null;index"`
	IsRecurring bool      `json:"is_recurring" gorm:"default:false"`
	Status      string    `json:"status" gorm:"default:'completed'"`
	CreatedAt   time.Time `json:"created_at"`
}

func (d *DonationRecord) TableName() string { return "donation_records" }

func (d *DonationRecord) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
