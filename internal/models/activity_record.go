package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityRecord is an immutable, append-only record of a single member
// interaction (attendance check-in, sermon view, group message, etc.).
type ActivityRecord struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MemberID     uuid.UUID `json:"member_id" gorm:"type:uuid;not null;index"`
	ActivityType string    `json:"activity_type" gorm:"not null"`
	OccurredAt   time.Time `json:"occurred_at" gorm:"not null;index"`

	// Metadata carries the upstream event payload (device, campus,
	// referrer) as written by the platform. The engine treats it as
	// opaque.
	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
}

func (a *ActivityRecord) TableName() string { return "activity_records" }

func (a *ActivityRecord) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
