package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Member represents a community member as maintained by the upstream
// membership system. The insights engine only reads these records.
type Member struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	Email     string    `json:"email" gorm:"index"`
	Tier      string    `json:"tier" gorm:"default:'member'"`

	// EngagementScore is maintained externally on a 0-100 scale. Nil
	// means no score has been recorded yet and the engine estimates one
	// from recent activity volume.
	EngagementScore *float64 `json:"engagement_score,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Member) TableName() string { return "members" }

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// DisplayName returns the member's full name for narrative output.
func (m *Member) DisplayName() string {
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}
