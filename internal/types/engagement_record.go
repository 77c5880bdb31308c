package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Interaction struct {
	Timestamp time.Time      `json:"timestamp"`
	Kind      string         `json:"kind"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// EngagementRecord tracks one user's journey through one content item.
// Created on first view, closed (EndedAt, progress 100) on completion.
type EngagementRecord struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_engagement_user_content" json:"user_id"`
	User             *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ContentID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_engagement_user_content" json:"content_id"`
	StartedAt        time.Time      `gorm:"not null" json:"started_at"`
	EndedAt          *time.Time     `json:"ended_at,omitempty"`
	TimeSpentSeconds int64          `gorm:"not null;default:0" json:"time_spent_seconds"`
	ProgressPercent  float64        `gorm:"not null;default:0" json:"progress_percent"`
	Interactions     datatypes.JSON `gorm:"type:jsonb" json:"interactions"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (EngagementRecord) TableName() string { return "engagement_record" }

func (r *EngagementRecord) InteractionList() []Interaction {
	var out []Interaction
	if len(r.Interactions) == 0 {
		return out
	}
	_ = json.Unmarshal(r.Interactions, &out)
	return out
}

func (r *EngagementRecord) AppendInteraction(in Interaction) {
	list := append(r.InteractionList(), in)
	b, _ := json.Marshal(list)
	r.Interactions = datatypes.JSON(b)
}
