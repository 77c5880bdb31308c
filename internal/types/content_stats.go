package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ContentStats holds the per-content running aggregates. Rows are created
// lazily on first view, never deleted, and written exclusively through the
// aggregate service's transactions.
type ContentStats struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ContentID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"content_id"`
	Views             int64          `gorm:"not null;default:0" json:"views"`
	Completions       int64          `gorm:"not null;default:0" json:"completions"`
	AverageProgress   float64        `gorm:"not null;default:0" json:"average_progress"`
	AverageTimeSpent  float64        `gorm:"not null;default:0" json:"average_time_spent"`
	DifficultyRating  float64        `gorm:"not null;default:0" json:"difficulty_rating"`
	Ratings           datatypes.JSON `gorm:"type:jsonb" json:"ratings"`
	StruggledSections datatypes.JSON `gorm:"type:jsonb" json:"struggled_sections"`
	LastUpdated       time.Time      `gorm:"not null" json:"last_updated"`
	CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ContentStats) TableName() string { return "content_stats" }

func (s *ContentStats) RatingList() []float64 {
	var out []float64
	if len(s.Ratings) == 0 {
		return out
	}
	_ = json.Unmarshal(s.Ratings, &out)
	return out
}

func (s *ContentStats) SetRatingList(ratings []float64) {
	b, _ := json.Marshal(ratings)
	s.Ratings = datatypes.JSON(b)
}

func (s *ContentStats) StruggledSectionList() []string {
	var out []string
	if len(s.StruggledSections) == 0 {
		return out
	}
	_ = json.Unmarshal(s.StruggledSections, &out)
	return out
}

func (s *ContentStats) SetStruggledSectionList(ids []string) {
	b, _ := json.Marshal(ids)
	s.StruggledSections = datatypes.JSON(b)
}
