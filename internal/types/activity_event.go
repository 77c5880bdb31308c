package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Fixed activity event enumeration. The daily breakdown only ever reports
// these four; new types must be added here and to analytics.BreakdownTypes
// explicitly before they show up anywhere.
const (
	EventTypeChat             = "chat"
	EventTypeLogin            = "login"
	EventTypeLibraryView      = "library_view"
	EventTypeBookUpload       = "book_upload"
	EventTypeLessonView       = "lesson_view"
	EventTypeLessonComplete   = "lesson_complete"
	EventTypeAssignmentSubmit = "assignment_submit"
)

// ActivityEvent is an append-only row: no update or delete path exists, and
// OccurredAt is always server-assigned UTC.
type ActivityEvent struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_activity_event_user_occurred" json:"user_id"`
	User       *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Type       string         `gorm:"column:type;not null;index" json:"type"`
	OccurredAt time.Time      `gorm:"not null;index:idx_activity_event_user_occurred" json:"occurred_at"`
	Data       datatypes.JSON `gorm:"type:jsonb;column:data" json:"data"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (ActivityEvent) TableName() string { return "activity_event" }
