package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventStatusChanged = "project.status_changed"
	EventResubmitted   = "project.resubmitted"
)

// Delivery statuses
const (
	DeliverySent    = "sent"
	DeliveryFailed  = "failed"
	DeliverySkipped = "skipped"
)

// WebSocket message types
const (
	WSMessageTypeModeration = "moderation"
	WSMessageTypeConnected  = "connected"
)

// ModerationEvent is emitted after a project changes status.
type ModerationEvent struct {
	ID           uuid.UUID  `json:"id"`
	Type         string     `json:"type"`
	ProjectID    uuid.UUID  `json:"project_id"`
	ProjectName  string     `json:"project_name"`
	OwnerID      uuid.UUID  `json:"owner_id"`
	ContactEmail string     `json:"-"`
	Status       string     `json:"status"`
	Notes        string     `json:"notes,omitempty"`
	ActorID      uuid.UUID  `json:"actor_id"`
	OccurredAt   time.Time  `json:"occurred_at"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
}

// DeliveryLog records each attempt to deliver an event on a channel.
type DeliveryLog struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	EventID      uuid.UUID `json:"event_id" gorm:"type:uuid;not null;index"`
	ProjectID    uuid.UUID `json:"project_id" gorm:"type:uuid;not null;index"`
	EventType    string    `json:"event_type" gorm:"not null"`
	Channel      string    `json:"channel" gorm:"not null"`
	Status       string    `json:"status" gorm:"not null"`
	ErrorMessage string    `json:"error_message"`
	Timestamp    time.Time `json:"timestamp" gorm:"autoCreateTime"`
}

func (DeliveryLog) TableName() string { return "notification_deliveries" }

// WebSocketMessage represents WebSocket message format
type WebSocketMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
