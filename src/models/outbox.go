package models

import (
	"kiteops/src/types"
	"time"

	"github.com/google/uuid"
)

// OutboxEvent is written in the same transaction as the mutation it
// describes and published to the broker by a best-effort sweep.
type OutboxEvent struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`

	Topic       string      `json:"topic,omitempty"`
	EventType   string      `json:"event_type,omitempty"`
	Payload     types.JSONB `gorm:"type:jsonb" json:"payload,omitempty"`
	Status      string      `gorm:"default:'pending'" json:"status,omitempty"`
	PublishedAt *time.Time  `json:"published_at,omitempty"`

	types.Timestamps
}
