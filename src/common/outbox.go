package common

import (
	"log"
	"time"

	"kiteops/src/db"
	"kiteops/src/lib"
	"kiteops/src/models"
	"kiteops/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const outboxTopic = "group-bookings"

// EnqueueEvent records a lifecycle event in the same transaction as the
// mutation it describes. Delivery happens later via PublishPendingEvents.
func EnqueueEvent(tx *gorm.DB, eventType string, payload types.JSONB) error {
	event := models.OutboxEvent{
		ID:        uuid.New(),
		Topic:     outboxTopic,
		EventType: eventType,
		Payload:   payload,
	}
	return tx.Create(&event).Error
}

// PublishPendingEvents drains the outbox to the broker, best-effort. A failed
// publish leaves the row pending for the next sweep.
func PublishPendingEvents() {
	db := db.GetDb()
	var events []models.OutboxEvent
	err := db.
		Model(&models.OutboxEvent{}).
		Where("status = ?", "pending").
		Order("created_at asc").
		Limit(100).
		Find(&events).
		Error
	if err != nil {
		log.Printf("Error loading outbox events: %s\n", err.Error())
		return
	}
	for _, event := range events {
		payload := types.JSONB{
			"id":    event.ID.String(),
			"type":  event.EventType,
			"event": event.Payload,
		}
		if err := lib.KafkaProduceMessage("outbox", event.Topic, &payload); err != nil {
			log.Printf("Error publishing outbox event %s: %s\n", event.ID.String(), err.Error())
			continue
		}
		now := time.Now()
		err := db.
			Model(&models.OutboxEvent{}).
			Where("id = ?", event.ID).
			Updates(map[string]any{"status": "published", "published_at": now}).
			Error
		if err != nil {
			log.Printf("Error marking outbox event %s published: %s\n", event.ID.String(), err.Error())
		}
	}
}
