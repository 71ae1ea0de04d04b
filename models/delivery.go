package models

import (
	"time"

	"github.com/davecheney/pubmod/internal/algorithms"
	"github.com/davecheney/pubmod/internal/snowflake"
	"gorm.io/gorm"
)

type Request struct {
	ID uint32 `gorm:"primarykey;"`
	// CreatedAt is the time the request was created.
	CreatedAt time.Time
	// UpdatedAt is the time the request was last updated.
	UpdatedAt time.Time
	// Attempts is the number of times the request has been attempted.
	Attempts uint32 `gorm:"not null;default:0"`
	// LastAttempt is the time the request was last attempted.
	LastAttempt time.Time
	// LastResult is the result of the last attempt if it failed.
	LastResult string `gorm:"type:text;"`
}

// A DeliveryRequest is a pending POST of an activity to a remote inbox.
// DeliveryRequests are created by the outbound fanout and processed by the
// delivery worker in the background.
type DeliveryRequest struct {
	Request

	// ActorID is the ID of the local actor that signs the delivery.
	ActorID snowflake.ID `gorm:"not null;"`
	Actor   *Actor       `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
	// ActivityID is the id of the activity being delivered.
	ActivityID string `gorm:"size:255;not null"`
	Inbox      string `gorm:"size:255;not null"`
	Body       []byte `gorm:"not null"`
}

type Deliveries struct {
	db *gorm.DB
}

func NewDeliveries(db *gorm.DB) *Deliveries {
	return &Deliveries{db: db}
}

// Enqueue creates one DeliveryRequest per inbox in a single statement.
func (d *Deliveries) Enqueue(sender *Actor, activityID string, body []byte, inboxes []string) error {
	if len(inboxes) == 0 {
		return nil
	}
	requests := algorithms.Map(inboxes, func(inbox string) *DeliveryRequest {
		return &DeliveryRequest{
			ActorID:    sender.ID,
			ActivityID: activityID,
			Inbox:      inbox,
			Body:       body,
		}
	})
	return d.db.Create(&requests).Error
}
