package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is a persisted in-app notification. NGOs that were not
// connected when a donation was broadcast still see it in their feed.
type Notification struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Type       string              `bson:"type" json:"type"` // e.g. "new_donation", "donation_expiring"
	Title      string              `bson:"title" json:"title"`
	Message    string              `bson:"message" json:"message"`
	Read       bool                `bson:"read" json:"read"`
	DonationID *primitive.ObjectID `bson:"donation_id,omitempty" json:"donation_id,omitempty"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
	ExpiresAt  time.Time           `bson:"expires_at" json:"expires_at"`
}
