package services

import (
	"context"
	"time"

	"github.com/Prakhar2818/NGO-APP/internal/models"
	"github.com/Prakhar2818/NGO-APP/internal/routing"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DonationStore is the persistence contract the donation services depend
// on. *repository.DonationRepository is the Mongo implementation; tests
// substitute an in-memory one.
type DonationStore interface {
	CreateDonation(ctx context.Context, donation *models.Donation) (*models.Donation, error)
	GetDonationByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error)

	// UpdateDonation and DeleteDonation only apply while the donation is
	// still PENDING; the predicate is part of the store-level filter and a
	// miss is reported as mongo.ErrNoDocuments.
	UpdateDonation(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Donation, error)
	DeleteDonation(ctx context.Context, id primitive.ObjectID) error

	// AcceptDonation and MarkPickedUp are atomic conditional updates: the
	// lifecycle predicate is part of the store-level filter, and a miss is
	// reported as mongo.ErrNoDocuments.
	AcceptDonation(ctx context.Context, id, ngoID primitive.ObjectID) (*models.Donation, error)
	MarkPickedUp(ctx context.Context, id, ngoID primitive.ObjectID) (*models.Donation, error)

	FindNearby(ctx context.Context, location models.GeoPoint, filter models.BrowseFilter) ([]models.BrowseDonation, error)
	GetDonationsByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) ([]models.Donation, error)
	GetDonationsByNGO(ctx context.Context, ngoID primitive.ObjectID) ([]models.Donation, error)
	GetExpiringPending(ctx context.Context, window time.Duration) ([]models.Donation, error)
}

// ActorDirectory resolves user records. Read-only from this core.
type ActorDirectory interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUsersByRole(ctx context.Context, role string) ([]models.User, error)
}

// NotificationStore persists the in-app notification feed.
type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id primitive.ObjectID) error
	DeleteExpiredNotifications(ctx context.Context) error
}

// Broadcaster pushes an event to all currently-connected NGO sessions.
// Delivery is best-effort and at-most-once.
type Broadcaster interface {
	Publish(event models.DonationEvent)
}

// EmailSender delivers one message. Failures are per-recipient.
type EmailSender interface {
	Send(to, subject, body string) error
}

// RouteFinder returns driving distance and geometry between two points.
type RouteFinder interface {
	Route(ctx context.Context, from, to routing.Coordinate) (*models.RouteInfo, error)
}
