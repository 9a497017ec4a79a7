package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Donation lifecycle statuses.
const (
	StatusPending  = "PENDING"
	StatusAccepted = "ACCEPTED"
	StatusPickedUp = "PICKED_UP"
)

// Food type values accepted on a donation.
const (
	FoodTypeVeg    = "vegetarian"
	FoodTypeNonVeg = "non-vegetarian"
	FoodTypeBoth   = "both"
)

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude],
// matching the order Mongo expects for 2dsphere queries.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from a longitude/latitude pair.
func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Donation represents a surplus-food offer posted by a restaurant.
// RestaurantID is set at creation and never changes; NgoID is set only
// when an NGO wins the accept race.
type Donation struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FoodName      string              `bson:"food_name" json:"food_name"`
	Quantity      int                 `bson:"quantity" json:"quantity"`
	FoodType      string              `bson:"food_type,omitempty" json:"food_type,omitempty"`
	PickupAddress string              `bson:"pickup_address" json:"pickup_address"`
	ExpiryTime    time.Time           `bson:"expiry_time" json:"expiry_time"`
	Location      GeoPoint            `bson:"location" json:"location"`
	Status        string              `bson:"status" json:"status"`
	RestaurantID  primitive.ObjectID  `bson:"restaurant_id" json:"restaurant_id"`
	NgoID         *primitive.ObjectID `bson:"ngo_id,omitempty" json:"ngo_id,omitempty"`
	AcceptedAt    *time.Time          `bson:"accepted_at,omitempty" json:"accepted_at,omitempty"`
	PickedUpAt    *time.Time          `bson:"picked_up_at,omitempty" json:"picked_up_at,omitempty"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `bson:"updated_at" json:"updated_at"`
}

// DonationPatch carries the fields a restaurant may change while the
// donation is still PENDING. Nil fields are left untouched.
type DonationPatch struct {
	FoodName      *string    `json:"food_name,omitempty"`
	Quantity      *int       `json:"quantity,omitempty"`
	FoodType      *string    `json:"food_type,omitempty"`
	PickupAddress *string    `json:"pickup_address,omitempty"`
	ExpiryTime    *time.Time `json:"expiry_time,omitempty"`
	Location      *GeoPoint  `json:"location,omitempty"`
}

// BrowseFilter narrows the geo-proximity browse query. Status is always
// pinned to PENDING by the service.
type BrowseFilter struct {
	FoodType string
	MaxHours int
}

// RestaurantInfo is the display metadata joined onto browse results.
type RestaurantInfo struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Name    string             `bson:"name" json:"name"`
	Address string             `bson:"address,omitempty" json:"address,omitempty"`
}

// BrowseDonation is one browse result: the donation, the restaurant it
// belongs to, the straight-line distance from the geo query, and an
// optional driving-route annotation.
type BrowseDonation struct {
	Donation   `bson:",inline"`
	Restaurant RestaurantInfo `bson:"restaurant" json:"restaurant"`
	DistanceM  float64        `bson:"distance" json:"distance_m"`
	Route      *RouteInfo     `bson:"-" json:"route,omitempty"`
}

// RouteInfo is the driving-route annotation from the routing service.
type RouteInfo struct {
	DistanceKm float64      `json:"distance_km"`
	Geometry   [][2]float64 `json:"geometry"`
}

// DonationEvent is the ephemeral payload broadcast to connected NGO
// sessions when a new donation is created.
type DonationEvent struct {
	ID             primitive.ObjectID `json:"id"`
	FoodName       string             `json:"food_name"`
	Quantity       int                `json:"quantity"`
	FoodType       string             `json:"food_type,omitempty"`
	ExpiryTime     time.Time          `json:"expiry_time"`
	RestaurantName string             `json:"restaurant_name"`
}
