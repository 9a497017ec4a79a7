package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleRestaurant = "RESTAURANT"
	RoleNGO        = "NGO"
	RoleAdmin      = "ADMIN"
)

// User is an actor account (restaurant, NGO or admin). The donation core
// only reads these records; registration and profile management live in
// the auth service.
type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"email"`
	Role             string             `bson:"role" json:"role"`
	OrganizationName string             `bson:"organization_name,omitempty" json:"organization_name,omitempty"`
	RestaurantName   string             `bson:"restaurant_name,omitempty" json:"restaurant_name,omitempty"`
	Address          string             `bson:"address,omitempty" json:"address,omitempty"`
	IsBlocked        bool               `bson:"is_blocked" json:"is_blocked"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// DisplayName prefers the public-facing organization or restaurant name
// over the account holder's name.
func (u *User) DisplayName() string {
	switch u.Role {
	case RoleRestaurant:
		if u.RestaurantName != "" {
			return u.RestaurantName
		}
	case RoleNGO:
		if u.OrganizationName != "" {
			return u.OrganizationName
		}
	}
	return u.Name
}
