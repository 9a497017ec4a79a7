package services

import (
	"context"
	"testing"
	"time"

	"github.com/Prakhar2818/NGO-APP/internal/models"
	"github.com/Prakhar2818/NGO-APP/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seedBrowseData(t *testing.T, service *DonationService, store *fakeDonationStore) (near, far, nonVeg *models.Donation) {
	t.Helper()
	restaurantID := store.addUser(&models.User{
		Name:           "Green Leaf",
		RestaurantName: "Green Leaf Kitchen",
		Email:          "kitchen@greenleaf.test",
		Role:           models.RoleRestaurant,
	})

	mk := func(name, foodType string, lng, lat float64, expiry time.Duration) *models.Donation {
		d := &models.Donation{
			FoodName:      name,
			Quantity:      10,
			FoodType:      foodType,
			PickupAddress: "somewhere",
			ExpiryTime:    time.Now().Add(expiry),
			Location:      models.NewGeoPoint(lng, lat),
		}
		created, err := service.CreateDonation(context.Background(), restaurantID, d)
		require.NoError(t, err)
		return created
	}

	near = mk("Rice", models.FoodTypeVeg, 77.60, 12.97, 2*time.Hour)
	far = mk("Bread", models.FoodTypeVeg, 78.50, 13.80, 12*time.Hour)
	nonVeg = mk("Chicken Curry", models.FoodTypeNonVeg, 77.61, 12.96, 2*time.Hour)
	return near, far, nonVeg
}

func TestBrowseDonations_NearestFirstAndFilters(t *testing.T) {
	store := newFakeDonationStore()
	service := NewDonationService(store, nil)
	browse := NewBrowseService(store, &fakeRouteFinder{})
	near, far, nonVeg := seedBrowseData(t, service, store)

	results, err := browse.BrowseDonations(context.Background(), 12.97, 77.60, models.BrowseFilter{}, false)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, near.ID, results[0].ID)
	assert.Equal(t, "Green Leaf Kitchen", results[0].Restaurant.Name)

	// Food type filter.
	results, err = browse.BrowseDonations(context.Background(), 12.97, 77.60, models.BrowseFilter{FoodType: models.FoodTypeNonVeg}, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, nonVeg.ID, results[0].ID)

	// Expiry window: 3 hours excludes the 12-hour donation.
	results, err = browse.BrowseDonations(context.Background(), 12.97, 77.60, models.BrowseFilter{MaxHours: 3}, false)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, far.ID, r.ID)
	}
}

func TestBrowseDonations_ExcludesClaimed(t *testing.T) {
	store := newFakeDonationStore()
	service := NewDonationService(store, nil)
	browse := NewBrowseService(store, nil)
	near, _, _ := seedBrowseData(t, service, store)

	_, err := service.AcceptDonation(context.Background(), near.ID, primitive.NewObjectID())
	require.NoError(t, err)

	results, err := browse.BrowseDonations(context.Background(), 12.97, 77.60, models.BrowseFilter{}, false)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, near.ID, r.ID)
		assert.Equal(t, models.StatusPending, r.Status)
	}
}

func TestBrowseDonations_RouteAnnotation(t *testing.T) {
	store := newFakeDonationStore()
	service := NewDonationService(store, nil)
	finder := &fakeRouteFinder{}
	browse := NewBrowseService(store, finder)
	seedBrowseData(t, service, store)

	results, err := browse.BrowseDonations(context.Background(), 12.97, 77.60, models.BrowseFilter{}, true)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		require.NotNil(t, r.Route)
		assert.InDelta(t, 4.2, r.Route.DistanceKm, 0.001)
	}
	assert.Equal(t, 3, finder.calls)
}

func TestBrowseDonations_RouteFailureIsNonFatal(t *testing.T) {
	store := newFakeDonationStore()
	service := NewDonationService(store, nil)
	finder := &fakeRouteFinder{err: apperrors.ErrRouteUnavailable}
	browse := NewBrowseService(store, finder)
	seedBrowseData(t, service, store)

	results, err := browse.BrowseDonations(context.Background(), 12.97, 77.60, models.BrowseFilter{}, true)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Nil(t, r.Route)
	}
}

func TestBrowseDonations_InvalidCoordinates(t *testing.T) {
	store := newFakeDonationStore()
	browse := NewBrowseService(store, nil)

	_, err := browse.BrowseDonations(context.Background(), 95.0, 77.60, models.BrowseFilter{}, false)
	assert.Error(t, err)

	_, err = browse.BrowseDonations(context.Background(), 12.97, 240.0, models.BrowseFilter{}, false)
	assert.Error(t, err)
}
