package services

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/Prakhar2818/NGO-APP/internal/models"
	"github.com/Prakhar2818/NGO-APP/internal/routing"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// fakeDonationStore is an in-memory DonationStore. A single mutex gives
// it the same atomicity the Mongo conditional updates provide.
type fakeDonationStore struct {
	mu        sync.Mutex
	donations map[primitive.ObjectID]*models.Donation
	users     map[primitive.ObjectID]*models.User
}

func newFakeDonationStore() *fakeDonationStore {
	return &fakeDonationStore{
		donations: make(map[primitive.ObjectID]*models.Donation),
		users:     make(map[primitive.ObjectID]*models.User),
	}
}

func (f *fakeDonationStore) clone(d *models.Donation) *models.Donation {
	copied := *d
	if d.NgoID != nil {
		ngoID := *d.NgoID
		copied.NgoID = &ngoID
	}
	if d.AcceptedAt != nil {
		t := *d.AcceptedAt
		copied.AcceptedAt = &t
	}
	if d.PickedUpAt != nil {
		t := *d.PickedUpAt
		copied.PickedUpAt = &t
	}
	return &copied
}

func (f *fakeDonationStore) CreateDonation(ctx context.Context, donation *models.Donation) (*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	donation.ID = primitive.NewObjectID()
	donation.Status = models.StatusPending
	donation.CreatedAt = time.Now()
	donation.UpdatedAt = time.Now()
	f.donations[donation.ID] = f.clone(donation)
	return donation, nil
}

func (f *fakeDonationStore) GetDonationByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	donation, ok := f.donations[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return f.clone(donation), nil
}

func (f *fakeDonationStore) UpdateDonation(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	donation, ok := f.donations[id]
	if !ok || donation.Status != models.StatusPending {
		return nil, mongo.ErrNoDocuments
	}
	for key, value := range fields {
		switch key {
		case "food_name":
			donation.FoodName = value.(string)
		case "quantity":
			donation.Quantity = value.(int)
		case "food_type":
			donation.FoodType = value.(string)
		case "pickup_address":
			donation.PickupAddress = value.(string)
		case "expiry_time":
			donation.ExpiryTime = value.(time.Time)
		case "location":
			donation.Location = value.(models.GeoPoint)
		}
	}
	donation.UpdatedAt = time.Now()
	return f.clone(donation), nil
}

func (f *fakeDonationStore) DeleteDonation(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	donation, ok := f.donations[id]
	if !ok || donation.Status != models.StatusPending {
		return mongo.ErrNoDocuments
	}
	delete(f.donations, id)
	return nil
}

func (f *fakeDonationStore) AcceptDonation(ctx context.Context, id, ngoID primitive.ObjectID) (*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	donation, ok := f.donations[id]
	if !ok || donation.Status != models.StatusPending {
		return nil, mongo.ErrNoDocuments
	}
	now := time.Now()
	donation.Status = models.StatusAccepted
	donation.NgoID = &ngoID
	donation.AcceptedAt = &now
	donation.UpdatedAt = now
	return f.clone(donation), nil
}

func (f *fakeDonationStore) MarkPickedUp(ctx context.Context, id, ngoID primitive.ObjectID) (*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	donation, ok := f.donations[id]
	if !ok || donation.Status != models.StatusAccepted || donation.NgoID == nil || *donation.NgoID != ngoID {
		return nil, mongo.ErrNoDocuments
	}
	now := time.Now()
	donation.Status = models.StatusPickedUp
	donation.PickedUpAt = &now
	donation.UpdatedAt = now
	return f.clone(donation), nil
}

func (f *fakeDonationStore) FindNearby(ctx context.Context, location models.GeoPoint, filter models.BrowseFilter) ([]models.BrowseDonation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	var results []models.BrowseDonation
	for _, donation := range f.donations {
		if donation.Status != models.StatusPending {
			continue
		}
		if filter.FoodType != "" && donation.FoodType != filter.FoodType {
			continue
		}
		if filter.MaxHours > 0 {
			limit := now.Add(time.Duration(filter.MaxHours) * time.Hour)
			if donation.ExpiryTime.Before(now) || donation.ExpiryTime.After(limit) {
				continue
			}
		}

		entry := models.BrowseDonation{
			Donation:  *f.clone(donation),
			DistanceM: planarDistance(location, donation.Location),
		}
		if user, ok := f.users[donation.RestaurantID]; ok {
			entry.Restaurant = models.RestaurantInfo{ID: user.ID, Name: user.DisplayName(), Address: user.Address}
		}
		results = append(results, entry)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].DistanceM < results[j].DistanceM })
	return results, nil
}

func (f *fakeDonationStore) GetDonationsByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) ([]models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var donations []models.Donation
	for _, donation := range f.donations {
		if donation.RestaurantID == restaurantID {
			donations = append(donations, *f.clone(donation))
		}
	}
	return donations, nil
}

func (f *fakeDonationStore) GetDonationsByNGO(ctx context.Context, ngoID primitive.ObjectID) ([]models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var donations []models.Donation
	for _, donation := range f.donations {
		if donation.NgoID != nil && *donation.NgoID == ngoID {
			donations = append(donations, *f.clone(donation))
		}
	}
	return donations, nil
}

func (f *fakeDonationStore) GetExpiringPending(ctx context.Context, window time.Duration) ([]models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	var donations []models.Donation
	for _, donation := range f.donations {
		if donation.Status != models.StatusPending {
			continue
		}
		if donation.ExpiryTime.After(now) && !donation.ExpiryTime.After(now.Add(window)) {
			donations = append(donations, *f.clone(donation))
		}
	}
	return donations, nil
}

// planarDistance is good enough for ordering fake results.
func planarDistance(a, b models.GeoPoint) float64 {
	if len(a.Coordinates) != 2 || len(b.Coordinates) != 2 {
		return math.MaxFloat64
	}
	dx := a.Coordinates[0] - b.Coordinates[0]
	dy := a.Coordinates[1] - b.Coordinates[1]
	return math.Sqrt(dx*dx + dy*dy)
}

// fakeDirectory is an in-memory ActorDirectory sharing the store's users map.
type fakeDirectory struct {
	store *fakeDonationStore
}

func (f *fakeDirectory) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	user, ok := f.store.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *user
	return &copied, nil
}

func (f *fakeDirectory) GetUsersByRole(ctx context.Context, role string) ([]models.User, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var users []models.User
	for _, user := range f.store.users {
		if user.Role == role && !user.IsBlocked {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (f *fakeDonationStore) addUser(user *models.User) primitive.ObjectID {
	f.mu.Lock()
	defer f.mu.Unlock()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	f.users[user.ID] = user
	return user.ID
}

// fakeNotificationStore records feed writes.
type fakeNotificationStore struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func (f *fakeNotificationStore) CreateNotification(ctx context.Context, notif *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	notif.ID = primitive.NewObjectID()
	notif.CreatedAt = time.Now()
	f.notifications = append(f.notifications, *notif)
	return nil
}

func (f *fakeNotificationStore) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].ID == id {
			f.notifications[i].Read = true
		}
	}
	return nil
}

func (f *fakeNotificationStore) DeleteExpiredNotifications(ctx context.Context) error {
	return nil
}

func (f *fakeNotificationStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notifications)
}

// fakeBroadcaster records published events.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []models.DonationEvent
}

func (f *fakeBroadcaster) Publish(event models.DonationEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeBroadcaster) eventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// fakeEmailSender records sends and can fail selected recipients.
type fakeEmailSender struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]error
}

func newFakeEmailSender() *fakeEmailSender {
	return &fakeEmailSender{failFor: make(map[string]error)}
}

func (f *fakeEmailSender) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[to]; ok {
		return err
	}
	f.sent = append(f.sent, to)
	return nil
}

func (f *fakeEmailSender) recipients() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	copy(out, f.sent)
	return out
}

// fakeRouteFinder returns a fixed route or an error per destination.
type fakeRouteFinder struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeRouteFinder) Route(ctx context.Context, from, to routing.Coordinate) (*models.RouteInfo, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return &models.RouteInfo{
		DistanceKm: 4.2,
		Geometry:   [][2]float64{{from.Lng, from.Lat}, {to.Lng, to.Lat}},
	}, nil
}
