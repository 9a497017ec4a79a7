package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Prakhar2818/NGO-APP/internal/models"
	"github.com/Prakhar2818/NGO-APP/pkg/logger"
)

const notifyTimeout = 30 * time.Second

// NotifierService fans a new-donation event out to every eligible NGO
// over three channels: the real-time broadcast, the persisted in-app
// feed, and best-effort email. It always runs after the donation write
// has committed and none of its failures propagate back.
type NotifierService struct {
	repo        DonationStore
	users       ActorDirectory
	notifs      NotificationStore
	broadcaster Broadcaster
	email       EmailSender
}

// NewNotifierService creates a new instance of NotifierService.
func NewNotifierService(repo DonationStore, users ActorDirectory, notifs NotificationStore, broadcaster Broadcaster, email EmailSender) *NotifierService {
	return &NotifierService{
		repo:        repo,
		users:       users,
		notifs:      notifs,
		broadcaster: broadcaster,
		email:       email,
	}
}

// NotifyNewDonation broadcasts and emails a freshly created donation to
// all registered NGOs. It is called from a goroutine after CreateDonation
// returns, so it builds its own bounded context instead of borrowing the
// request's.
func (s *NotifierService) NotifyNewDonation(donation *models.Donation) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	restaurantName := "Restaurant"
	if restaurant, err := s.users.GetUserByID(ctx, donation.RestaurantID); err == nil {
		restaurantName = restaurant.DisplayName()
	} else {
		logger.Log.WithError(err).Warn("Failed to resolve restaurant for notification")
	}

	event := models.DonationEvent{
		ID:             donation.ID,
		FoodName:       donation.FoodName,
		Quantity:       donation.Quantity,
		FoodType:       donation.FoodType,
		ExpiryTime:     donation.ExpiryTime,
		RestaurantName: restaurantName,
	}
	if s.broadcaster != nil {
		s.broadcaster.Publish(event)
	}

	ngos, err := s.users.GetUsersByRole(ctx, models.RoleNGO)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to resolve NGO list for donation fan-out")
		return
	}
	if len(ngos) == 0 {
		return
	}

	subject := "New Food Donation Available"
	body := fmt.Sprintf(`Hi,

New Donation available by %s

Donation Details:
Food Name: %s
Quantity: %d
Food Type: %s
Expiry Time: %s

Please login to your dashboard to accept this donation.

Thank You,
NGO Food
`, restaurantName, donation.FoodName, donation.Quantity, donation.FoodType, donation.ExpiryTime.Format(time.RFC1123))

	var wg sync.WaitGroup
	for _, ngo := range ngos {
		if s.notifs != nil {
			notif := &models.Notification{
				UserID:     ngo.ID,
				Type:       "new_donation",
				Title:      subject,
				Message:    fmt.Sprintf("%s posted %d meals (%s)", restaurantName, donation.Quantity, donation.FoodName),
				DonationID: &donation.ID,
			}
			if err := s.notifs.CreateNotification(ctx, notif); err != nil {
				logger.Log.WithError(err).Warnf("Failed to persist notification for NGO %s", ngo.ID.Hex())
			}
		}

		if s.email == nil || ngo.Email == "" {
			continue
		}
		wg.Add(1)
		go func(to string) {
			defer wg.Done()
			if err := s.email.Send(to, subject, body); err != nil {
				// One recipient failing must not affect the others.
				logger.Log.WithError(err).Warnf("Failed to send donation email to %s", to)
			}
		}(ngo.Email)
	}
	wg.Wait()

	logger.Log.WithFields(map[string]interface{}{
		"donation_id": donation.ID.Hex(),
		"ngo_count":   len(ngos),
	}).Info("Donation fan-out completed")
}

// NotifyExpiringDonations reminds restaurants about PENDING donations
// that expire within the next hour. Invoked hourly by cron.
func (s *NotifierService) NotifyExpiringDonations(ctx context.Context) error {
	donations, err := s.repo.GetExpiringPending(ctx, time.Hour)
	if err != nil {
		return fmt.Errorf("failed to fetch expiring donations: %v", err)
	}

	for _, donation := range donations {
		restaurant, err := s.users.GetUserByID(ctx, donation.RestaurantID)
		if err != nil {
			logger.Log.WithError(err).Warnf("Failed to resolve restaurant %s for expiry reminder", donation.RestaurantID.Hex())
			continue
		}

		donationID := donation.ID
		if s.notifs != nil {
			notif := &models.Notification{
				UserID:     restaurant.ID,
				Type:       "donation_expiring",
				Title:      "Donation Expiring Soon",
				Message:    fmt.Sprintf("Your donation \"%s\" expires at %s and has not been accepted yet.", donation.FoodName, donation.ExpiryTime.Format("15:04")),
				DonationID: &donationID,
			}
			if err := s.notifs.CreateNotification(ctx, notif); err != nil {
				logger.Log.WithError(err).Warn("Failed to persist expiry notification")
			}
		}

		if s.email != nil && restaurant.Email != "" {
			body := fmt.Sprintf("Your donation \"%s\" (%d meals) expires at %s and no NGO has accepted it yet.",
				donation.FoodName, donation.Quantity, donation.ExpiryTime.Format(time.RFC1123))
			if err := s.email.Send(restaurant.Email, "Donation Expiring Soon", body); err != nil {
				logger.Log.WithError(err).Warnf("Failed to send expiry email to %s", restaurant.Email)
			}
		}
	}

	return nil
}

// CleanupExpiredNotifications deletes old feed entries. Invoked daily by cron.
func (s *NotifierService) CleanupExpiredNotifications(ctx context.Context) error {
	if s.notifs == nil {
		return nil
	}
	return s.notifs.DeleteExpiredNotifications(ctx)
}
