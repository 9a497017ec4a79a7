package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Prakhar2818/NGO-APP/internal/models"
	"github.com/Prakhar2818/NGO-APP/pkg/apperrors"
	"github.com/Prakhar2818/NGO-APP/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DonationService owns every donation status transition. All mutation of
// donation records goes through here; the only concurrency primitive it
// relies on is the store's atomic conditional update.
type DonationService struct {
	repo     DonationStore
	Notifier *NotifierService
}

// NewDonationService creates a new instance of DonationService.
func NewDonationService(repo DonationStore, notifier *NotifierService) *DonationService {
	return &DonationService{
		repo:     repo,
		Notifier: notifier,
	}
}

// CreateDonation persists a new PENDING donation owned by the calling
// restaurant and kicks off the notification fan-out. The fan-out runs in
// its own goroutine so the caller's response never waits on it, and its
// failures never unwind the donation write.
func (s *DonationService) CreateDonation(ctx context.Context, restaurantID primitive.ObjectID, donation *models.Donation) (*models.Donation, error) {
	if donation.FoodName == "" {
		return nil, fmt.Errorf("%w: food name is required", apperrors.ErrValidation)
	}
	if donation.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}
	if !donation.ExpiryTime.After(time.Now()) {
		return nil, fmt.Errorf("%w: expiry time must be in the future", apperrors.ErrValidation)
	}

	donation.RestaurantID = restaurantID
	donation.NgoID = nil
	donation.AcceptedAt = nil
	donation.PickedUpAt = nil

	created, err := s.repo.CreateDonation(ctx, donation)
	if err != nil {
		return nil, fmt.Errorf("failed to create donation: %v", err)
	}

	if s.Notifier != nil {
		go s.Notifier.NotifyNewDonation(created)
	}

	logger.Log.WithField("donation_id", created.ID.Hex()).Info("Donation created in service layer")
	return created, nil
}

// GetDonation retrieves a donation by its ID.
func (s *DonationService) GetDonation(ctx context.Context, id primitive.ObjectID) (*models.Donation, error) {
	donation, err := s.repo.GetDonationByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get donation: %v", err)
	}
	return donation, nil
}

// UpdateDonation applies a patch to a PENDING donation owned by the
// caller. Guard order is fixed: existence, then ownership, then state.
// A non-owner learns nothing beyond a 403 about a foreign donation.
func (s *DonationService) UpdateDonation(ctx context.Context, id, callerID primitive.ObjectID, patch *models.DonationPatch) (*models.Donation, error) {
	donation, err := s.GetDonation(ctx, id)
	if err != nil {
		return nil, err
	}
	if donation.RestaurantID != callerID {
		logger.Log.WithFields(map[string]interface{}{
			"donation_id": id.Hex(),
			"caller_id":   callerID.Hex(),
		}).Warn("Update attempt by non-owner")
		return nil, apperrors.ErrForbidden
	}
	if donation.Status != models.StatusPending {
		return nil, apperrors.ErrInvalidState
	}

	fields := bson.M{}
	if patch.FoodName != nil {
		fields["food_name"] = *patch.FoodName
	}
	if patch.Quantity != nil {
		if *patch.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
		}
		fields["quantity"] = *patch.Quantity
	}
	if patch.FoodType != nil {
		fields["food_type"] = *patch.FoodType
	}
	if patch.PickupAddress != nil {
		fields["pickup_address"] = *patch.PickupAddress
	}
	if patch.ExpiryTime != nil {
		if !patch.ExpiryTime.After(time.Now()) {
			return nil, fmt.Errorf("%w: expiry time must be in the future", apperrors.ErrValidation)
		}
		fields["expiry_time"] = *patch.ExpiryTime
	}
	if patch.Location != nil {
		fields["location"] = *patch.Location
	}
	if len(fields) == 0 {
		return donation, nil
	}

	updated, err := s.repo.UpdateDonation(ctx, id, fields)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// The donation left PENDING between the guard read and the
			// conditional write; the patch did not apply.
			return nil, apperrors.ErrInvalidState
		}
		return nil, fmt.Errorf("failed to update donation: %v", err)
	}

	logger.Log.WithField("donation_id", id.Hex()).Info("Donation updated in service layer")
	return updated, nil
}

// DeleteDonation removes a PENDING donation owned by the caller. Same
// guard chain as UpdateDonation.
func (s *DonationService) DeleteDonation(ctx context.Context, id, callerID primitive.ObjectID) error {
	donation, err := s.GetDonation(ctx, id)
	if err != nil {
		return err
	}
	if donation.RestaurantID != callerID {
		return apperrors.ErrForbidden
	}
	if donation.Status != models.StatusPending {
		return apperrors.ErrInvalidState
	}

	if err := s.repo.DeleteDonation(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.ErrInvalidState
		}
		return fmt.Errorf("failed to delete donation: %v", err)
	}

	logger.Log.WithField("donation_id", id.Hex()).Info("Donation deleted in service layer")
	return nil
}

// AcceptDonation claims a PENDING donation for an NGO. The claim is a
// single atomic conditional update at the store: of any number of
// concurrent callers exactly one succeeds, the rest get ErrConflict. No
// read happens before the write, so there is no window to race through.
func (s *DonationService) AcceptDonation(ctx context.Context, id, ngoID primitive.ObjectID) (*models.Donation, error) {
	donation, err := s.repo.AcceptDonation(ctx, id, ngoID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Missing donation and lost race are deliberately the same
			// answer, mirroring the single "cannot accept" outcome the
			// product shows NGOs.
			return nil, apperrors.ErrConflict
		}
		return nil, fmt.Errorf("failed to accept donation: %v", err)
	}
	return donation, nil
}

// MarkPickedUp completes the lifecycle for the claiming NGO. The state
// guard is checked before ownership so a non-claimant gets a stable
// answer that does not leak who holds the claim. The final write repeats
// both predicates atomically in case the record moved underneath us.
func (s *DonationService) MarkPickedUp(ctx context.Context, id, ngoID primitive.ObjectID) (*models.Donation, error) {
	donation, err := s.GetDonation(ctx, id)
	if err != nil {
		return nil, err
	}
	if donation.Status != models.StatusAccepted {
		return nil, apperrors.ErrInvalidState
	}
	if donation.NgoID == nil || *donation.NgoID != ngoID {
		return nil, apperrors.ErrForbidden
	}

	updated, err := s.repo.MarkPickedUp(ctx, id, ngoID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrInvalidState
		}
		return nil, fmt.Errorf("failed to mark donation picked up: %v", err)
	}

	logger.Log.WithField("donation_id", id.Hex()).Info("Donation picked up")
	return updated, nil
}

// GetRestaurantDonations returns all donations posted by a restaurant.
func (s *DonationService) GetRestaurantDonations(ctx context.Context, restaurantID primitive.ObjectID) ([]models.Donation, error) {
	donations, err := s.repo.GetDonationsByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch restaurant donations: %v", err)
	}
	return donations, nil
}

// GetNGOHistory returns all donations claimed by an NGO.
func (s *DonationService) GetNGOHistory(ctx context.Context, ngoID primitive.ObjectID) ([]models.Donation, error) {
	donations, err := s.repo.GetDonationsByNGO(ctx, ngoID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch NGO history: %v", err)
	}
	return donations, nil
}
