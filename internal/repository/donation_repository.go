package repository

import (
	"context"
	"time"

	"github.com/Prakhar2818/NGO-APP/internal/models"
	"github.com/Prakhar2818/NGO-APP/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DonationRepository handles database operations related to donations.
type DonationRepository struct {
	collection *mongo.Collection
}

// NewDonationRepository creates a new instance of DonationRepository.
func NewDonationRepository(db *mongo.Database) *DonationRepository {
	return &DonationRepository{
		collection: db.Collection("donations"),
	}
}

// CreateDonation inserts a new donation in PENDING state.
func (r *DonationRepository) CreateDonation(ctx context.Context, donation *models.Donation) (*models.Donation, error) {
	donation.Status = models.StatusPending
	donation.CreatedAt = time.Now()
	donation.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, donation)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert donation")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted donation ID")
		return nil, mongo.ErrNilDocument
	}
	donation.ID = insertedID

	logger.Log.WithField("donation_id", donation.ID.Hex()).Info("Donation created successfully")
	return donation, nil
}

// GetDonationByID fetches a donation by its ID.
func (r *DonationRepository) GetDonationByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error) {
	var donation models.Donation

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&donation)
	if err != nil {
		logger.Log.WithError(err).WithField("donation_id", id.Hex()).Warn("Failed to find donation by ID")
		return nil, err
	}

	return &donation, nil
}

// UpdateDonation applies a $set patch to a donation that is still
// PENDING. The status predicate rides in the filter, so a claim landing
// between the service's guard read and this write cannot be overwritten:
// the write simply misses and surfaces mongo.ErrNoDocuments.
func (r *DonationRepository) UpdateDonation(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Donation, error) {
	fields["updated_at"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Donation
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "status": models.StatusPending},
		bson.M{"$set": fields},
		opts,
	).Decode(&updated)
	if err != nil {
		logger.Log.WithError(err).WithField("donation_id", id.Hex()).Warn("Donation update did not apply")
		return nil, err
	}

	logger.Log.WithField("donation_id", id.Hex()).Info("Donation updated successfully")
	return &updated, nil
}

// DeleteDonation removes a donation that is still PENDING. Same filter
// discipline as UpdateDonation: a donation claimed in the meantime is
// left untouched and the miss surfaces as mongo.ErrNoDocuments.
func (r *DonationRepository) DeleteDonation(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "status": models.StatusPending})
	if err != nil {
		logger.Log.WithError(err).WithField("donation_id", id.Hex()).Error("Failed to delete donation")
		return err
	}
	if result.DeletedCount == 0 {
		logger.Log.WithField("donation_id", id.Hex()).Warn("Donation delete did not apply")
		return mongo.ErrNoDocuments
	}

	logger.Log.WithField("donation_id", id.Hex()).Info("Donation deleted successfully")
	return nil
}

// AcceptDonation atomically claims a PENDING donation for an NGO. The
// status predicate is part of the update filter, so two NGOs racing on
// the same donation cannot both succeed: the loser gets
// mongo.ErrNoDocuments.
func (r *DonationRepository) AcceptDonation(ctx context.Context, id, ngoID primitive.ObjectID) (*models.Donation, error) {
	now := time.Now()
	filter := bson.M{"_id": id, "status": models.StatusPending}
	update := bson.M{"$set": bson.M{
		"status":      models.StatusAccepted,
		"ngo_id":      ngoID,
		"accepted_at": now,
		"updated_at":  now,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var donation models.Donation
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&donation)
	if err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"donation_id": id.Hex(),
			"ngo_id":      ngoID.Hex(),
		}).Warn("Donation claim did not apply")
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"donation_id": id.Hex(),
		"ngo_id":      ngoID.Hex(),
	}).Info("Donation accepted")
	return &donation, nil
}

// MarkPickedUp atomically moves an ACCEPTED donation claimed by ngoID to
// PICKED_UP. The filter repeats the state and ownership predicates so a
// stale read can never regress the lifecycle.
func (r *DonationRepository) MarkPickedUp(ctx context.Context, id, ngoID primitive.ObjectID) (*models.Donation, error) {
	now := time.Now()
	filter := bson.M{"_id": id, "status": models.StatusAccepted, "ngo_id": ngoID}
	update := bson.M{"$set": bson.M{
		"status":       models.StatusPickedUp,
		"picked_up_at": now,
		"updated_at":   now,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var donation models.Donation
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&donation)
	if err != nil {
		logger.Log.WithError(err).WithField("donation_id", id.Hex()).Warn("Pickup update did not apply")
		return nil, err
	}

	logger.Log.WithField("donation_id", id.Hex()).Info("Donation marked as picked up")
	return &donation, nil
}

// FindNearby runs the geo-proximity browse query: nearest-first $geoNear
// seeded at the NGO location, filtered to PENDING donations, joined with
// the owning restaurant's display metadata.
func (r *DonationRepository) FindNearby(ctx context.Context, location models.GeoPoint, filter models.BrowseFilter) ([]models.BrowseDonation, error) {
	match := bson.M{"status": models.StatusPending}
	if filter.FoodType != "" {
		match["food_type"] = filter.FoodType
	}
	if filter.MaxHours > 0 {
		now := time.Now()
		match["expiry_time"] = bson.M{
			"$gte": now,
			"$lte": now.Add(time.Duration(filter.MaxHours) * time.Hour),
		}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.M{
			"near":          location,
			"distanceField": "distance",
			"spherical":     true,
		}}},
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "restaurant_id",
			"foreignField": "_id",
			"as":           "restaurant",
		}}},
		{{Key: "$unwind", Value: "$restaurant"}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to run browse aggregation")
		return nil, err
	}
	defer cursor.Close(ctx)

	var donations []models.BrowseDonation
	if err := cursor.All(ctx, &donations); err != nil {
		logger.Log.WithError(err).Error("Failed to decode browse results")
		return nil, err
	}

	logger.Log.WithField("count", len(donations)).Info("Browse query executed")
	return donations, nil
}

// GetDonationsByRestaurant fetches all donations posted by a restaurant,
// newest first.
func (r *DonationRepository) GetDonationsByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) ([]models.Donation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"restaurant_id": restaurantID}, opts)
	if err != nil {
		logger.Log.WithError(err).WithField("restaurant_id", restaurantID.Hex()).Error("Failed to fetch restaurant donations")
		return nil, err
	}
	defer cursor.Close(ctx)

	var donations []models.Donation
	if err := cursor.All(ctx, &donations); err != nil {
		return nil, err
	}
	return donations, nil
}

// GetDonationsByNGO fetches all donations claimed by an NGO, most
// recently accepted first.
func (r *DonationRepository) GetDonationsByNGO(ctx context.Context, ngoID primitive.ObjectID) ([]models.Donation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "accepted_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"ngo_id": ngoID}, opts)
	if err != nil {
		logger.Log.WithError(err).WithField("ngo_id", ngoID.Hex()).Error("Failed to fetch NGO donations")
		return nil, err
	}
	defer cursor.Close(ctx)

	var donations []models.Donation
	if err := cursor.All(ctx, &donations); err != nil {
		return nil, err
	}
	return donations, nil
}

// GetExpiringPending returns PENDING donations whose expiry falls inside
// (now, now+window]. Used by the hourly expiry sweep.
func (r *DonationRepository) GetExpiringPending(ctx context.Context, window time.Duration) ([]models.Donation, error) {
	now := time.Now()
	filter := bson.M{
		"status":      models.StatusPending,
		"expiry_time": bson.M{"$gt": now, "$lte": now.Add(window)},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch expiring donations")
		return nil, err
	}
	defer cursor.Close(ctx)

	var donations []models.Donation
	if err := cursor.All(ctx, &donations); err != nil {
		return nil, err
	}
	return donations, nil
}
