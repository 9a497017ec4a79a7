package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Prakhar2818/NGO-APP/internal/config"
	"github.com/Prakhar2818/NGO-APP/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB connects to MongoDB and ensures the indexes the donation
// queries rely on.
func ConnectDB(cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %v", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %v", err)
	}

	db := client.Database(cfg.DBName)
	if err := ensureIndexes(ctx, db); err != nil {
		return nil, err
	}

	logger.Log.WithField("database", cfg.DBName).Info("Connected to MongoDB")
	return db, nil
}

// ensureIndexes creates the 2dsphere index the $geoNear browse query
// needs, plus a status index for the lifecycle filters.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	donations := db.Collection("donations")

	_, err := donations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expiry_time", Value: 1}}},
		{Keys: bson.D{{Key: "restaurant_id", Value: 1}}},
		{Keys: bson.D{{Key: "ngo_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create donation indexes: %v", err)
	}

	return nil
}
