package groundRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes used by ground lookups and listings.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Public listing: active grounds in a city, by price.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "location.cityId", Value: 1}, {Key: "price.perHour", Value: 1}},
			Options: options.Index().SetName("status_city_price_idx"),
		},
	}

	if _, err := db.Collection("grounds").Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create ground indexes: %w", err)
	}
	return nil
}
