// FILE: database/repository/booking/indexes.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes on the bookings and slot_locks collections.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	bookingIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Availability checks: ground + date + status, ordered by start.
		{
			Keys: bson.D{
				{Key: "groundId", Value: 1},
				{Key: "bookingDate", Value: 1},
				{Key: "status", Value: 1},
				{Key: "timeSlot.startTime", Value: 1},
			},
			Options: options.Index().SetName("ground_date_status_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_created_idx"),
		},
		// Lifecycle sweeps.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("status_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "payment.orderId", Value: 1}},
			Options: options.Index().SetName("payment_order_idx").SetSparse(true),
		},
	}
	if _, err := db.Collection("bookings").Indexes().CreateMany(ctx, bookingIndexes); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}

	lockIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "groundId", Value: 1}, {Key: "bookingDate", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("ground_date_lock_idx"),
	}
	if _, err := db.Collection("slot_locks").Indexes().CreateOne(ctx, lockIndex); err != nil {
		return fmt.Errorf("failed to create slot lock index: %w", err)
	}
	return nil
}
