package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"boxcric/database/repository"
	"boxcric/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertIfAvailable serialises writers per ground and date through a lock
// document in slot_locks. Every guarded insert bumps the lock inside its
// transaction, so two concurrent inserts for the same day hit a write
// conflict and the loser is retried by WithTransaction. On retry it sees the
// winner's booking and reports the overlap.
func (r *MongoBookingRepo) InsertIfAvailable(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	sess, err := r.coll.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, r.guardedInsert(sc, booking)
	})
	if err != nil {
		return fmt.Errorf("booking transaction failed: %w", err)
	}
	return nil
}

// guardedInsert bumps the day's lock, then inserts the booking unless an
// active booking overlaps it. ctx carries the transaction session.
func (r *MongoBookingRepo) guardedInsert(ctx context.Context, booking *models.Booking) error {
	lockFilter := bson.M{"groundId": booking.GroundID, "bookingDate": booking.BookingDate}
	lockUpdate := bson.M{
		"$inc": bson.M{"version": 1},
		"$set": bson.M{"updatedAt": booking.CreatedAt},
	}
	if _, err := r.locks.UpdateOne(ctx, lockFilter, lockUpdate, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("acquire slot lock: %w", err)
	}

	cursor, err := r.coll.Find(ctx, bson.M{
		"groundId":           booking.GroundID,
		"bookingDate":        booking.BookingDate,
		"status":             activeStatusFilter(),
		"timeSlot.startTime": bson.M{"$lt": booking.TimeSlot.EndTime},
		"timeSlot.endTime":   bson.M{"$gt": booking.TimeSlot.StartTime},
	}, options.Find().SetProjection(bson.M{"id": 1}))
	if err != nil {
		return fmt.Errorf("find overlapping bookings: %w", err)
	}
	var overlapping []struct {
		ID string `bson:"id"`
	}
	if err := cursor.All(ctx, &overlapping); err != nil {
		return fmt.Errorf("decode overlapping bookings: %w", err)
	}
	if len(overlapping) > 0 {
		conflict := &repository.SlotConflictError{}
		for _, o := range overlapping {
			conflict.Conflicts = append(conflict.Conflicts, o.ID)
		}
		return conflict
	}

	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("insert booking failed: %w", err)
	}
	return nil
}
