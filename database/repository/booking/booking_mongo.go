package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boxcric/database/repository"
	"boxcric/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func activeStatusFilter() bson.M {
	return bson.M{"$in": models.ActiveStatuses}
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &booking, nil
}

func (r *MongoBookingRepo) FindActiveByGroundAndDate(ctx context.Context, groundID, date string) ([]models.Booking, error) {
	return r.find(ctx, bson.M{
		"groundId":    groundID,
		"bookingDate": date,
		"status":      activeStatusFilter(),
	}, options.Find().SetSort(bson.D{{Key: "timeSlot.startTime", Value: 1}}))
}

func (r *MongoBookingRepo) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return r.find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *MongoBookingRepo) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	query := bson.M{}
	if filter.GroundID != "" {
		query["groundId"] = filter.GroundID
	}
	if filter.UserID != "" {
		query["userId"] = filter.UserID
	}
	if filter.BookingDate != "" {
		query["bookingDate"] = filter.BookingDate
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return r.find(ctx, query, options.Find().SetSort(bson.D{
		{Key: "bookingDate", Value: 1},
		{Key: "timeSlot.startTime", Value: 1},
	}))
}

func (r *MongoBookingRepo) FindPendingCreatedBefore(ctx context.Context, before time.Time) ([]models.Booking, error) {
	return r.find(ctx, bson.M{
		"status":    models.BookingPending,
		"createdAt": bson.M{"$lt": before},
	}, nil)
}

func (r *MongoBookingRepo) FindConfirmedUpTo(ctx context.Context, date string) ([]models.Booking, error) {
	return r.find(ctx, bson.M{
		"status":      models.BookingConfirmed,
		"bookingDate": bson.M{"$lte": date},
	}, nil)
}

func (r *MongoBookingRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) Insert(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) UpdateStatus(ctx context.Context, id string, change models.StatusChange) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Build the same document Apply would produce.
	var applied models.Booking
	change.Apply(&applied)

	set := bson.M{
		"status":    change.To,
		"updatedAt": change.At,
	}
	switch change.To {
	case models.BookingConfirmed:
		set["confirmedAt"] = applied.ConfirmedAt
	case models.BookingCompleted:
		set["completedAt"] = applied.CompletedAt
	case models.BookingCancelled:
		if change.Cancellation != nil {
			set["cancellation"] = change.Cancellation
		}
	}
	if change.PaymentStatus != "" {
		set["payment.status"] = change.PaymentStatus
		if applied.Payment.PaidAt != nil {
			set["payment.paidAt"] = applied.Payment.PaidAt
		}
	}

	filter := bson.M{"id": id, "status": change.From}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error updating booking %s: %w", id, err)
	}

	// Tell "gone" apart from "moved on".
	n, cerr := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if cerr != nil {
		return nil, fmt.Errorf("error updating booking %s: %w", id, cerr)
	}
	if n == 0 {
		return nil, repository.ErrNotFound
	}
	return nil, repository.ErrStatusChanged
}

func (r *MongoBookingRepo) SetPaymentOrder(ctx context.Context, id string, order models.BookingPayment, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{
		"payment.gateway":     order.Gateway,
		"payment.orderId":     order.OrderID,
		"payment.cancelToken": order.CancelToken,
		"payment.status":      string(models.OrderActive),
		"updatedAt":           at,
	}})
	if err != nil {
		return fmt.Errorf("error attaching payment order to booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
