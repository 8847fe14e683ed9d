// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"time"

	"boxcric/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingRepository is the persistence contract for bookings. Bookings are
// never deleted; cancellation is a status change.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// FindActiveByGroundAndDate returns pending and confirmed bookings.
	FindActiveByGroundAndDate(ctx context.Context, groundID, date string) ([]models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)

	// Insert stores a booking without looking at other bookings.
	Insert(ctx context.Context, booking *models.Booking) error
	// InsertIfAvailable re-checks the window and stores the booking in one
	// atomic step. It returns a *repository.SlotConflictError when an active
	// booking overlaps.
	InsertIfAvailable(ctx context.Context, booking *models.Booking) error

	// UpdateStatus applies change only while the booking is in change.From.
	UpdateStatus(ctx context.Context, id string, change models.StatusChange) (*models.Booking, error)
	// SetPaymentOrder records the gateway, order id and cancel token of order
	// and marks the payment active.
	SetPaymentOrder(ctx context.Context, id string, order models.BookingPayment, at time.Time) error

	FindPendingCreatedBefore(ctx context.Context, before time.Time) ([]models.Booking, error)
	// FindConfirmedUpTo returns confirmed bookings dated on or before date.
	FindConfirmedUpTo(ctx context.Context, date string) ([]models.Booking, error)
}

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll  *mongo.Collection
	locks *mongo.Collection
}

// NewMongoBookingRepo constructs a MongoDB BookingRepository on db.
// Guarded inserts use multi-document transactions, so the deployment must be
// a replica set (Atlas clusters are).
func NewMongoBookingRepo(db *mongo.Database) *MongoBookingRepo {
	return &MongoBookingRepo{
		coll:  db.Collection("bookings"),
		locks: db.Collection("slot_locks"),
	}
}
