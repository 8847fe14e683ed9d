package bookingRepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"boxcric/database/repository"
	"boxcric/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newBooking() *models.Booking {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return &models.Booking{
		ID:          "b2",
		GroundID:    "g1",
		UserID:      "u1",
		BookingDate: "2025-06-10",
		TimeSlot:    models.TimeSlot{StartTime: "18:00", EndTime: "19:00"},
		Status:      models.BookingPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func commandNames(mt *mtest.T) []string {
	var names []string
	for _, evt := range mt.GetAllStartedEvents() {
		names = append(names, evt.CommandName)
	}
	return names
}

func TestGuardedInsert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("overlap reports conflicts and skips insert", func(mt *mtest.T) {
		repo := NewMongoBookingRepo(mt.DB)
		ns := mt.DB.Name() + ".bookings"
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "id", Value: "b1"}}),
		)

		err := repo.guardedInsert(context.Background(), newBooking())

		var conflict *repository.SlotConflictError
		require.True(mt, errors.As(err, &conflict), "got %v", err)
		assert.Equal(mt, []string{"b1"}, conflict.Conflicts)
		assert.ErrorIs(mt, err, repository.ErrSlotTaken)
		assert.Equal(mt, []string{"update", "find"}, commandNames(mt))
	})

	mt.Run("free window inserts", func(mt *mtest.T) {
		repo := NewMongoBookingRepo(mt.DB)
		ns := mt.DB.Name() + ".bookings"
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		require.NoError(mt, repo.guardedInsert(context.Background(), newBooking()))
		assert.Equal(mt, []string{"update", "find", "insert"}, commandNames(mt))
	})

	mt.Run("overlap query targets the same day and window", func(mt *mtest.T) {
		repo := NewMongoBookingRepo(mt.DB)
		ns := mt.DB.Name() + ".bookings"
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		require.NoError(mt, repo.guardedInsert(context.Background(), newBooking()))

		events := mt.GetAllStartedEvents()
		require.Len(mt, events, 3)
		find := events[1].Command
		assert.Equal(mt, "bookings", find.Lookup("find").StringValue())
		assert.Equal(mt, "g1", find.Lookup("filter", "groundId").StringValue())
		assert.Equal(mt, "2025-06-10", find.Lookup("filter", "bookingDate").StringValue())
		assert.Equal(mt, "19:00", find.Lookup("filter", "timeSlot.startTime", "$lt").StringValue())
		assert.Equal(mt, "18:00", find.Lookup("filter", "timeSlot.endTime", "$gt").StringValue())
		assert.Equal(mt, "slot_locks", events[0].Command.Lookup("update").StringValue())
	})
}

func TestMongoUpdateStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	at := time.Date(2025, 6, 1, 9, 5, 0, 0, time.UTC)
	confirm := models.StatusChange{From: models.BookingPending, To: models.BookingConfirmed, At: at}

	mt.Run("matches on the expected status", func(mt *mtest.T) {
		repo := NewMongoBookingRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "id", Value: "b1"},
			{Key: "status", Value: "confirmed"},
		}}))

		b, err := repo.UpdateStatus(context.Background(), "b1", confirm)
		require.NoError(mt, err)
		assert.Equal(mt, models.BookingConfirmed, b.Status)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)
		assert.Equal(mt, "b1", evt.Command.Lookup("query", "id").StringValue())
		assert.Equal(mt, "pending", evt.Command.Lookup("query", "status").StringValue())
		assert.Equal(mt, "confirmed", evt.Command.Lookup("update", "$set", "status").StringValue())
	})

	mt.Run("status moved on", func(mt *mtest.T) {
		repo := NewMongoBookingRepo(mt.DB)
		ns := mt.DB.Name() + ".bookings"
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "_id", Value: 1}, {Key: "n", Value: 1}}),
		)

		_, err := repo.UpdateStatus(context.Background(), "b1", confirm)
		assert.ErrorIs(mt, err, repository.ErrStatusChanged)
	})

	mt.Run("booking missing", func(mt *mtest.T) {
		repo := NewMongoBookingRepo(mt.DB)
		ns := mt.DB.Name() + ".bookings"
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		_, err := repo.UpdateStatus(context.Background(), "b1", confirm)
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}
