package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"boxcric/models"
	"boxcric/services/booking"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLifecycle struct {
	expired   []string
	completed []string
	sweeps    int
	err       error
}

func (f *fakeLifecycle) Expire(_ context.Context, id string) (*models.Booking, error) {
	f.expired = append(f.expired, id)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Booking{ID: id, Status: models.BookingCancelled}, nil
}

func (f *fakeLifecycle) Complete(_ context.Context, id string) (*models.Booking, error) {
	f.completed = append(f.completed, id)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Booking{ID: id, Status: models.BookingCompleted}, nil
}

func (f *fakeLifecycle) Sweep(context.Context) (int, int, error) {
	f.sweeps++
	return 1, 2, f.err
}

func task(t *testing.T, taskType, bookingID string) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(bookingPayload{BookingID: bookingID})
	require.NoError(t, err)
	return asynq.NewTask(taskType, payload)
}

func TestServeMux_RoutesLifecycleTasks(t *testing.T) {
	svc := &fakeLifecycle{}
	mux := NewServeMux(svc, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, mux.ProcessTask(ctx, task(t, TypeBookingExpire, "b1")))
	require.NoError(t, mux.ProcessTask(ctx, task(t, TypeBookingComplete, "b2")))
	require.NoError(t, mux.ProcessTask(ctx, asynq.NewTask(TypeBookingSweep, nil)))

	assert.Equal(t, []string{"b1"}, svc.expired)
	assert.Equal(t, []string{"b2"}, svc.completed)
	assert.Equal(t, 1, svc.sweeps)
}

func TestServeMux_ErrorHandling(t *testing.T) {
	ctx := context.Background()

	mux := NewServeMux(&fakeLifecycle{}, zap.NewNop())
	err := mux.ProcessTask(ctx, asynq.NewTask(TypeBookingExpire, []byte("not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	mux = NewServeMux(&fakeLifecycle{err: booking.ErrBookingNotFound}, zap.NewNop())
	assert.ErrorIs(t, mux.ProcessTask(ctx, task(t, TypeBookingExpire, "gone")), asynq.SkipRetry)

	mux = NewServeMux(&fakeLifecycle{err: booking.ErrInvalidTransition}, zap.NewNop())
	assert.NoError(t, mux.ProcessTask(ctx, task(t, TypeBookingComplete, "b1")))

	storeDown := errors.New("store down")
	mux = NewServeMux(&fakeLifecycle{err: storeDown}, zap.NewNop())
	assert.ErrorIs(t, mux.ProcessTask(ctx, task(t, TypeBookingComplete, "b1")), storeDown)
	assert.ErrorIs(t, mux.ProcessTask(ctx, asynq.NewTask(TypeBookingSweep, nil)), storeDown)
}
