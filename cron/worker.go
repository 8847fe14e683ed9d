// Package cron runs the booking lifecycle jobs on asynq: expiring unpaid
// holds, completing played slots, and a periodic sweep that catches anything
// a delayed task missed.
package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"boxcric/config"
	"boxcric/models"
	"boxcric/services/booking"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeBookingExpire   = "booking:expire"
	TypeBookingComplete = "booking:complete"
	TypeBookingSweep    = "booking:sweep"

	sweepSpec = "@every 1m"
)

type bookingPayload struct {
	BookingID string `json:"bookingId"`
}

// Lifecycle is the booking service surface the jobs call.
type Lifecycle interface {
	Expire(ctx context.Context, id string) (*models.Booking, error)
	Complete(ctx context.Context, id string) (*models.Booking, error)
	Sweep(ctx context.Context) (expired, completed int, err error)
}

// RedisOpt points asynq at REDIS_QUEUE_DB.
func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
}

// TaskScheduler enqueues delayed lifecycle tasks. It satisfies booking.Scheduler.
type TaskScheduler struct {
	client *asynq.Client
}

func NewTaskScheduler(opt asynq.RedisConnOpt) *TaskScheduler {
	return &TaskScheduler{client: asynq.NewClient(opt)}
}

func (s *TaskScheduler) ScheduleExpiry(ctx context.Context, bookingID string, at time.Time) error {
	return s.enqueue(ctx, TypeBookingExpire, bookingID, at)
}

func (s *TaskScheduler) ScheduleCompletion(ctx context.Context, bookingID string, at time.Time) error {
	return s.enqueue(ctx, TypeBookingComplete, bookingID, at)
}

// enqueue uses a task id per booking and type, so scheduling twice is a no-op.
func (s *TaskScheduler) enqueue(ctx context.Context, taskType, bookingID string, at time.Time) error {
	payload, err := json.Marshal(bookingPayload{BookingID: bookingID})
	if err != nil {
		return err
	}
	_, err = s.client.EnqueueContext(ctx, asynq.NewTask(taskType, payload),
		asynq.ProcessAt(at),
		asynq.TaskID(taskType+":"+bookingID),
		asynq.MaxRetry(5),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s for %s: %w", taskType, bookingID, err)
	}
	return nil
}

func (s *TaskScheduler) Close() error {
	return s.client.Close()
}

// NewServeMux routes lifecycle tasks to svc.
func NewServeMux(svc Lifecycle, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingExpire, handleBookingTask(logger, "expire", svc.Expire))
	mux.HandleFunc(TypeBookingComplete, handleBookingTask(logger, "complete", svc.Complete))
	mux.HandleFunc(TypeBookingSweep, handleSweepTask(svc, logger))
	return mux
}

func handleBookingTask(logger *zap.Logger, action string, run func(context.Context, string) (*models.Booking, error)) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p bookingPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil || p.BookingID == "" {
			logger.Error("Invalid lifecycle task payload", zap.String("type", task.Type()), zap.ByteString("payload", task.Payload()))
			return fmt.Errorf("invalid payload: %w", asynq.SkipRetry)
		}

		b, err := run(ctx, p.BookingID)
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			return fmt.Errorf("booking %s: %v: %w", p.BookingID, err, asynq.SkipRetry)
		case errors.Is(err, booking.ErrInvalidTransition):
			// Someone else moved the booking first.
			logger.Debug("Lifecycle task found nothing to do", zap.String("bookingId", p.BookingID), zap.Error(err))
			return nil
		case err != nil:
			logger.Warn("Lifecycle task failed", zap.String("action", action), zap.String("bookingId", p.BookingID), zap.Error(err))
			return err
		}
		logger.Debug("Lifecycle task done",
			zap.String("action", action),
			zap.String("bookingId", b.ID),
			zap.String("status", string(b.Status)))
		return nil
	}
}

func handleSweepTask(svc Lifecycle, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		expired, completed, err := svc.Sweep(ctx)
		if err != nil {
			logger.Warn("Booking sweep failed", zap.Error(err))
			return err
		}
		if expired > 0 || completed > 0 {
			logger.Info("Booking sweep", zap.Int("expired", expired), zap.Int("completed", completed))
		}
		return nil
	}
}

// Worker owns the asynq server processing lifecycle tasks and the scheduler
// that enqueues the periodic sweep.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	logger    *zap.Logger
}

// StartWorker starts processing in the background, retrying the server start
// with backoff.
func StartWorker(opt asynq.RedisConnOpt, svc Lifecycle, logger *zap.Logger) (*Worker, error) {
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"default": 1,
		},
	})
	mux := NewServeMux(svc, logger)

	const maxAttempts = 5
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = srv.Start(mux); err == nil {
			break
		}
		logger.Warn("Lifecycle worker failed to start",
			zap.Int("attempt", attempt), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
		time.Sleep(time.Duration(attempt*2) * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("lifecycle worker did not start: %w", err)
	}

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{})
	if _, err := scheduler.Register(sweepSpec, asynq.NewTask(TypeBookingSweep, nil), asynq.MaxRetry(0)); err != nil {
		srv.Shutdown()
		return nil, fmt.Errorf("register booking sweep: %w", err)
	}
	if err := scheduler.Start(); err != nil {
		srv.Shutdown()
		return nil, fmt.Errorf("start booking sweep scheduler: %w", err)
	}

	logger.Info("Lifecycle worker started", zap.String("sweep", sweepSpec))
	return &Worker{server: srv, scheduler: scheduler, logger: logger}, nil
}

func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
	w.logger.Info("Lifecycle worker stopped")
}
