package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	DependencyUp       = "up"
	DependencyDown     = "down"
	DependencyDisabled = "disabled"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Status    string    `json:"status"`
	Mongo     string    `json:"mongo"`
	Redis     string    `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

// HealthMonitor pings the backing stores and keeps the latest result.
// Nil clients are reported as disabled.
type HealthMonitor struct {
	redis *redis.Client
	mongo *mongo.Client

	mu      sync.RWMutex
	current HealthStatus
}

func NewHealthMonitor(redisClient *redis.Client, mongoClient *mongo.Client) *HealthMonitor {
	return &HealthMonitor{redis: redisClient, mongo: mongoClient}
}

// Status returns the latest snapshot, checking now if none has been taken.
func (m *HealthMonitor) Status(ctx context.Context) HealthStatus {
	m.mu.RLock()
	current := m.current
	m.mu.RUnlock()
	if current.CheckedAt.IsZero() {
		return m.Check(ctx)
	}
	return current
}

// Check pings every dependency and stores the result.
func (m *HealthMonitor) Check(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	status := HealthStatus{
		Mongo:     DependencyDisabled,
		Redis:     DependencyDisabled,
		CheckedAt: time.Now(),
	}
	if m.mongo != nil {
		status.Mongo = dependency(m.mongo.Ping(ctx, nil))
	}
	if m.redis != nil {
		status.Redis = dependency(m.redis.Ping(ctx).Err())
	}
	status.Status = "ok"
	if status.Mongo == DependencyDown || status.Redis == DependencyDown {
		status.Status = "degraded"
	}

	m.mu.Lock()
	m.current = status
	m.mu.Unlock()
	return status
}

// Start performs periodic health checks until ctx is done.
func (m *HealthMonitor) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		m.Check(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Check(ctx)
			}
		}
	}()
}

func dependency(err error) string {
	if err != nil {
		return DependencyDown
	}
	return DependencyUp
}
