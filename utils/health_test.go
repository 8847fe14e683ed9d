package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthMonitor_DisabledDependencies(t *testing.T) {
	m := NewHealthMonitor(nil, nil)

	status := m.Status(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, DependencyDisabled, status.Mongo)
	assert.Equal(t, DependencyDisabled, status.Redis)
	assert.False(t, status.CheckedAt.IsZero())

	assert.Equal(t, status.CheckedAt, m.Status(context.Background()).CheckedAt)
}
