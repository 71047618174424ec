package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/status-portal/internal/config"
)

func TestLimiter_BurstThenRefill(t *testing.T) {
	l := New(config.RateLimitConfig{PerMinute: 60, Burst: 2})
	now := time.Date(2025, 9, 11, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("2.2.2.2"), "clients are limited independently")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("1.1.1.1"))
}

func TestLimiter_DisabledAllowsAll(t *testing.T) {
	l := New(config.RateLimitConfig{PerMinute: 0})
	assert.Nil(t, l)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("1.1.1.1"))
	}
}

func TestLimiter_EvictsIdleClients(t *testing.T) {
	l := New(config.RateLimitConfig{PerMinute: 10, Burst: 1})
	now := time.Now()
	l.now = func() time.Time { return now }

	l.Allow("old")
	now = now.Add(2 * idleTTL)
	l.Allow("new")

	assert.NotContains(t, l.clients, "old")
	assert.Contains(t, l.clients, "new")
}
