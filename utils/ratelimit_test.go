package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestURLSetNoDuplicates(t *testing.T) {
	s := NewURLSet()

	assert.True(t, s.Add("https://example.com/1"), "first Add should return true")
	assert.False(t, s.Add("https://example.com/1"), "second Add of same URL should return false")
	assert.Equal(t, 1, s.Size())
	assert.True(t, s.Contains("https://example.com/1"))
	assert.False(t, s.Contains("https://example.com/2"))
}

func TestRateGateEnforcesInterval(t *testing.T) {
	interval := 50 * time.Millisecond
	gate := NewRateGate(interval)

	var timestamps []time.Time
	for i := 0; i < 3; i++ {
		gate.Wait()
		timestamps = append(timestamps, time.Now())
	}

	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		assert.GreaterOrEqual(t, gap, interval, "gap between op %d and %d", i-1, i)
	}
}

func TestRateGateZeroIntervalDoesNotBlock(t *testing.T) {
	gate := NewRateGate(0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		gate.Wait()
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}
