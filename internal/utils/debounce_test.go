package utils

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerCoalescesBursts(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() {
		calls.Add(1)
	})

	for i := 0; i < 10; i++ {
		d.Trigger()
	}

	assert.Eventually(t, func() bool {
		return calls.Load() == 1
	}, time.Second, 10*time.Millisecond)

	// A later burst fires again
	d.Trigger()
	assert.Eventually(t, func() bool {
		return calls.Load() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestDebouncerStopFlushesPending(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(time.Hour, func() {
		calls.Add(1)
	})

	d.Trigger()
	d.Stop()

	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncerStopWithoutPending(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(time.Millisecond, func() {
		calls.Add(1)
	})

	d.Stop()
	assert.Equal(t, int32(0), calls.Load())

	// Triggers after stop are ignored
	d.Trigger()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestDebouncerFlushRunsOnce(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(time.Hour, func() {
		calls.Add(1)
	})

	d.Trigger()
	d.Flush()
	d.Flush()

	assert.Equal(t, int32(1), calls.Load())
}
