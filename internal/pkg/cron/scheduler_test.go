package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler()

	var order []string
	s.AddJob("first", time.Minute, func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	s.AddJob("failing", time.Minute, func(ctx context.Context) error {
		order = append(order, "failing")
		return errors.New("boom")
	})
	s.AddJob("panicking", time.Minute, func(ctx context.Context) error {
		order = append(order, "panicking")
		panic("unexpected")
	})
	s.AddJob("last", time.Minute, func(ctx context.Context) error {
		order = append(order, "last")
		return nil
	})

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "panicked")
	assert.Equal(t, []string{"first", "failing", "panicking", "last"}, order)
	assert.Equal(t, []string{"first", "failing", "panicking", "last"}, s.Jobs())
}

func TestScheduler_StartAndStop(t *testing.T) {
	s := NewScheduler()

	var runs atomic.Int32
	s.AddJob("tick", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	s.AddJob("disabled", 0, func(ctx context.Context) error {
		t.Error("job with zero interval must not run")
		return nil
	})

	s.Start()
	s.Start()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())
}
