package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartRunsImmediately(t *testing.T) {
	var runs atomic.Int32
	p := New("dash", time.Hour, func(context.Context) error {
		runs.Add(1)
		return nil
	}, Options{}, zerolog.Nop())

	p.Start(context.Background())
	defer p.Stop()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, uint64(1), p.Stats().Runs)
}

func TestTicksRepeat(t *testing.T) {
	var runs atomic.Int32
	p := New("dash", time.Second, func(context.Context) error {
		runs.Add(1)
		return nil
	}, Options{}, zerolog.Nop())

	p.Start(context.Background())
	defer p.Stop()
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 4*time.Second, 50*time.Millisecond)
}

func TestRunsNeverOverlap(t *testing.T) {
	var active, maxActive atomic.Int32
	p := New("slow", time.Second, func(context.Context) error {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(1500 * time.Millisecond)
		active.Add(-1)
		return nil
	}, Options{PerMinute: 600, Burst: 10}, zerolog.Nop())

	p.Start(context.Background())
	go func() { _ = p.Trigger(context.Background()) }()
	time.Sleep(3500 * time.Millisecond)
	p.Stop()

	assert.Equal(t, int32(1), maxActive.Load())
	assert.Positive(t, p.Stats().Skipped)
}

func TestTriggerThrottled(t *testing.T) {
	var runs atomic.Int32
	p := New("dash", time.Hour, func(context.Context) error {
		runs.Add(1)
		return nil
	}, Options{PerMinute: 1, Burst: 1}, zerolog.Nop())

	require.NoError(t, p.Trigger(context.Background()))
	assert.ErrorIs(t, p.Trigger(context.Background()), ErrThrottled)
	assert.Equal(t, int32(1), runs.Load())
}

func TestTriggerReportsJobError(t *testing.T) {
	boom := errors.New("boom")
	p := New("dash", time.Hour, func(context.Context) error { return boom }, Options{}, zerolog.Nop())

	assert.ErrorIs(t, p.Trigger(context.Background()), boom)
	st := p.Stats()
	assert.Equal(t, uint64(1), st.Failures)
	assert.Equal(t, "boom", st.LastError)
}

func TestStopWithoutStart(t *testing.T) {
	p := New("idle", time.Second, func(context.Context) error { return nil }, Options{}, zerolog.Nop())
	assert.NotPanics(t, p.Stop)
}
