package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func counter(n *int32) TaskFn {
	return func(context.Context) error {
		atomic.AddInt32(n, 1)
		return nil
	}
}

func TestAddTicker_Fires(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var count int32
	s.AddTicker("autosave", 20*time.Millisecond, counter(&count))

	time.Sleep(120 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&count), int32(3))
}

func TestAddTicker_Replaces(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var count1, count2 int32
	s.AddTicker("task", 20*time.Millisecond, counter(&count1))
	time.Sleep(30 * time.Millisecond)
	s.AddTicker("task", 20*time.Millisecond, counter(&count2))
	time.Sleep(80 * time.Millisecond)

	snap1 := atomic.LoadInt32(&count1)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, snap1, atomic.LoadInt32(&count1), "old ticker must stop after replacement")
	assert.Positive(t, atomic.LoadInt32(&count2))
	assert.Len(t, s.Stats(), 1)
}

func TestRemove(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var count int32
	s.AddTicker("sweep", 10*time.Millisecond, counter(&count))
	time.Sleep(35 * time.Millisecond)
	s.Remove("sweep")
	snap := atomic.LoadInt32(&count)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, snap, atomic.LoadInt32(&count))
	assert.Empty(t, s.Stats())
}

func TestStats_RecordFailuresAndPanics(t *testing.T) {
	s := New(zap.NewNop())

	s.AddTicker("a-fail", 10*time.Millisecond, func(context.Context) error {
		return errors.New("disk full")
	})
	s.AddTicker("b-panic", 10*time.Millisecond, func(context.Context) error {
		panic("boom")
	})
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	stats := s.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, "a-fail", stats[0].Name)
	assert.Positive(t, stats[0].Failures)
	assert.Equal(t, "disk full", stats[0].LastError)
	assert.Equal(t, "b-panic", stats[1].Name)
	assert.Equal(t, stats[1].Runs, stats[1].Failures)
	assert.Contains(t, stats[1].LastError, "boom")
}

func TestStop_CancelsContext(t *testing.T) {
	s := New(zap.NewNop())
	started := make(chan struct{}, 1)
	s.AddTicker("long", 5*time.Millisecond, func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return ctx.Err()
	})
	<-started
	s.Stop()
	s.Stop()
}

func TestAddTicker_IgnoresBadInterval(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()
	s.AddTicker("bad", 0, counter(new(int32)))
	assert.Empty(t, s.Stats())
}
