package cache

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain reads ch until it is closed or the timeout hits.
func drain(t *testing.T, ch <-chan *Message, timeout time.Duration) []string {
	t.Helper()
	var got []string
	deadline := time.After(timeout)
	for {
		select {
		case m, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, m.Payload)
		case <-deadline:
			t.Fatalf("channel not closed after %v, got %v", timeout, got)
			return got
		}
	}
}

func TestRelay_StopUnblocksFullOutput(t *testing.T) {
	in := make(chan int, 1)
	var cancelled atomic.Int32
	out, stop := relay(in, func(n int) *Message {
		return &Message{Payload: strconv.Itoa(n)}
	}, func() { cancelled.Add(1) })

	in <- 1
	in <- 2
	in <- 3
	// 1 sits in out, the relay holds 2, 3 waits in in.
	require.Eventually(t, func() bool { return len(out) == 1 && len(in) == 1 },
		time.Second, 5*time.Millisecond)

	stop()
	stop()
	got := drain(t, out, time.Second)
	assert.NotEmpty(t, got)
	assert.Equal(t, "1", got[0])
	assert.LessOrEqual(t, len(got), 3)
	assert.Equal(t, int32(1), cancelled.Load())
}

func TestRelay_ClosesWhenSourceCloses(t *testing.T) {
	in := make(chan int, 2)
	out, stop := relay(in, func(n int) *Message {
		return &Message{Payload: strconv.Itoa(n)}
	}, func() {})
	defer stop()

	in <- 7
	close(in)
	assert.Equal(t, []string{"7"}, drain(t, out, time.Second))
}

func TestLocalPubSub_CancelClosesChannel(t *testing.T) {
	ps, err := NewPubSub(CacheConfig{LocalPubSubBuf: 1})
	require.NoError(t, err)
	ctx := context.Background()

	ch, cancel, err := ps.Subscribe(ctx, "inventory:1")
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, ps.Publish(ctx, "inventory:1", strconv.Itoa(i)))
	}
	cancel()
	drain(t, ch, time.Second)
}
