package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan *LocalMessage) *LocalMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}
	return nil
}

func TestPubSubBasic(t *testing.T) {
	ps := NewPubSub(16)
	ctx := context.Background()

	ch, cancel, err := ps.Subscribe(ctx, "inventory:7")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, ps.Publish(ctx, "inventory:7", "changed"))

	msg := recv(t, ch)
	assert.Equal(t, "inventory:7", msg.Channel)
	assert.Equal(t, "changed", msg.Payload)
}

func TestPubSubMultipleChannels(t *testing.T) {
	ps := NewPubSub(16)
	ctx := context.Background()

	ch, cancel, err := ps.Subscribe(ctx, "inventory:1", "inventory:2")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, ps.Publish(ctx, "inventory:2", "b"))
	require.NoError(t, ps.Publish(ctx, "inventory:3", "ignored"))
	require.NoError(t, ps.Publish(ctx, "inventory:1", "a"))

	assert.Equal(t, "b", recv(t, ch).Payload)
	assert.Equal(t, "a", recv(t, ch).Payload)
}

func TestPubSubUnsubscribe(t *testing.T) {
	ps := NewPubSub(16)
	ctx := context.Background()

	ch, cancel, err := ps.Subscribe(ctx, "ch")
	require.NoError(t, err)

	cancel()
	cancel() // second call is a no-op

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed after cancel")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("channel not closed after cancel")
	}

	assert.NoError(t, ps.Publish(ctx, "ch", "msg"))
}

func TestPubSubMultipleSubscribers(t *testing.T) {
	ps := NewPubSub(16)
	ctx := context.Background()

	ch1, cancel1, _ := ps.Subscribe(ctx, "broadcast")
	ch2, cancel2, _ := ps.Subscribe(ctx, "broadcast")
	defer cancel1()
	defer cancel2()

	require.NoError(t, ps.Publish(ctx, "broadcast", "world"))

	for _, ch := range []<-chan *LocalMessage{ch1, ch2} {
		assert.Equal(t, "world", recv(t, ch).Payload)
	}
}

func TestPubSubDropsWhenFull(t *testing.T) {
	ps := NewPubSub(1)
	ctx := context.Background()

	ch, cancel, _ := ps.Subscribe(ctx, "c")
	defer cancel()

	require.NoError(t, ps.Publish(ctx, "c", "first"))
	require.NoError(t, ps.Publish(ctx, "c", "second"))

	assert.Equal(t, "first", recv(t, ch).Payload)
	select {
	case msg := <-ch:
		t.Fatalf("unexpected message %q", msg.Payload)
	default:
	}
}
