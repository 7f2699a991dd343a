package local

import (
	"context"
	"sync"
)

// LocalMessage is an in-process pub/sub message.
type LocalMessage struct {
	Channel string
	Payload string
}

// subscription is one Subscribe call; it may listen on several channels.
type subscription struct {
	ch chan *LocalMessage
}

// LocalPubSub is an in-process fan-out pub/sub. Slow subscribers lose
// messages once their buffer is full.
type LocalPubSub struct {
	mu      sync.RWMutex
	topics  map[string]map[*subscription]struct{}
	bufSize int
}

// NewPubSub creates a LocalPubSub with the given per-subscriber buffer size.
func NewPubSub(bufSize int) *LocalPubSub {
	if bufSize <= 0 {
		bufSize = 256
	}
	return &LocalPubSub{
		topics:  make(map[string]map[*subscription]struct{}),
		bufSize: bufSize,
	}
}

// Publish sends a message to all subscribers of channel without blocking.
func (ps *LocalPubSub) Publish(_ context.Context, channel, message string) error {
	msg := &LocalMessage{Channel: channel, Payload: message}
	// Held across the sends so cancel cannot close a channel mid-send.
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	for s := range ps.topics[channel] {
		select {
		case s.ch <- msg:
		default:
		}
	}
	return nil
}

// Subscribe returns a message channel for the given channels and a cancel
// function. Cancel is idempotent and closes the returned channel.
func (ps *LocalPubSub) Subscribe(_ context.Context, channels ...string) (<-chan *LocalMessage, func(), error) {
	sub := &subscription{ch: make(chan *LocalMessage, ps.bufSize)}

	ps.mu.Lock()
	for _, c := range channels {
		set, ok := ps.topics[c]
		if !ok {
			set = make(map[*subscription]struct{})
			ps.topics[c] = set
		}
		set[sub] = struct{}{}
	}
	ps.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			ps.mu.Lock()
			defer ps.mu.Unlock()
			for _, c := range channels {
				delete(ps.topics[c], sub)
				if len(ps.topics[c]) == 0 {
					delete(ps.topics, c)
				}
			}
			close(sub.ch)
		})
	}
	return sub.ch, cancel, nil
}
