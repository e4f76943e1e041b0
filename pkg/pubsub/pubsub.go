// Package pubsub provides in-process topics for fanning server events out to
// live views.
package pubsub

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Common pubsub errors.
var (
	ErrPubSubClosed = errors.New("pubsub is closed")
)

// DefaultBufferSize is the number of pending messages per subscriber.
// Publishing to a full subscriber drops the message.
const DefaultBufferSize = 256

// PubSub is the interface for pub/sub implementations.
type PubSub interface {
	// Subscribe adds a handler for a topic. Handlers run on their own
	// goroutine, one message at a time.
	Subscribe(topic string, handler func(msg []byte)) (Subscription, error)

	// Publish sends a message to all subscribers of a topic.
	Publish(topic string, msg []byte) error

	// Close shuts down the pubsub system.
	Close() error
}

// Subscription represents an active subscription.
type Subscription interface {
	Unsubscribe() error
	Topic() string
}

type channelWrapper struct {
	ch        chan []byte
	closeOnce sync.Once
}

func (cw *channelWrapper) close() {
	cw.closeOnce.Do(func() { close(cw.ch) })
}

// MemoryPubSub is the single node implementation.
type MemoryPubSub struct {
	topics  map[string]map[string]*memorySubscription
	closed  bool
	dropped atomic.Int64
	mu      sync.RWMutex
}

// NewMemoryPubSub creates a new in-memory pub/sub.
func NewMemoryPubSub() *MemoryPubSub {
	return &MemoryPubSub{
		topics: make(map[string]map[string]*memorySubscription),
	}
}

// Subscribe adds a handler for a topic.
func (ps *MemoryPubSub) Subscribe(topic string, handler func(msg []byte)) (Subscription, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.closed {
		return nil, ErrPubSubClosed
	}
	if ps.topics[topic] == nil {
		ps.topics[topic] = make(map[string]*memorySubscription)
	}

	sub := &memorySubscription{
		id:    uuid.NewString(),
		topic: topic,
		ps:    ps,
		ch:    &channelWrapper{ch: make(chan []byte, DefaultBufferSize)},
	}
	ps.topics[topic][sub.id] = sub

	go func() {
		for msg := range sub.ch.ch {
			if sub.closed.Load() {
				return
			}
			deliver(handler, msg)
		}
	}()

	return sub, nil
}

// deliver keeps a panicking handler from killing its subscription goroutine.
func deliver(handler func([]byte), msg []byte) {
	defer func() { recover() }()
	handler(msg)
}

// Publish sends msg to every subscriber of topic without blocking.
func (ps *MemoryPubSub) Publish(topic string, msg []byte) error {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if ps.closed {
		return ErrPubSubClosed
	}

	for _, sub := range ps.topics[topic] {
		if sub.closed.Load() {
			continue
		}
		msgCopy := make([]byte, len(msg))
		copy(msgCopy, msg)

		select {
		case sub.ch.ch <- msgCopy:
		default:
			ps.dropped.Add(1)
		}
	}
	return nil
}

// Close shuts down the pubsub system.
func (ps *MemoryPubSub) Close() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.closed {
		return nil
	}
	ps.closed = true

	for _, subs := range ps.topics {
		for _, sub := range subs {
			sub.closed.Store(true)
			sub.ch.close()
		}
	}
	ps.topics = make(map[string]map[string]*memorySubscription)
	return nil
}

// TopicCount returns the number of topics.
func (ps *MemoryPubSub) TopicCount() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.topics)
}

// SubscriberCount returns the number of subscribers for a topic.
func (ps *MemoryPubSub) SubscriberCount(topic string) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.topics[topic])
}

// Dropped returns how many messages were dropped on full subscribers.
func (ps *MemoryPubSub) Dropped() int64 {
	return ps.dropped.Load()
}

type memorySubscription struct {
	id     string
	topic  string
	ps     *MemoryPubSub
	ch     *channelWrapper
	closed atomic.Bool
}

// Unsubscribe removes this subscription. It is safe to call more than once.
func (s *memorySubscription) Unsubscribe() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.ps.mu.Lock()
	defer s.ps.mu.Unlock()

	if subs := s.ps.topics[s.topic]; subs != nil {
		delete(subs, s.id)
		if len(subs) == 0 {
			delete(s.ps.topics, s.topic)
		}
	}
	s.ch.close()
	return nil
}

func (s *memorySubscription) Topic() string {
	return s.topic
}

// Publish encodes v with msgpack and publishes it on topic.
func Publish[T any](ps PubSub, topic string, v T) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("pubsub: encode %s: %w", topic, err)
	}
	return ps.Publish(topic, data)
}

// Subscribe decodes every message on topic into T before calling handler.
// Messages that do not decode are skipped.
func Subscribe[T any](ps PubSub, topic string, handler func(T)) (Subscription, error) {
	return ps.Subscribe(topic, func(msg []byte) {
		var v T
		if err := msgpack.Unmarshal(msg, &v); err != nil {
			return
		}
		handler(v)
	})
}
