package pubsub

import (
	"context"
	"sync"
)

// KeyedBroker routes events to subscribers of a specific key.
// Each key gets its own broker, created lazily on first use. This lets
// many independent consumers listen for events about one resource each
// without filtering a shared stream.
type KeyedBroker[T any] struct {
	brokers    map[string]*Broker[T]
	mu         sync.Mutex
	done       chan struct{}
	bufferSize int
}

// NewKeyedBroker creates a keyed broker with the default buffer size.
func NewKeyedBroker[T any]() *KeyedBroker[T] {
	return &KeyedBroker[T]{
		brokers:    make(map[string]*Broker[T]),
		done:       make(chan struct{}),
		bufferSize: defaultBufferSize,
	}
}

func (k *KeyedBroker[T]) broker(key string) *Broker[T] {
	b, ok := k.brokers[key]
	if !ok {
		b = NewBrokerWithBuffer[T](k.bufferSize)
		k.brokers[key] = b
	}
	return b
}

// Subscribe creates a subscription channel for events published under key.
// The channel is automatically closed when ctx is cancelled.
func (k *KeyedBroker[T]) Subscribe(ctx context.Context, key string) <-chan Event[T] {
	k.mu.Lock()
	defer k.mu.Unlock()

	select {
	case <-k.done:
		ch := make(chan Event[T])
		close(ch)
		return ch
	default:
	}

	return k.broker(key).Subscribe(ctx)
}

// Publish sends an event to all subscribers of key.
// Keys with no subscribers are a no-op.
func (k *KeyedBroker[T]) Publish(key string, eventType EventType, payload T) {
	k.mu.Lock()
	b, ok := k.brokers[key]
	k.mu.Unlock()

	if !ok {
		return
	}
	b.Publish(eventType, payload)
}

// Close shuts down every per-key broker and their subscriber channels.
func (k *KeyedBroker[T]) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()

	select {
	case <-k.done:
		return
	default:
	}

	close(k.done)
	for _, b := range k.brokers {
		b.Close()
	}
	k.brokers = nil
}
