package network

import (
	"log/slog"
	"sync"
)

const defaultBuffer = 64

// MemoryPubSub is a process-local transport for single-node runs and tests.
type MemoryPubSub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan Message
	closed bool
	buffer int
	logger *slog.Logger
}

// NewMemoryPubSub returns a transport whose subscriber channels hold up to
// buffer messages; a non-positive buffer uses the default.
func NewMemoryPubSub(buffer int, logger *slog.Logger) *MemoryPubSub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryPubSub{
		subs:   make(map[string]map[int]chan Message),
		buffer: buffer,
		logger: logger,
	}
}

func (m *MemoryPubSub) Publish(topic string, payload []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	for id, ch := range m.subs[topic] {
		msg := Message{Topic: topic, Payload: append([]byte(nil), payload...)}
		select {
		case ch <- msg:
		default:
			// Slow subscribers lose messages instead of stalling the publisher.
			m.logger.Warn("memory pubsub dropped message", "topic", topic, "subscription", id)
		}
	}
	return nil
}

func (m *MemoryPubSub) Subscribe(topic string) (<-chan Message, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, nil, ErrClosed
	}
	if _, ok := m.subs[topic]; !ok {
		m.subs[topic] = make(map[int]chan Message)
	}
	id := m.nextID
	m.nextID++
	ch := make(chan Message, m.buffer)
	m.subs[topic][id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if byTopic, ok := m.subs[topic]; ok {
			if sub, exists := byTopic[id]; exists {
				delete(byTopic, id)
				close(sub)
			}
			if len(byTopic) == 0 {
				delete(m.subs, topic)
			}
		}
	}
	return ch, cancel, nil
}

// Close closes every open subscription channel.
func (m *MemoryPubSub) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for topic, byTopic := range m.subs {
		for _, ch := range byTopic {
			close(ch)
		}
		delete(m.subs, topic)
	}
	return nil
}

// Subscriptions reports the number of open subscriptions on topic.
func (m *MemoryPubSub) Subscriptions(topic string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs[topic])
}
