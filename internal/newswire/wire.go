// Package newswire mirrors a local news.Publisher across nodes over a
// network.PubSub topic.
package newswire

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"Newsroom-Apps/internal/core/network"
	"Newsroom-Apps/internal/news"
)

const DefaultTopic = "newsroom.headlines"

var (
	ErrAlreadyStarted = errors.New("wire already started")
	ErrClosed         = errors.New("wire closed")
)

// Envelope is the JSON payload exchanged between nodes.
type Envelope struct {
	ID      string    `json:"id"`
	Origin  string    `json:"origin"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Wire publishes locally first and then announces the content to peers.
// Content received from peers is delivered to local subscribers only.
// The publisher is not exposed, so every local Publish goes through the wire.
type Wire struct {
	pub    *news.Publisher
	pubsub network.PubSub
	topic  string
	nodeID string
	logger *slog.Logger

	mu      sync.Mutex
	started bool
	closed  bool
	cancel  func()
	done    chan struct{}
	remote  int
}

// Option configures a Wire.
type Option func(*Wire)

func WithTopic(topic string) Option {
	return func(w *Wire) {
		if topic != "" {
			w.topic = topic
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Wire) {
		if l != nil {
			w.logger = l
		}
	}
}

func New(pub *news.Publisher, ps network.PubSub, opts ...Option) *Wire {
	w := &Wire{
		pub:    pub,
		pubsub: ps,
		topic:  DefaultTopic,
		nodeID: uuid.NewString(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("node", w.nodeID, "topic", w.topic)
	return w
}

// NodeID is the origin stamped on every outgoing envelope.
func (w *Wire) NodeID() string {
	return w.nodeID
}

func (w *Wire) Topic() string {
	return w.topic
}

// Start subscribes to the topic and applies remote envelopes until Close.
func (w *Wire) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.started {
		return ErrAlreadyStarted
	}
	ch, cancel, err := w.pubsub.Subscribe(w.topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", w.topic, err)
	}
	w.started = true
	w.cancel = cancel
	go w.consume(ch)
	return nil
}

// Publish delivers content to local subscribers and then announces it on the
// topic. A transport error is returned after local delivery has completed.
func (w *Wire) Publish(content string) error {
	w.pub.Publish(content)

	env := Envelope{
		ID:      uuid.NewString(),
		Origin:  w.nodeID,
		Content: content,
		At:      time.Now().UTC(),
	}
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	if err := w.pubsub.Publish(w.topic, b); err != nil {
		w.logger.Error("announce failed", "envelope", env.ID, "error", err)
		return fmt.Errorf("announce: %w", err)
	}
	return nil
}

func (w *Wire) AddSubscriber(s news.Subscriber) error {
	return w.pub.AddSubscriber(s)
}

func (w *Wire) RemoveSubscriber(s news.Subscriber) error {
	return w.pub.RemoveSubscriber(s)
}

func (w *Wire) Latest() (string, bool) {
	return w.pub.Latest()
}

func (w *Wire) Subscribers() []news.Subscriber {
	return w.pub.Subscribers()
}

func (w *Wire) Len() int {
	return w.pub.Len()
}

// RemoteCount reports how many peer envelopes have been applied.
func (w *Wire) RemoteCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.remote
}

// Close stops consuming remote envelopes. The transport itself is owned by
// the caller.
func (w *Wire) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	started := w.started
	cancel := w.cancel
	w.mu.Unlock()

	if !started {
		return
	}
	cancel()
	<-w.done
}

func (w *Wire) consume(ch <-chan network.Message) {
	defer close(w.done)
	for msg := range ch {
		var env Envelope
		if err := json.Unmarshal(msg.Payload, &env); err != nil {
			w.logger.Warn("skip undecodable envelope", "error", err)
			continue
		}
		if env.Origin == "" || env.Origin == w.nodeID {
			continue
		}
		w.pub.Publish(env.Content)

		w.mu.Lock()
		w.remote++
		w.mu.Unlock()
		w.logger.Debug("applied remote envelope", "envelope", env.ID, "origin", env.Origin)
	}
}
