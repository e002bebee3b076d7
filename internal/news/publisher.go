// Package news implements an in-process publisher that keeps the latest
// content and pushes every update to its subscribers in registration order.
package news

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"sync"
)

// ErrInvalidArgument is returned for a nil subscriber or an empty name.
var ErrInvalidArgument = errors.New("invalid argument")

// Publisher holds an ordered membership list and a single latest-content slot.
// Every public method runs under one mutex; delivery happens while it is held,
// so a subscriber must not call back into the same Publisher from Receive.
type Publisher struct {
	mu          sync.Mutex
	subscribers []Subscriber
	latest      string
	hasLatest   bool

	out      io.Writer
	logger   *slog.Logger
	recorder Recorder
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithOutput sets the sink for confirmation notices. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(p *Publisher) {
		if w != nil {
			p.out = w
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecorder attaches an activity recorder such as Prometheus metrics.
func WithRecorder(r Recorder) Option {
	return func(p *Publisher) {
		p.recorder = r
	}
}

func NewPublisher(opts ...Option) *Publisher {
	p := &Publisher{
		out:    os.Stdout,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddSubscriber appends s to the end of the membership list.
// Duplicates are allowed and notified once per occurrence.
func (p *Publisher) AddSubscriber(s Subscriber) error {
	if err := validSubscriber(s); err != nil {
		return fmt.Errorf("add subscriber: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.subscribers = append(p.subscribers, s)
	fmt.Fprintf(p.out, "%s has been added as a new subscriber\n", s.Name())
	p.logger.Debug("subscriber added", "name", s.Name(), "members", len(p.subscribers))
	if p.recorder != nil {
		p.recorder.SubscriberAdded()
	}
	return nil
}

// RemoveSubscriber drops every membership entry identical to s.
// Removing a subscriber that is not a member is a no-op. Subscribers whose
// dynamic type is not comparable never match, so removing one is a no-op too.
func (p *Publisher) RemoveSubscriber(s Subscriber) error {
	if err := validSubscriber(s); err != nil {
		return fmt.Errorf("remove subscriber: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.subscribers[:0]
	for _, sub := range p.subscribers {
		if !sameSubscriber(sub, s) {
			kept = append(kept, sub)
		}
	}
	removed := len(p.subscribers) - len(kept)
	clear(p.subscribers[len(kept):])
	p.subscribers = kept

	fmt.Fprintf(p.out, "%s has been removed as subscriber\n", s.Name())
	p.logger.Debug("subscriber removed", "name", s.Name(), "entries", removed, "members", len(p.subscribers))
	if p.recorder != nil && removed > 0 {
		p.recorder.SubscribersRemoved(removed)
	}
	return nil
}

// Publish stores content as the latest value and delivers it to every
// current member in registration order before returning.
func (p *Publisher) Publish(content string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.latest = content
	p.hasLatest = true
	for _, sub := range p.subscribers {
		sub.Receive(content)
	}
	p.logger.Debug("content published", "deliveries", len(p.subscribers))
	if p.recorder != nil {
		p.recorder.Published(len(p.subscribers))
	}
}

// Latest returns the most recently published content. The second result is
// false until the first Publish.
func (p *Publisher) Latest() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.hasLatest
}

// Subscribers returns a snapshot of the membership list in order.
func (p *Publisher) Subscribers() []Subscriber {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Subscriber(nil), p.subscribers...)
}

func (p *Publisher) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subscribers)
}

func validSubscriber(s Subscriber) error {
	if s == nil {
		return fmt.Errorf("%w: nil subscriber", ErrInvalidArgument)
	}
	if s.Name() == "" {
		return fmt.Errorf("%w: empty subscriber name", ErrInvalidArgument)
	}
	return nil
}

// sameSubscriber reports whether a and b are the identical subscriber value.
// Comparing interfaces holding uncomparable types panics, so those never match.
func sameSubscriber(a, b Subscriber) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}
