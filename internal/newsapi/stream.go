package newsapi

import (
	"sync/atomic"

	"Newsroom-Apps/internal/news"
)

// streamSubscriber hands deliveries to an SSE connection. Receive never
// blocks: when the client lags the delivery is dropped and counted.
type streamSubscriber struct {
	name    string
	ch      chan string
	dropped atomic.Int64
}

func newStreamSubscriber(name string, buffer int) *streamSubscriber {
	return &streamSubscriber{name: name, ch: make(chan string, buffer)}
}

func (s *streamSubscriber) Name() string {
	return s.name
}

func (s *streamSubscriber) Receive(content string) {
	select {
	case s.ch <- content:
	default:
		s.dropped.Add(1)
	}
}

func (s *streamSubscriber) Dropped() int64 {
	return s.dropped.Load()
}

var _ news.Subscriber = (*streamSubscriber)(nil)
