// Package network carries news envelopes between nodes.
package network

import "errors"

// ErrClosed is returned by a transport after Close.
var ErrClosed = errors.New("pubsub closed")

// Message is a payload received on a topic.
type Message struct {
	Topic   string
	Payload []byte
}

// PubSub is a minimal broadcast transport keyed by topic.
type PubSub interface {
	Publish(topic string, payload []byte) error
	Subscribe(topic string) (<-chan Message, func(), error)
	Close() error
}
