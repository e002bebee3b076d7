package news

import (
	"fmt"
	"io"
	"os"
)

// Subscriber is a party that can be registered on a Publisher.
type Subscriber interface {
	Name() string
	Receive(content string)
}

// Recorder observes publisher activity. Implemented by the metrics package.
type Recorder interface {
	SubscriberAdded()
	SubscribersRemoved(n int)
	Published(deliveries int)
}

// NewsSubscriber prints every delivery as one console line.
type NewsSubscriber struct {
	name string
	out  io.Writer
}

// NewSubscriber returns a console subscriber writing to w, or stdout when w
// is nil.
func NewSubscriber(name string, w io.Writer) *NewsSubscriber {
	if w == nil {
		w = os.Stdout
	}
	return &NewsSubscriber{name: name, out: w}
}

func (s *NewsSubscriber) Name() string {
	return s.name
}

func (s *NewsSubscriber) Receive(content string) {
	fmt.Fprintf(s.out, "%s, %s\n", s.name, content)
}

var _ Subscriber = (*NewsSubscriber)(nil)
