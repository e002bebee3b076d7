package news

import (
	"bytes"
	"testing"
)

func TestNewsSubscriberPrintsDelivery(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	s := NewSubscriber("Subscriber-2", &out)

	s.Receive("New global article has been published")

	want := "Subscriber-2, New global article has been published\n"
	if out.String() != want {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if s.Name() != "Subscriber-2" {
		t.Fatalf("unexpected name: %s", s.Name())
	}
}

func TestNewsSubscriberThroughPublisher(t *testing.T) {
	t.Parallel()
	var notices, deliveries bytes.Buffer
	p := NewPublisher(WithOutput(&notices))
	s1 := NewSubscriber("Subscriber-1", &deliveries)
	s2 := NewSubscriber("Subscriber-2", &deliveries)

	if err := p.AddSubscriber(s1); err != nil {
		t.Fatalf("add s1: %v", err)
	}
	if err := p.AddSubscriber(s2); err != nil {
		t.Fatalf("add s2: %v", err)
	}
	p.Publish("New sports article has been published")

	want := "Subscriber-1, New sports article has been published\n" +
		"Subscriber-2, New sports article has been published\n"
	if deliveries.String() != want {
		t.Fatalf("unexpected deliveries: %q", deliveries.String())
	}
}
