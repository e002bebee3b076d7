package main

import (
	"fmt"
	"io"

	"Newsroom-Apps/internal/config"
	"Newsroom-Apps/internal/news"
	"Newsroom-Apps/internal/newswire"
)

// runDemo registers the demo subscribers and publishes each headline.
// Before every headline after the first, the oldest remaining demo
// subscriber is removed.
func runDemo(w *newswire.Wire, demo config.Demo, out io.Writer) error {
	subs := make([]*news.NewsSubscriber, 0, len(demo.Subscribers))
	for _, name := range demo.Subscribers {
		s := news.NewSubscriber(name, out)
		if err := w.AddSubscriber(s); err != nil {
			return err
		}
		subs = append(subs, s)
	}

	for i, headline := range demo.Headlines {
		fmt.Fprintln(out)
		if i > 0 && i-1 < len(subs) {
			if err := w.RemoveSubscriber(subs[i-1]); err != nil {
				return err
			}
			fmt.Fprintln(out)
		}
		if err := w.Publish(headline); err != nil {
			return err
		}
	}
	return nil
}
