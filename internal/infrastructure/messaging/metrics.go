package messaging

import (
	"context"
	"expvar"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/event"
)

// authEvents is served under /api/debug/vars as "auth_events".
var authEvents = expvar.NewMap("auth_events")

// CounterPublisher counts events by name.
type CounterPublisher struct{}

func (CounterPublisher) Publish(_ context.Context, e event.Event) error {
	authEvents.Add(string(e.Name), 1)
	return nil
}

// EventCount reports how many events named n were seen by this process.
func EventCount(n event.Name) int64 {
	if v, ok := authEvents.Get(string(n)).(*expvar.Int); ok {
		return v.Value()
	}
	return 0
}
