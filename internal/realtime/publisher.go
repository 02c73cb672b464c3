package realtime

import "context"

// Publisher fans an event out to everyone subscribed to a channel. The core
// must not depend on any specific transport, so this is the whole contract.
//
// Delivery is best effort: callers treat a failed publish as a logged
// degradation, never as an operation failure.
type Publisher interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

// NoopPublisher drops every event. Used when realtime delivery is not
// configured and in tests that don't care about fan-out.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, channel, event string, payload any) error {
	return nil
}
