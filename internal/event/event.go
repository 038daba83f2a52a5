// Package event provides a small synchronous publish/subscribe bus used to
// observe related-file activity: lookups resolving, providers coming and
// going. Handlers run on the publisher's goroutine; a panicking handler is
// isolated and counted, never propagated.
package event

import (
	"context"
	"strings"
	"time"
)

// Topic identifies an event stream, dot-separated (e.g. "related.query.resolved").
type Topic string

// Match reports whether the topic matches a subscription pattern.
// A pattern either names a topic exactly or ends in ".*" to match a subtree.
func (t Topic) Match(pattern Topic) bool {
	if t == pattern {
		return true
	}
	if prefix, ok := strings.CutSuffix(string(pattern), ".*"); ok {
		return strings.HasPrefix(string(t), prefix+".")
	}
	return false
}

// TopicProvider is implemented by events that know their own topic.
type TopicProvider interface {
	EventTopic() Topic
}

// Handler processes a delivered event.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event any) error

// Handle invokes the function.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// Topics published by the related-file engine.
const (
	// TopicQueryResolved fires after every completed lookup.
	TopicQueryResolved Topic = "related.query.resolved"

	// TopicProviderRegistered fires when a provider joins the registry.
	TopicProviderRegistered Topic = "related.provider.registered"

	// TopicProviderUnregistered fires when a provider registration is disposed.
	TopicProviderUnregistered Topic = "related.provider.unregistered"
)

// QueryResolved reports a completed related-file lookup.
type QueryResolved struct {
	Path      string
	Files     int
	Index     int
	Providers int
	Duration  time.Duration
}

// EventTopic returns the event topic.
func (QueryResolved) EventTopic() Topic { return TopicQueryResolved }

// ProviderRegistered reports a new provider registration.
type ProviderRegistered struct {
	Name string
}

// EventTopic returns the event topic.
func (ProviderRegistered) EventTopic() Topic { return TopicProviderRegistered }

// ProviderUnregistered reports a disposed provider registration.
type ProviderUnregistered struct {
	Name string
}

// EventTopic returns the event topic.
func (ProviderUnregistered) EventTopic() Topic { return TopicProviderUnregistered }
