// Package events publishes content-change notifications to a message
// broker. Publishing is best-effort: a broker failure is logged and never
// surfaced to the HTTP caller, and nothing is retried.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aoki-blog/apiserver/internal/logging"
)

// Channels carrying content events.
const (
	PostsChannel    = "blog.posts"
	CommentsChannel = "blog.comments"
)

// Actions recorded on events.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event is the JSON payload published after a successful content mutation.
type Event struct {
	// Kind is "post" or "comment".
	Kind string `json:"kind"`

	// Action is one of the Action constants.
	Action string `json:"action"`

	// ID identifies the mutated resource.
	ID int `json:"id"`

	// PostID is set for comment events and for post events alike; for a
	// post event it equals ID.
	PostID int `json:"postId"`

	// ActorID is the principal that performed the mutation.
	ActorID int `json:"actorId"`

	// OccurredAt is the server-side timestamp of the mutation.
	OccurredAt time.Time `json:"occurredAt"`
}

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// Publisher emits content events through a backend. A nil Publisher (or a
// Publisher with no backend) silently discards events, so callers need no
// enabled/disabled branching.
type Publisher struct {
	backend Backend
	log     logging.Logger
}

// NewPublisher wraps a backend. backend may be nil to disable publishing.
func NewPublisher(backend Backend, log logging.Logger) *Publisher {
	return &Publisher{backend: backend, log: log}
}

// Publish marshals and sends the event on the named channel, best-effort.
func (p *Publisher) Publish(ctx context.Context, channel string, event Event) {
	if p == nil || p.backend == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error(ctx, "failed to encode event", "channel", channel, "err", err)
		return
	}

	attrs := map[string]string{"kind": event.Kind, "action": event.Action}
	if _, err := p.backend.Publish(ctx, channel, data, attrs); err != nil {
		p.log.Warn(ctx, "failed to publish event",
			"channel", channel, "kind", event.Kind, "action", event.Action, "err", err)
	}
}

// Subscribe consumes messages from the named channel until ctx is done.
func (p *Publisher) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return p.backend.Subscribe(ctx, channel, handler)
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	if p == nil || p.backend == nil {
		return nil
	}
	return p.backend.Close()
}
