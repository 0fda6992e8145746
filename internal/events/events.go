// Package events publishes domain events for other services to consume.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TopicUsers   = "user_events"
	TopicCatalog = "catalog_events"
)

const (
	UserRegistered = "user_registered"
	UserSignedIn   = "user_signed_in"
	UserSignedOut  = "user_signed_out"
	TokenRefreshed = "token_refreshed"

	AuthorCreated = "author_created"
	AuthorUpdated = "author_updated"
	AuthorDeleted = "author_deleted"
	BookCreated   = "book_created"
	BookUpdated   = "book_updated"
	BookDeleted   = "book_deleted"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

func New(typ string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event Event) error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, Event) error { return nil }
