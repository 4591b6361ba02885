// Package store abstracts the hosted relational database the CRM reads
// from. The schema is owned by the external ingestion pipeline; every
// adapter here is read-only apart from test seeding.
package store

import (
	"context"

	"github.com/jagmag/crm-backend/internal/model/conversation"
	"github.com/jagmag/crm-backend/internal/model/customer"
)

// Store is the read surface over conversations, customer profiles and
// cached orders.
type Store interface {
	// ListConversations executes one bounded, ordered read. The query
	// is expected to be normalized (limit clamped, order resolved)
	// before it reaches the adapter.
	ListConversations(ctx context.Context, q conversation.Query) ([]conversation.Record, error)
	// ListConversationStats returns every row with the columns the
	// dashboard aggregates over.
	ListConversationStats(ctx context.Context) ([]conversation.Record, error)

	GetCustomerProfile(ctx context.Context, profileKey string) (*customer.Profile, error)
	CountCustomerProfiles(ctx context.Context) (int, error)
	ListOrdersByProfile(ctx context.Context, profileKey string) ([]customer.Order, error)
	ListOrders(ctx context.Context) ([]customer.Order, error)

	Ping(ctx context.Context) error
	Close() error
}
