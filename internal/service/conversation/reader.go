// Package conversation owns the pagination contract over the
// conversation log: limit clamping, ordering defaults and cursor
// derivation. Query execution is delegated to the store.
package conversation

import (
	"context"
	"errors"
	"fmt"

	model "github.com/jagmag/crm-backend/internal/model/conversation"
)

const (
	// DefaultLimit applies when the caller does not ask for a size.
	DefaultLimit = 50
	// MaxLimit caps a single read regardless of caller input.
	MaxLimit = 2000
)

var ErrInvalidOrder = errors.New("order must be asc or desc")

// Lister executes one bounded conversation read.
type Lister interface {
	ListConversations(ctx context.Context, q model.Query) ([]model.Record, error)
}

// Reader translates pagination parameters into bounded queries and
// derives resumption cursors from the delivered rows.
type Reader struct {
	store Lister
}

// NewReader wires the reader to its backing store.
func NewReader(store Lister) *Reader {
	return &Reader{store: store}
}

// Read executes exactly one bounded query and returns the matching
// window with its cursor. Ordering defaults to ascending when since is
// set (incremental callers append in chronological order) and
// descending otherwise (fresh callers see the latest activity first);
// an explicit order always wins.
func (r *Reader) Read(ctx context.Context, q model.Query) (model.Page, error) {
	switch q.Order {
	case "", model.OrderAsc, model.OrderDesc:
	default:
		return model.Page{}, ErrInvalidOrder
	}
	if q.Order == "" {
		if q.Since != nil {
			q.Order = model.OrderAsc
		} else {
			q.Order = model.OrderDesc
		}
	}
	q.Limit = clampLimit(q.Limit)

	rows, err := r.store.ListConversations(ctx, q)
	if err != nil {
		return model.Page{}, fmt.Errorf("conversation query: %w", err)
	}
	if rows == nil {
		rows = []model.Record{}
	}

	return model.Page{Rows: rows, Cursor: deriveCursor(rows, q)}, nil
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// deriveCursor computes the resumption boundary from the rows actually
// delivered, never from the query's nominal bound. NewestCreatedAt is
// the last row in the returned order (the endpoint nearest the
// pagination direction); an empty window falls back to the caller's
// own bounds so the cursor never regresses.
func deriveCursor(rows []model.Record, q model.Query) model.Cursor {
	if len(rows) == 0 {
		return model.Cursor{NewestCreatedAt: q.Since, OldestCreatedAt: q.Before}
	}
	last := rows[len(rows)-1].CreatedAt
	first := rows[0].CreatedAt
	return model.Cursor{NewestCreatedAt: &last, OldestCreatedAt: &first}
}
