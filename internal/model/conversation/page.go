package conversation

import "time"

// Order is the sort direction over created_at.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Query bounds a single read of the conversation log. Since and Before
// are strict bounds on created_at; UserID, Channel and MemoryID are
// conjunctive equality filters.
type Query struct {
	Since    *time.Time
	Before   *time.Time
	Limit    int
	Order    Order
	UserID   string
	Channel  string
	MemoryID string
}

// Cursor lets the caller resume a read without gaps or duplicates.
// NewestCreatedAt is the window boundary nearest the pagination
// direction: the created_at of the last row in the returned order
// (ascending reads resume with since, descending reads load older rows
// with before). OldestCreatedAt is the opposite endpoint.
type Cursor struct {
	NewestCreatedAt *time.Time `json:"newestCreatedAt"`
	OldestCreatedAt *time.Time `json:"oldestCreatedAt,omitempty"`
}

// Page is one bounded window of the log plus its resumption cursor.
type Page struct {
	Rows   []Record `json:"rows"`
	Cursor Cursor   `json:"cursor"`
}
