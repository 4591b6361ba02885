package conversation

import "time"

// Record is a single message in the conversation log. Rows are written
// by the external ingestion agent and are read-only here.
type Record struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Channel    string    `json:"channel"`
	Role       string    `json:"role"`
	Message    string    `json:"message"`
	Intent     string    `json:"intent,omitempty"`
	MemoryID   string    `json:"memory_id,omitempty"`
	IsPriority bool      `json:"is_priority"`
	NeedsHuman bool      `json:"needs_human"`
	CreatedAt  time.Time `json:"created_at"`
}
