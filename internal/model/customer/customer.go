package customer

import (
	"encoding/json"
	"time"
)

// Profile mirrors a row of the customer_profiles table.
type Profile struct {
	ProfileKey string    `json:"profile_key"`
	Name       string    `json:"name,omitempty"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Order is a cached order synced from the shop backend. OrderData is
// kept opaque; the dashboard only peeks at status and total_price.
type Order struct {
	ID         string          `json:"id"`
	ProfileKey string          `json:"profile_key"`
	OrderDate  time.Time       `json:"order_date"`
	OrderData  json.RawMessage `json:"order_data"`
}
