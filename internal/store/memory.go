package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jagmag/crm-backend/internal/model/conversation"
	"github.com/jagmag/crm-backend/internal/model/customer"
)

// Memory implements Store with in-memory slices, suitable for local
// development and tests when no DATABASE_URL is configured.
type Memory struct {
	mu            sync.RWMutex
	conversations []conversation.Record
	profiles      map[string]customer.Profile
	orders        []customer.Order
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{profiles: make(map[string]customer.Profile)}
}

// AddConversation seeds a record, assigning an id when absent.
func (m *Memory) AddConversation(r conversation.Record) conversation.Record {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.mu.Lock()
	m.conversations = append(m.conversations, r)
	m.mu.Unlock()
	return r
}

// AddProfile seeds a customer profile keyed by profile_key.
func (m *Memory) AddProfile(p customer.Profile) {
	m.mu.Lock()
	m.profiles[p.ProfileKey] = p
	m.mu.Unlock()
}

// AddOrder seeds a cached order, assigning an id when absent.
func (m *Memory) AddOrder(o customer.Order) customer.Order {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	m.mu.Lock()
	m.orders = append(m.orders, o)
	m.mu.Unlock()
	return o
}

func (m *Memory) ListConversations(_ context.Context, q conversation.Query) ([]conversation.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []conversation.Record
	for _, r := range m.conversations {
		if q.UserID != "" && r.UserID != q.UserID {
			continue
		}
		if q.Channel != "" && r.Channel != q.Channel {
			continue
		}
		if q.MemoryID != "" && r.MemoryID != q.MemoryID {
			continue
		}
		if q.Since != nil && !r.CreatedAt.After(*q.Since) {
			continue
		}
		if q.Before != nil && !r.CreatedAt.Before(*q.Before) {
			continue
		}
		matched = append(matched, r)
	}

	asc := q.Order == conversation.OrderAsc
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if asc {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		// id is the tiebreaker for rows sharing a created_at.
		if asc {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (m *Memory) ListConversationStats(_ context.Context) ([]conversation.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]conversation.Record(nil), m.conversations...), nil
}

func (m *Memory) GetCustomerProfile(_ context.Context, profileKey string) (*customer.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[profileKey]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) CountCustomerProfiles(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.profiles), nil
}

func (m *Memory) ListOrdersByProfile(_ context.Context, profileKey string) ([]customer.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []customer.Order
	for _, o := range m.orders {
		if o.ProfileKey == profileKey {
			matched = append(matched, o)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OrderDate.After(matched[j].OrderDate)
	})
	return matched, nil
}

func (m *Memory) ListOrders(_ context.Context) ([]customer.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]customer.Order(nil), m.orders...), nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
