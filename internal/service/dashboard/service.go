// Package dashboard derives the descriptive metrics the CRM landing
// page renders from the conversation log and cached orders.
package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jagmag/crm-backend/internal/model/conversation"
	"github.com/jagmag/crm-backend/internal/model/customer"
)

// Store is the read surface the dashboard aggregates over.
type Store interface {
	ListConversationStats(ctx context.Context) ([]conversation.Record, error)
	CountCustomerProfiles(ctx context.Context) (int, error)
	ListOrders(ctx context.Context) ([]customer.Order, error)
}

// Overview summarizes activity across the whole log.
type Overview struct {
	TotalConversations int   `json:"totalConversations"`
	TotalCustomers     int   `json:"totalCustomers"`
	ActiveToday        int   `json:"activeToday"`
	PriorityCount      int   `json:"priorityCount"`
	AvgResponseTime    int64 `json:"avgResponseTime"` // milliseconds
	SuccessRate        int   `json:"successRate"`     // percent
}

// Business counts intent-classified traffic.
type Business struct {
	ProductInquiries int `json:"productInquiries"`
	OrderLookups     int `json:"orderLookups"`
	QuotesRequested  int `json:"quotesRequested"`
	LeadsGenerated   int `json:"leadsGenerated"`
}

// Customers describes acquisition and engagement.
type Customers struct {
	NewCustomers7d     int `json:"newCustomers7d"`
	ReturningCustomers int `json:"returningCustomers"`
	AvgMessages        int `json:"avgMessages"`
	EngagementScore    int `json:"engagementScore"`
}

// Orders summarizes the cached order table.
type Orders struct {
	TotalOrders    int `json:"totalOrders"`
	PendingOrders  int `json:"pendingOrders"`
	AvgOrderValue  int `json:"avgOrderValue"`
	RecentOrders7d int `json:"recentOrders7d"`
}

// Metrics is the full dashboard payload.
type Metrics struct {
	Overview  Overview       `json:"overview"`
	Business  Business       `json:"business"`
	Customers Customers      `json:"customers"`
	Orders    Orders         `json:"orders"`
	Channels  map[string]int `json:"channels"`
}

// Service loads the raw rows and computes the metrics.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Build assembles the dashboard. Conversation rows are required;
// profile counts and orders degrade gracefully when their tables are
// unavailable, matching how operators actually deploy this thing.
func (s *Service) Build(ctx context.Context) (Metrics, error) {
	rows, err := s.store.ListConversationStats(ctx)
	if err != nil {
		return Metrics{}, err
	}

	profileCount := -1
	if n, err := s.store.CountCustomerProfiles(ctx); err == nil {
		profileCount = n
	} else {
		log.Printf("[dashboard] profile count failed (non-fatal): %v", err)
	}

	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		log.Printf("[dashboard] order lookup failed (non-fatal): %v", err)
		orders = nil
	}

	return Compute(rows, orders, profileCount, s.now()), nil
}

// Compute derives all metrics from the supplied rows. profileCount < 0
// means the profile table was unavailable and the distinct-user count
// is used instead.
func Compute(rows []conversation.Record, orders []customer.Order, profileCount int, now time.Time) Metrics {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	sevenDaysAgo := now.AddDate(0, 0, -7)

	users := map[string]bool{}
	activeToday := map[string]bool{}
	priorityUsers := map[string]bool{}
	hasAssistant := map[string]bool{}
	firstSeen := map[string]time.Time{}
	lastSeen := map[string]time.Time{}
	channels := map[string]int{}
	intents := map[string]int{
		"product_inquiry": 0,
		"order_lookup":    0,
		"quote_request":   0,
		"support":         0,
	}

	for _, m := range rows {
		uid := m.UserID
		if uid == "" {
			uid = "unknown"
		}
		users[uid] = true

		dt := m.CreatedAt
		if fs, ok := firstSeen[uid]; !ok || dt.Before(fs) {
			firstSeen[uid] = dt
		}
		if ls, ok := lastSeen[uid]; !ok || dt.After(ls) {
			lastSeen[uid] = dt
		}
		if !dt.Before(todayStart) {
			activeToday[uid] = true
		}

		if m.IsPriority || m.NeedsHuman {
			priorityUsers[uid] = true
		}
		if !strings.EqualFold(m.Role, "user") {
			hasAssistant[uid] = true
		}

		ch := strings.ToLower(m.Channel)
		if ch == "" {
			ch = "unknown"
		}
		channels[ch]++

		intent := strings.ToLower(m.Intent)
		if _, ok := intents[intent]; ok {
			intents[intent]++
		}
	}

	totalConversations := len(users)
	totalCustomers := totalConversations
	if profileCount >= 0 {
		totalCustomers = profileCount
	}

	withAssistant := 0
	for _, v := range hasAssistant {
		if v {
			withAssistant++
		}
	}
	successRate := 0
	if totalConversations > 0 {
		successRate = int(math.Round(float64(withAssistant) / float64(totalConversations) * 100))
	}

	newCustomers7d := 0
	returning := 0
	for uid, fs := range firstSeen {
		ls := lastSeen[uid]
		if !fs.Before(sevenDaysAgo) {
			newCustomers7d++
		}
		if fs.Before(sevenDaysAgo) && !ls.Before(sevenDaysAgo) {
			returning++
		}
	}

	avgMessages := 0
	if totalConversations > 0 {
		avgMessages = int(math.Round(float64(len(rows)) / float64(totalConversations)))
	}
	engagement := avgMessages * 10
	if engagement > 100 {
		engagement = 100
	}

	totalOrders := len(orders)
	pending := 0
	recent7d := 0
	sumValue := 0.0
	counted := 0
	for _, o := range orders {
		status, price, hasPrice := parseOrderData(o.OrderData)
		if strings.Contains(status, "pending") || strings.Contains(status, "unfulfilled") || strings.Contains(status, "open") {
			pending++
		}
		if !o.OrderDate.Before(sevenDaysAgo) {
			recent7d++
		}
		if hasPrice {
			sumValue += price
			counted++
		}
	}
	avgOrderValue := 0
	if counted > 0 {
		avgOrderValue = int(math.Round(sumValue / float64(counted)))
	}

	return Metrics{
		Overview: Overview{
			TotalConversations: totalConversations,
			TotalCustomers:     totalCustomers,
			ActiveToday:        len(activeToday),
			PriorityCount:      len(priorityUsers),
			AvgResponseTime:    avgResponseTimeMs(rows),
			SuccessRate:        successRate,
		},
		Business: Business{
			ProductInquiries: intents["product_inquiry"],
			OrderLookups:     intents["order_lookup"],
			QuotesRequested:  intents["quote_request"],
			LeadsGenerated:   intents["product_inquiry"] + intents["quote_request"],
		},
		Customers: Customers{
			NewCustomers7d:     newCustomers7d,
			ReturningCustomers: returning,
			AvgMessages:        avgMessages,
			EngagementScore:    engagement,
		},
		Orders: Orders{
			TotalOrders:    totalOrders,
			PendingOrders:  pending,
			AvgOrderValue:  avgOrderValue,
			RecentOrders7d: recent7d,
		},
		Channels: channels,
	}
}

// avgResponseTimeMs approximates responsiveness: the mean delay between
// a user message and the next non-user message within the same user
// thread.
func avgResponseTimeMs(rows []conversation.Record) int64 {
	byUser := map[string][]conversation.Record{}
	for _, r := range rows {
		uid := r.UserID
		if uid == "" {
			uid = "unknown"
		}
		byUser[uid] = append(byUser[uid], r)
	}

	var deltas []int64
	for _, msgs := range byUser {
		sort.SliceStable(msgs, func(i, j int) bool {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		})
		for i := 0; i < len(msgs)-1; i++ {
			cur, next := msgs[i], msgs[i+1]
			if strings.EqualFold(cur.Role, "user") && !strings.EqualFold(next.Role, "user") {
				d := next.CreatedAt.Sub(cur.CreatedAt)
				if d >= 0 {
					deltas = append(deltas, d.Milliseconds())
				}
			}
		}
	}

	if len(deltas) == 0 {
		return 0
	}
	var sum int64
	for _, d := range deltas {
		sum += d
	}
	return int64(math.Round(float64(sum) / float64(len(deltas))))
}

// parseOrderData pulls status and total_price out of the opaque order
// payload. total_price arrives as either a number or a string depending
// on the shop export.
func parseOrderData(raw []byte) (status string, price float64, ok bool) {
	if len(raw) == 0 {
		return "", 0, false
	}
	var data struct {
		Status     string `json:"status"`
		TotalPrice any    `json:"total_price"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", 0, false
	}
	status = strings.ToLower(data.Status)
	switch v := data.TotalPrice.(type) {
	case float64:
		return status, v, true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return status, f, true
		}
	}
	return status, 0, false
}
