package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/jagmag/crm-backend/internal/model/conversation"
	"github.com/jagmag/crm-backend/internal/model/customer"
)

// Postgres reads the hosted database directly over database/sql.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection pool and verifies connectivity. The
// schema already exists; no migrations run here.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &Postgres{db: db}, nil
}

const conversationColumns = `id, COALESCE(user_id,''), COALESCE(channel,''), COALESCE(role,''), COALESCE(message,''), COALESCE(intent,''), COALESCE(memory_id,''), COALESCE(is_priority,false), COALESCE(needs_human,false), created_at`

func (p *Postgres) ListConversations(ctx context.Context, q conversation.Query) ([]conversation.Record, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.UserID != "" {
		where = append(where, "user_id = "+arg(q.UserID))
	}
	if q.Channel != "" {
		where = append(where, "channel = "+arg(q.Channel))
	}
	if q.MemoryID != "" {
		where = append(where, "memory_id = "+arg(q.MemoryID))
	}
	if q.Since != nil {
		where = append(where, "created_at > "+arg(*q.Since))
	}
	if q.Before != nil {
		where = append(where, "created_at < "+arg(*q.Before))
	}

	dir := "DESC"
	if q.Order == conversation.OrderAsc {
		dir = "ASC"
	}

	query := "SELECT " + conversationColumns + " FROM conversations"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	// id is the tiebreaker for rows sharing a created_at.
	query += fmt.Sprintf(" ORDER BY created_at %s, id %s LIMIT %s", dir, dir, arg(q.Limit))

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []conversation.Record
	for rows.Next() {
		var r conversation.Record
		if err := rows.Scan(&r.ID, &r.UserID, &r.Channel, &r.Role, &r.Message, &r.Intent, &r.MemoryID, &r.IsPriority, &r.NeedsHuman, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (p *Postgres) ListConversationStats(ctx context.Context) ([]conversation.Record, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT COALESCE(user_id,''), COALESCE(channel,''), COALESCE(role,''), COALESCE(intent,''), COALESCE(is_priority,false), COALESCE(needs_human,false), created_at FROM conversations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []conversation.Record
	for rows.Next() {
		var r conversation.Record
		if err := rows.Scan(&r.UserID, &r.Channel, &r.Role, &r.Intent, &r.IsPriority, &r.NeedsHuman, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (p *Postgres) GetCustomerProfile(ctx context.Context, profileKey string) (*customer.Profile, error) {
	row := p.db.QueryRowContext(ctx, `SELECT profile_key, COALESCE(name,''), COALESCE(email,''), COALESCE(phone,''), COALESCE(notes,''), created_at FROM customer_profiles WHERE profile_key = $1`, profileKey)
	var pr customer.Profile
	if err := row.Scan(&pr.ProfileKey, &pr.Name, &pr.Email, &pr.Phone, &pr.Notes, &pr.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &pr, nil
}

func (p *Postgres) CountCustomerProfiles(ctx context.Context) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customer_profiles`).Scan(&n)
	return n, err
}

func (p *Postgres) ListOrdersByProfile(ctx context.Context, profileKey string) ([]customer.Order, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, profile_key, order_date, order_data FROM customer_orders WHERE profile_key = $1 ORDER BY order_date DESC`, profileKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (p *Postgres) ListOrders(ctx context.Context) ([]customer.Order, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, profile_key, order_date, order_data FROM customer_orders`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func scanOrders(rows *sql.Rows) ([]customer.Order, error) {
	var orders []customer.Order
	for rows.Next() {
		var o customer.Order
		var data []byte
		if err := rows.Scan(&o.ID, &o.ProfileKey, &o.OrderDate, &data); err != nil {
			return nil, err
		}
		o.OrderData = data
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
