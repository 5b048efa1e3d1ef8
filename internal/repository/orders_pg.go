package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"kitchen-admin/internal/common/db"
	"kitchen-admin/internal/domain"
)

type Orders interface {
	ListActive(ctx context.Context) ([]domain.Order, error)
	ListCompleted(ctx context.Context, since time.Time) ([]domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	Insert(ctx context.Context, o domain.Order) error
	UpdateStatus(ctx context.Context, id string, status domain.Status, changedBy string) error
}

type ordersPG struct {
	conn *db.Conn
}

func NewOrdersPG(conn *db.Conn) Orders {
	return &ordersPG{conn: conn}
}

const orderColumns = `id, customer_name, total, status, pickup_code, created_at`

// ListActive returns every order not yet completed, newest first. Cancelled
// orders stay on the board so staff can see work to stop.
func (r *ordersPG) ListActive(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status <> $1
		ORDER BY created_at DESC
	`, string(domain.StatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("%w: list active orders: %v", domain.ErrStoreUnavailable, err)
	}
	return r.collect(ctx, rows)
}

// ListCompleted is the history read path: completed orders since the given
// time, newest first. It never touches the active-order cache.
func (r *ordersPG) ListCompleted(ctx context.Context, since time.Time) ([]domain.Order, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`, string(domain.StatusCompleted), since)
	if err != nil {
		return nil, fmt.Errorf("%w: list completed orders: %v", domain.ErrStoreUnavailable, err)
	}
	return r.collect(ctx, rows)
}

func (r *ordersPG) Get(ctx context.Context, id string) (domain.Order, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: get order: %v", domain.ErrStoreUnavailable, err)
	}
	items, err := r.loadItems(ctx, []string{o.ID})
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (r *ordersPG) Insert(ctx context.Context, o domain.Order) error {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, customer_name, total, status, pickup_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
	`, o.ID, o.CustomerName, o.Total, string(o.Status), o.PickupCode, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert order: %v", domain.ErrStoreUnavailable, err)
	}
	for _, li := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, menu_item_id, name, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
		`, o.ID, li.MenuItemID, li.Name, li.Quantity, li.Price)
		if err != nil {
			return fmt.Errorf("%w: insert order item %s: %v", domain.ErrStoreUnavailable, li.Name, err)
		}
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by)
		VALUES ($1, $2, 'ordering-surface')
	`, o.ID, string(o.Status))
	if err != nil {
		return fmt.Errorf("%w: insert status log: %v", domain.ErrStoreUnavailable, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// UpdateStatus persists a status change and its audit-log entry in one
// transaction. The row lock only keeps the update and log entry consistent
// with each other; there is no version check, so concurrent writers resolve
// last-write-wins.
func (r *ordersPG) UpdateStatus(ctx context.Context, id string, status domain.Status, changedBy string) error {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&cur)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: lock order: %v", domain.ErrStoreUnavailable, err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status=$2, updated_at=now() WHERE id=$1
	`, id, string(status)); err != nil {
		return fmt.Errorf("%w: update status: %v", domain.ErrStoreUnavailable, err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by)
		VALUES ($1, $2, $3)
	`, id, string(status), changedBy); err != nil {
		return fmt.Errorf("%w: insert status log: %v", domain.ErrStoreUnavailable, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *ordersPG) collect(ctx context.Context, rows pgx.Rows) ([]domain.Order, error) {
	defer rows.Close()
	var out []domain.Order
	var ids []string
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan order: %v", domain.ErrStoreUnavailable, err)
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate orders: %v", domain.ErrStoreUnavailable, err)
	}
	if len(ids) == 0 {
		return out, nil
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

func (r *ordersPG) loadItems(ctx context.Context, orderIDs []string) (map[string][]domain.LineItem, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT order_id, menu_item_id, name, quantity, price
		FROM order_items WHERE order_id = ANY($1)
		ORDER BY id
	`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: load order items: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	items := make(map[string][]domain.LineItem)
	for rows.Next() {
		var orderID string
		var li domain.LineItem
		if err := rows.Scan(&orderID, &li.MenuItemID, &li.Name, &li.Quantity, &li.Price); err != nil {
			return nil, fmt.Errorf("%w: scan order item: %v", domain.ErrStoreUnavailable, err)
		}
		items[orderID] = append(items[orderID], li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate order items: %v", domain.ErrStoreUnavailable, err)
	}
	return items, nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var status string
	if err := row.Scan(&o.ID, &o.CustomerName, &o.Total, &status, &o.PickupCode, &o.CreatedAt); err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.Status(status)
	return o, nil
}
