package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kitchen-admin/internal/common/db"
	"kitchen-admin/internal/domain"
)

type Menu interface {
	List(ctx context.Context) ([]domain.MenuItem, error)
	Get(ctx context.Context, id string) (domain.MenuItem, error)
	Insert(ctx context.Context, m domain.MenuItem) (domain.MenuItem, error)
	Update(ctx context.Context, m domain.MenuItem) error
	Delete(ctx context.Context, id string) error
	SetAvailability(ctx context.Context, id string, available bool) error
	SetImageURL(ctx context.Context, id, url string) error
}

type menuPG struct {
	conn *db.Conn
}

func NewMenuPG(conn *db.Conn) Menu {
	return &menuPG{conn: conn}
}

const menuColumns = `id, name, description, price, category, image_url, is_available, created_at`

func (r *menuPG) List(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := r.conn.Query(ctx, `SELECT `+menuColumns+` FROM menu_items ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: list menu items: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []domain.MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan menu item: %v", domain.ErrStoreUnavailable, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate menu items: %v", domain.ErrStoreUnavailable, err)
	}
	return out, nil
}

func (r *menuPG) Get(ctx context.Context, id string) (domain.MenuItem, error) {
	m, err := scanMenuItem(r.conn.QueryRow(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.MenuItem{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("%w: get menu item: %v", domain.ErrStoreUnavailable, err)
	}
	return m, nil
}

func (r *menuPG) Insert(ctx context.Context, m domain.MenuItem) (domain.MenuItem, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := r.conn.Exec(ctx, `
		INSERT INTO menu_items (id, name, description, price, category, image_url, is_available, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, m.ID, m.Name, m.Description, m.Price, m.Category, m.ImageURL, m.IsAvailable, m.CreatedAt)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("%w: insert menu item: %v", domain.ErrStoreUnavailable, err)
	}
	return m, nil
}

func (r *menuPG) Update(ctx context.Context, m domain.MenuItem) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE menu_items
		SET name=$2, description=$3, price=$4, category=$5, image_url=$6, is_available=$7
		WHERE id=$1
	`, m.ID, m.Name, m.Description, m.Price, m.Category, m.ImageURL, m.IsAvailable)
	if err != nil {
		return fmt.Errorf("%w: update menu item: %v", domain.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *menuPG) Delete(ctx context.Context, id string) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM menu_items WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%w: delete menu item: %v", domain.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *menuPG) SetAvailability(ctx context.Context, id string, available bool) error {
	tag, err := r.conn.Exec(ctx, `UPDATE menu_items SET is_available=$2 WHERE id=$1`, id, available)
	if err != nil {
		return fmt.Errorf("%w: set availability: %v", domain.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *menuPG) SetImageURL(ctx context.Context, id, url string) error {
	tag, err := r.conn.Exec(ctx, `UPDATE menu_items SET image_url=$2 WHERE id=$1`, id, url)
	if err != nil {
		return fmt.Errorf("%w: set image url: %v", domain.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanMenuItem(row pgx.Row) (domain.MenuItem, error) {
	var m domain.MenuItem
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.Category, &m.ImageURL, &m.IsAvailable, &m.CreatedAt)
	return m, err
}
