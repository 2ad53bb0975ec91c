package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/ghuser/tablepos/pkg/database"
	menudomain "github.com/ghuser/tablepos/services/menu/domain"
	"github.com/ghuser/tablepos/services/menu/domain/models"
)

const (
	listMenuItemsSQL = `
SELECT id, name, unit_price, category
FROM menu_items
ORDER BY CASE category
	WHEN 'drinks' THEN 0
	WHEN 'food' THEN 1
	WHEN 'cocktails' THEN 2
	WHEN 'indian' THEN 3
	ELSE 4
END, id`

	getMenuItemSQL = `SELECT id, name, unit_price, category FROM menu_items WHERE id = $1`

	insertMenuItemSQL = `INSERT INTO menu_items (id, name, unit_price, category) VALUES ($1, $2, $3, $4)`

	deleteMenuItemSQL = `DELETE FROM menu_items WHERE id = $1`

	countMenuItemsSQL = `SELECT count(*) FROM menu_items`
)

// MenuRepository implements repositories.MenuRepository against PostgreSQL.
type MenuRepository struct {
	db *database.Database
}

// NewMenuRepository returns a MenuRepository backed by the given connection pool.
func NewMenuRepository(db *database.Database) *MenuRepository {
	return &MenuRepository{db: db}
}

// List returns every entry in category display order.
func (r *MenuRepository) List(ctx context.Context) ([]models.MenuEntry, error) {
	rows, err := r.db.DB().QueryContext(ctx, listMenuItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("query menu items: %w", err)
	}
	defer rows.Close()

	var out []models.MenuEntry
	for rows.Next() {
		e, err := scanMenuEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu items: %w", err)
	}
	return out, nil
}

// GetByID returns ErrMenuEntryNotFound if no row matches.
func (r *MenuRepository) GetByID(ctx context.Context, id string) (models.MenuEntry, error) {
	e, err := scanMenuEntry(r.db.DB().QueryRowContext(ctx, getMenuItemSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.MenuEntry{}, menudomain.ErrMenuEntryNotFound
		}
		return models.MenuEntry{}, err
	}
	return e, nil
}

// Save inserts a new entry. Returns ErrMenuEntryAlreadyExists on unique violations.
func (r *MenuRepository) Save(ctx context.Context, entry models.MenuEntry) error {
	_, err := r.db.DB().ExecContext(ctx, insertMenuItemSQL,
		entry.ID, entry.Name, entry.UnitPrice.StringFixed(2), entry.Category.String())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return menudomain.ErrMenuEntryAlreadyExists
		}
		return fmt.Errorf("insert menu item: %w", err)
	}
	return nil
}

// Delete removes an entry. Returns ErrMenuEntryNotFound if no row matched.
func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.DB().ExecContext(ctx, deleteMenuItemSQL, id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	if n == 0 {
		return menudomain.ErrMenuEntryNotFound
	}
	return nil
}

func (r *MenuRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.DB().QueryRowContext(ctx, countMenuItemsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count menu items: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanMenuEntry maps a menu_items row to a validated domain entry.
func scanMenuEntry(row rowScanner) (models.MenuEntry, error) {
	var (
		id, name, price, category string
	)
	if err := row.Scan(&id, &name, &price, &category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.MenuEntry{}, err
		}
		return models.MenuEntry{}, fmt.Errorf("scan menu item: %w", err)
	}
	unitPrice, err := decimal.NewFromString(price)
	if err != nil {
		return models.MenuEntry{}, fmt.Errorf("%w: menu item %s: price %q", menudomain.ErrInvalidMenuEntry, id, price)
	}
	e, err := models.NewMenuEntry(id, name, unitPrice, models.Category(category))
	if err != nil {
		return models.MenuEntry{}, fmt.Errorf("%w: menu item %s: %w", menudomain.ErrInvalidMenuEntry, id, err)
	}
	return e, nil
}
