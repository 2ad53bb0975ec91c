package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/ghuser/tablepos/pkg/database"
	"github.com/ghuser/tablepos/pkg/events"
	orderdomain "github.com/ghuser/tablepos/services/order/domain"
	domainevents "github.com/ghuser/tablepos/services/order/domain/events"
	"github.com/ghuser/tablepos/services/order/domain/models"
	"github.com/ghuser/tablepos/services/order/domain/repositories"
)

const (
	listOrdersSQL = `
SELECT id, slot_kind, slot_number, total, paid, created_at
FROM orders
ORDER BY created_at DESC, length(id) DESC, id DESC`

	listAllItemsSQL = `
SELECT order_id, menu_entry_id, name, unit_price, quantity, category
FROM order_items
ORDER BY order_id, position`

	getOrderSQL = `
SELECT id, slot_kind, slot_number, total, paid, created_at
FROM orders WHERE id = $1`

	lockOrderSQL = `SELECT paid FROM orders WHERE id = $1 FOR UPDATE`

	listOrderItemsSQL = `
SELECT order_id, menu_entry_id, name, unit_price, quantity, category
FROM order_items WHERE order_id = $1
ORDER BY position`

	insertOrderSQL = `
INSERT INTO orders (id, slot_kind, slot_number, total, paid, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	updateOrderSQL = `
UPDATE orders SET slot_kind = $2, slot_number = $3, total = $4, paid = $5
WHERE id = $1`

	insertOrderItemSQL = `
INSERT INTO order_items (order_id, position, menu_entry_id, name, unit_price, quantity, category)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	deleteOrderItemsSQL = `DELETE FROM order_items WHERE order_id = $1`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`

	lockAllOrdersSQL = `SELECT id FROM orders ORDER BY id FOR UPDATE`

	deleteAllOrdersSQL = `DELETE FROM orders`
)

// OrderRepository implements repositories.OrderRepository against PostgreSQL.
// Orders live in two tables; order_items rows cascade with their order.
type OrderRepository struct {
	db  *database.Database
	bus *events.EventBus
	now func() time.Time
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository returns an OrderRepository backed by the given pool. When
// bus is non-nil every mutation publishes its domain event in the same
// transaction.
func NewOrderRepository(db *database.Database, bus *events.EventBus) *OrderRepository {
	return &OrderRepository{db: db, bus: bus, now: time.Now}
}

// ListAll returns every order, most recent first. Orders and their items are
// read in one snapshot so a concurrent write cannot pair a total with the
// other version's lines. A record that fails validation aborts the read with
// ErrInvalidOrder.
func (r *OrderRepository) ListAll(ctx context.Context) ([]*models.Order, error) {
	var orders []*models.Order
	err := r.db.WithSnapshot(ctx, func(tx *sql.Tx) error {
		var err error
		orders, err = listAll(ctx, tx)
		return err
	})
	if err != nil {
		return nil, classify("list orders", err)
	}
	return orders, nil
}

func listAll(ctx context.Context, q database.DBTX) ([]*models.Order, error) {
	rows, err := q.QueryContext(ctx, listOrdersSQL)
	if err != nil {
		return nil, storageErr("query orders", err)
	}
	defer rows.Close()

	var orders []*models.Order
	byID := make(map[string]*models.Order)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
		byID[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate orders", err)
	}

	itemRows, err := q.QueryContext(ctx, listAllItemsSQL)
	if err != nil {
		return nil, storageErr("query order items", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		orderID, li, err := scanLineItem(itemRows)
		if err != nil {
			return nil, err
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, li)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, storageErr("iterate order items", err)
	}

	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", orderdomain.ErrInvalidOrder, err)
		}
	}
	return orders, nil
}

// FindByID returns ErrOrderNotFound if no row matches. The order row and its
// items come from one snapshot.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var o *models.Order
	err := r.db.WithSnapshot(ctx, func(tx *sql.Tx) error {
		var err error
		o, err = r.findByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, classify("find order", err)
	}
	return o, nil
}

func (r *OrderRepository) findByID(ctx context.Context, q database.DBTX, id string) (*models.Order, error) {
	o, err := scanOrder(q.QueryRowContext(ctx, getOrderSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, orderdomain.ErrOrderNotFound
		}
		return nil, err
	}

	rows, err := q.QueryContext(ctx, listOrderItemsSQL, id)
	if err != nil {
		return nil, storageErr("query order items", err)
	}
	defer rows.Close()
	for rows.Next() {
		_, li, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, li)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate order items", err)
	}

	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", orderdomain.ErrInvalidOrder, err)
	}
	return o, nil
}

// Append inserts a new order with its items and publishes order.committed.
// Returns ErrDuplicateID on primary key violations.
func (r *OrderRepository) Append(ctx context.Context, order *models.Order) error {
	if err := order.Validate(); err != nil {
		return fmt.Errorf("%w: %w", orderdomain.ErrInvalidOrder, err)
	}
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertOrderSQL,
			order.ID, order.Slot.Kind.String(), order.Slot.Number,
			order.Total.String(), order.Paid, order.CreatedAt.UTC(),
		); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return orderdomain.ErrDuplicateID
			}
			return storageErr("insert order", err)
		}
		if err := insertItems(ctx, tx, order); err != nil {
			return err
		}
		return r.publishOrder(ctx, tx, domainevents.TopicOrderCommitted, order)
	})
	return classify("append order", err)
}

// Replace overwrites an existing order under a row lock so concurrent
// replaces of the same id serialize. Publishes order.settled when the order
// becomes paid and order.updated otherwise.
func (r *OrderRepository) Replace(ctx context.Context, order *models.Order) error {
	if err := order.Validate(); err != nil {
		return fmt.Errorf("%w: %w", orderdomain.ErrInvalidOrder, err)
	}
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var wasPaid bool
		if err := tx.QueryRowContext(ctx, lockOrderSQL, order.ID).Scan(&wasPaid); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return orderdomain.ErrOrderNotFound
			}
			return storageErr("lock order", err)
		}
		if _, err := tx.ExecContext(ctx, updateOrderSQL,
			order.ID, order.Slot.Kind.String(), order.Slot.Number, order.Total.String(), order.Paid,
		); err != nil {
			return storageErr("update order", err)
		}
		if _, err := tx.ExecContext(ctx, deleteOrderItemsSQL, order.ID); err != nil {
			return storageErr("delete order items", err)
		}
		if err := insertItems(ctx, tx, order); err != nil {
			return err
		}
		topic := domainevents.TopicOrderUpdated
		if order.Paid && !wasPaid {
			topic = domainevents.TopicOrderSettled
		}
		return r.publishOrder(ctx, tx, topic, order)
	})
	return classify("replace order", err)
}

// Remove deletes an order and its items and publishes order.discarded.
func (r *OrderRepository) Remove(ctx context.Context, id string) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		order, err := r.findByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, deleteOrderSQL, id); err != nil {
			return storageErr("delete order", err)
		}
		return r.publishOrder(ctx, tx, domainevents.TopicOrderDiscarded, order)
	})
	return classify("remove order", err)
}

func (r *OrderRepository) findByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*models.Order, error) {
	var paid bool
	if err := tx.QueryRowContext(ctx, lockOrderSQL, id).Scan(&paid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, orderdomain.ErrOrderNotFound
		}
		return nil, storageErr("lock order", err)
	}
	return r.findByID(ctx, tx, id)
}

// Clear deletes every order and publishes a single orders.cleared event.
func (r *OrderRepository) Clear(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, lockAllOrdersSQL)
		if err != nil {
			return storageErr("lock orders", err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				_ = rows.Close()
				return storageErr("scan order id", err)
			}
			ids = append(ids, id)
		}
		if err := rows.Close(); err != nil {
			return storageErr("close rows", err)
		}
		if _, err := tx.ExecContext(ctx, deleteAllOrdersSQL); err != nil {
			return storageErr("delete orders", err)
		}
		if r.bus == nil {
			return nil
		}
		evt := domainevents.OrdersClearedEvent{
			EventID:    uuid.New(),
			Version:    1,
			OrderIDs:   ids,
			OccurredAt: r.now().UTC(),
		}
		msg, err := events.NewJSONMessage(evt.EventID.String(), evt.Version, evt)
		if err != nil {
			return err
		}
		return r.bus.PublishTx(ctx, tx, domainevents.TopicOrdersCleared, msg)
	})
	if err != nil {
		return nil, classify("clear orders", err)
	}
	return ids, nil
}

func insertItems(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	for i, li := range order.Items {
		if _, err := tx.ExecContext(ctx, insertOrderItemSQL,
			order.ID, i, li.MenuEntryID, li.Name, li.UnitPrice.String(), li.Quantity, li.Category,
		); err != nil {
			return storageErr("insert order item", err)
		}
	}
	return nil
}

func (r *OrderRepository) publishOrder(ctx context.Context, tx *sql.Tx, topic string, order *models.Order) error {
	if r.bus == nil {
		return nil
	}
	evt := domainevents.OrderEvent{
		EventID:    uuid.New(),
		Version:    1,
		OrderID:    order.ID,
		SlotKind:   order.Slot.Kind.String(),
		SlotNumber: order.Slot.Number,
		Total:      order.Total.StringFixed(2),
		ItemCount:  len(order.Items),
		Paid:       order.Paid,
		OccurredAt: r.now().UTC(),
	}
	msg, err := events.NewJSONMessage(evt.EventID.String(), evt.Version, evt)
	if err != nil {
		return err
	}
	if err := r.bus.PublishTx(ctx, tx, topic, msg); err != nil {
		return storageErr("publish "+topic, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		id, kind, total string
		number          int
		paid            bool
		createdAt       time.Time
	)
	if err := row.Scan(&id, &kind, &number, &total, &paid, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, storageErr("scan order", err)
	}
	k, err := models.ParseKind(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: order %s: %w", orderdomain.ErrInvalidOrder, id, err)
	}
	t, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("%w: order %s: total %q", orderdomain.ErrInvalidOrder, id, total)
	}
	return &models.Order{
		ID:        id,
		Slot:      models.Slot{Kind: k, Number: number},
		Total:     t,
		CreatedAt: createdAt.UTC(),
		Paid:      paid,
	}, nil
}

func scanLineItem(row rowScanner) (string, models.LineItem, error) {
	var (
		orderID, price string
		li             models.LineItem
	)
	if err := row.Scan(&orderID, &li.MenuEntryID, &li.Name, &price, &li.Quantity, &li.Category); err != nil {
		return "", models.LineItem{}, storageErr("scan order item", err)
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return "", models.LineItem{}, fmt.Errorf("%w: order %s: unit price %q", orderdomain.ErrInvalidOrder, orderID, price)
	}
	li.UnitPrice = p
	return orderID, li, nil
}

// storageErr wraps an I/O fault as ErrStorageFailure.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", orderdomain.ErrStorageFailure, op, err)
}

// classify passes domain sentinels through and wraps anything else, such as
// begin and commit faults from WithTx, as a storage failure.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, orderdomain.ErrStorageFailure),
		errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, orderdomain.ErrDuplicateID),
		errors.Is(err, orderdomain.ErrInvalidOrder):
		return err
	default:
		return storageErr(op, err)
	}
}
