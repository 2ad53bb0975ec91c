package postgres

import (
	"context"

	"github.com/ghuser/tablepos/pkg/database"
	"github.com/ghuser/tablepos/services/order/domain/models"
	"github.com/ghuser/tablepos/services/order/domain/repositories"
)

const (
	loadOrderStatusSQL = `
SELECT slot_kind, slot_number, is_occupied
FROM order_status
ORDER BY slot_kind, slot_number`

	upsertOrderStatusSQL = `
INSERT INTO order_status (slot_kind, slot_number, is_occupied, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (slot_kind, slot_number)
DO UPDATE SET is_occupied = EXCLUDED.is_occupied, updated_at = EXCLUDED.updated_at`
)

// OccupancyBackend persists slot flags in the order_status table, one row
// per slot.
type OccupancyBackend struct {
	db *database.Database
}

var _ repositories.OccupancyBackend = (*OccupancyBackend)(nil)

// NewOccupancyBackend returns an OccupancyBackend over the given pool.
func NewOccupancyBackend(db *database.Database) *OccupancyBackend {
	return &OccupancyBackend{db: db}
}

// Load returns every stored flag. Rows with an unknown kind are rejected.
func (b *OccupancyBackend) Load(ctx context.Context) ([]repositories.OccupancyRecord, error) {
	rows, err := b.db.DB().QueryContext(ctx, loadOrderStatusSQL)
	if err != nil {
		return nil, storageErr("query order status", err)
	}
	defer rows.Close()

	var out []repositories.OccupancyRecord
	for rows.Next() {
		var (
			kind     string
			number   int
			occupied bool
		)
		if err := rows.Scan(&kind, &number, &occupied); err != nil {
			return nil, storageErr("scan order status", err)
		}
		k, err := models.ParseKind(kind)
		if err != nil {
			return nil, storageErr("decode order status row", err)
		}
		slot, err := models.NewSlot(k, number)
		if err != nil {
			return nil, storageErr("decode order status row", err)
		}
		out = append(out, repositories.OccupancyRecord{Slot: slot, Occupied: occupied})
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate order status", err)
	}
	return out, nil
}

// Upsert writes the flag for rec.Slot in a single statement.
func (b *OccupancyBackend) Upsert(ctx context.Context, rec repositories.OccupancyRecord) error {
	if _, err := b.db.DB().ExecContext(ctx, upsertOrderStatusSQL,
		rec.Slot.Kind.String(), rec.Slot.Number, rec.Occupied,
	); err != nil {
		return storageErr("upsert order status", err)
	}
	return nil
}
