package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const orderMeterName = "github.com/ghuser/tablepos/order"

// OrderMetrics records order lifecycle counters. Setup builds one on its
// meter provider; a nil *OrderMetrics records nothing.
type OrderMetrics struct {
	committed   metric.Int64Counter
	discarded   metric.Int64Counter
	settled     metric.Int64Counter
	reconciled  metric.Int64Counter
	consistency metric.Int64Counter
	amount      metric.Float64Histogram
}

func newOrderMetrics(m metric.Meter) (*OrderMetrics, error) {
	var (
		om  OrderMetrics
		err error
	)
	if om.committed, err = m.Int64Counter("orders_committed_total",
		metric.WithDescription("Orders committed, by slot kind and mode (new or edit)")); err != nil {
		return nil, err
	}
	if om.discarded, err = m.Int64Counter("orders_discarded_total",
		metric.WithDescription("Orders discarded, by slot kind")); err != nil {
		return nil, err
	}
	if om.settled, err = m.Int64Counter("orders_settled_total",
		metric.WithDescription("Orders marked paid, by slot kind")); err != nil {
		return nil, err
	}
	if om.reconciled, err = m.Int64Counter("occupancy_reconciled_total",
		metric.WithDescription("Occupancy flags corrected to match unpaid orders")); err != nil {
		return nil, err
	}
	if om.consistency, err = m.Int64Counter("occupancy_consistency_errors_total",
		metric.WithDescription("Occupancy and order disagreements detected when opening a slot")); err != nil {
		return nil, err
	}
	if om.amount, err = m.Float64Histogram("order_total_amount",
		metric.WithDescription("Total of committed orders"),
		metric.WithExplicitBucketBoundaries(5, 10, 20, 50, 100, 200, 500)); err != nil {
		return nil, err
	}
	return &om, nil
}

// Committed records a commit. editing distinguishes replace from append.
func (m *OrderMetrics) Committed(ctx context.Context, kind string, editing bool, total float64) {
	if m == nil {
		return
	}
	mode := "new"
	if editing {
		mode = "edit"
	}
	m.committed.Add(ctx, 1, metric.WithAttributes(attribute.String("slot_kind", kind), attribute.String("mode", mode)))
	m.amount.Record(ctx, total, metric.WithAttributes(attribute.String("slot_kind", kind)))
}

func (m *OrderMetrics) Discarded(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.discarded.Add(ctx, 1, metric.WithAttributes(attribute.String("slot_kind", kind)))
}

func (m *OrderMetrics) Settled(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.settled.Add(ctx, 1, metric.WithAttributes(attribute.String("slot_kind", kind)))
}

// Reconciled records n corrected flags.
func (m *OrderMetrics) Reconciled(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.reconciled.Add(ctx, int64(n))
}

func (m *OrderMetrics) ConsistencyError(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.consistency.Add(ctx, 1, metric.WithAttributes(attribute.String("slot_kind", kind)))
}
