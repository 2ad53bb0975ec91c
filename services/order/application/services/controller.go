package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ghuser/tablepos/pkg/logger"
	"github.com/ghuser/tablepos/pkg/telemetry"
	"github.com/ghuser/tablepos/pkg/workflows"
	menudomain "github.com/ghuser/tablepos/services/menu/domain"
	menumodels "github.com/ghuser/tablepos/services/menu/domain/models"
	orderdomain "github.com/ghuser/tablepos/services/order/domain"
	"github.com/ghuser/tablepos/services/order/domain/models"
	"github.com/ghuser/tablepos/services/order/domain/repositories"
	domainsvcs "github.com/ghuser/tablepos/services/order/domain/services"
)

// MenuCatalog is the read interface the controller needs from the menu context.
type MenuCatalog interface {
	Lookup(ctx context.Context, id string) (menumodels.MenuEntry, error)
}

// Limits are the valid slot ranges, 1..N per kind.
type Limits struct {
	DineInTables  int
	TakeawaySlots int
}

func (l Limits) of(kind models.Kind) int {
	switch kind {
	case models.KindDineIn:
		return l.DineInTables
	case models.KindTakeaway:
		return l.TakeawaySlots
	}
	return 0
}

// Deps groups the controller's collaborators. Cache and Metrics are optional.
type Deps struct {
	Orders    repositories.OrderRepository
	Occupancy *OccupancyStore
	Menu      MenuCatalog
	IDs       *models.IDGenerator
	Cache     OrderCache
	Metrics   *telemetry.OrderMetrics
	Logger    logger.Logger
	Limits    Limits
}

// Controller runs the order lifecycle per slot: open, build, commit,
// reopen, discard and settle. It keeps occupancy in step with the unpaid
// orders in the repository, which is the source of truth.
type Controller struct {
	repo    repositories.OrderRepository
	occ     *OccupancyStore
	menu    MenuCatalog
	ids     *models.IDGenerator
	cache   OrderCache
	metrics *telemetry.OrderMetrics
	log     logger.Logger
	limits  Limits

	// lifecycle is taken exclusively by passes that compare stored orders
	// with occupancy flags (OpenSession, Reconcile) and shared by the writes
	// that change either side. Acquire it before mu or any session's mu.
	lifecycle sync.RWMutex

	// mu guards sessions. Never acquire a session's mu while holding it.
	mu       sync.Mutex
	sessions map[models.Slot]*session

	// cacheMu orders cache fills against evictions; cacheGen counts evictions.
	cacheMu  sync.Mutex
	cacheGen uint64
}

// NewController wires a Controller. Call Init before serving requests.
func NewController(d Deps) *Controller {
	ids := d.IDs
	if ids == nil {
		ids = models.NewIDGenerator(nil)
	}
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{
		repo:     d.Orders,
		occ:      d.Occupancy,
		menu:     d.Menu,
		ids:      ids,
		cache:    d.Cache,
		metrics:  d.Metrics,
		log:      log,
		limits:   d.Limits,
		sessions: make(map[models.Slot]*session),
	}
}

// Init loads the occupancy view and reconciles it with the stored orders.
func (c *Controller) Init(ctx context.Context) error {
	if err := c.occ.Init(ctx); err != nil {
		return err
	}
	res, err := c.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("initial reconcile: %w", err)
	}
	c.log.InfoContext(ctx, "order lifecycle initialized",
		"raised", len(res.Raised), "released", len(res.Released))
	return nil
}

// SlotLimit returns the highest valid slot number for kind.
func (c *Controller) SlotLimit(kind models.Kind) int {
	return c.limits.of(kind)
}

func (c *Controller) slot(kind models.Kind, n int) (models.Slot, error) {
	if !kind.Valid() {
		return models.Slot{}, fmt.Errorf("%w: unknown kind %q", orderdomain.ErrInvalidSlot, kind)
	}
	if limit := c.limits.of(kind); n < 1 || n > limit {
		return models.Slot{}, fmt.Errorf("%w: %s %d outside 1..%d", orderdomain.ErrInvalidSlot, kind, n, limit)
	}
	return models.Slot{Kind: kind, Number: n}, nil
}

// OpenSession starts building a new order for the slot, or resumes the
// unsaved session already open there. It fails with ErrSlotOccupied when the
// slot has an unpaid order, including one reopened for editing. When the occupancy flag disagrees with the stored
// orders the disagreement is logged and the flag is healed to match the
// orders.
func (c *Controller) OpenSession(ctx context.Context, kind models.Kind, n int) (SessionView, error) {
	slot, err := c.slot(kind, n)
	if err != nil {
		return SessionView{}, err
	}

	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	if s, ok := c.sessions[slot]; ok {
		c.mu.Unlock()
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.editing != nil {
			return SessionView{}, fmt.Errorf("%w: %s has order %s open for editing", orderdomain.ErrSlotOccupied, slot, s.editing.ID)
		}
		return s.view(), nil
	}
	defer c.mu.Unlock()

	orders, err := c.repo.ListAll(ctx)
	if err != nil {
		return SessionView{}, wrapStorage("open session: list orders", err)
	}
	active := domainsvcs.ActiveBySlot(orders)[slot]
	flagged := c.occ.Get(slot)

	switch {
	case flagged && active != nil:
		return SessionView{}, fmt.Errorf("%w: %s has order %s", orderdomain.ErrSlotOccupied, slot, active.ID)

	case !flagged && active != nil:
		c.reportInconsistency(ctx, slot, active.ID, "unpaid order without occupancy flag")
		if err := c.occ.Set(ctx, slot, true); err != nil {
			c.log.ErrorContext(ctx, "occupancy heal failed", slotAttrs(slot, "error", err)...)
		}
		return SessionView{}, fmt.Errorf("%w: %s has order %s", orderdomain.ErrSlotOccupied, slot, active.ID)

	case flagged && active == nil:
		c.reportInconsistency(ctx, slot, "", "occupancy flag without unpaid order")
		if err := c.occ.Set(ctx, slot, false); err != nil {
			c.log.ErrorContext(ctx, "occupancy heal failed", slotAttrs(slot, "error", err)...)
		}
	}

	s := newSession(slot)
	c.sessions[slot] = s
	c.log.DebugContext(ctx, "session opened", slotAttrs(slot)...)
	return s.view(), nil
}

func (c *Controller) reportInconsistency(ctx context.Context, slot models.Slot, orderID, detail string) {
	err := fmt.Errorf("%w: %s: %s", orderdomain.ErrConsistency, slot, detail)
	c.log.WarnContext(ctx, "occupancy inconsistency healed", slotAttrs(slot, "order_id", orderID, "error", err)...)
	c.metrics.ConsistencyError(ctx, slot.Kind.String())
	telemetry.CaptureError(err)
}

// GetSession returns the open session for the slot.
func (c *Controller) GetSession(kind models.Kind, n int) (SessionView, error) {
	s, err := c.session(kind, n)
	if err != nil {
		return SessionView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

func (c *Controller) session(kind models.Kind, n int) (*session, error) {
	slot, err := c.slot(kind, n)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	s, ok := c.sessions[slot]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", orderdomain.ErrSessionNotFound, slot)
	}
	return s, nil
}

// mutate applies fn to the slot's builder unless a commit is pending.
func (c *Controller) mutate(kind models.Kind, n int, fn func(b *models.Builder)) (SessionView, error) {
	s, err := c.session(kind, n)
	if err != nil {
		return SessionView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return SessionView{}, fmt.Errorf("%w: %s", orderdomain.ErrSessionNotFound, s.slot)
	}
	if s.pending {
		return SessionView{}, fmt.Errorf("%w: %s", orderdomain.ErrSessionBusy, s.slot)
	}
	fn(s.builder)
	return s.view(), nil
}

// AddItem adds one unit of the menu entry to the slot's order.
func (c *Controller) AddItem(ctx context.Context, kind models.Kind, n int, menuEntryID string) (SessionView, error) {
	if _, err := c.session(kind, n); err != nil {
		return SessionView{}, err
	}
	entry, err := c.menu.Lookup(ctx, menuEntryID)
	if err != nil {
		if errors.Is(err, menudomain.ErrMenuEntryNotFound) {
			return SessionView{}, fmt.Errorf("%w: %s", orderdomain.ErrUnknownMenuEntry, menuEntryID)
		}
		return SessionView{}, wrapStorage("lookup menu entry", err)
	}
	return c.mutate(kind, n, func(b *models.Builder) { b.AddItem(entry) })
}

// ChangeQuantity applies delta to a line; zero or below removes it.
func (c *Controller) ChangeQuantity(kind models.Kind, n int, menuEntryID string, delta int) (SessionView, error) {
	return c.mutate(kind, n, func(b *models.Builder) { b.ChangeQuantity(menuEntryID, delta) })
}

// RemoveItem drops a line.
func (c *Controller) RemoveItem(kind models.Kind, n int, menuEntryID string) (SessionView, error) {
	return c.mutate(kind, n, func(b *models.Builder) { b.RemoveItem(menuEntryID) })
}

// Abandon closes a session without saving. Stored orders are untouched.
func (c *Controller) Abandon(ctx context.Context, kind models.Kind, n int) error {
	s, err := c.session(kind, n)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		return fmt.Errorf("%w: %s", orderdomain.ErrSessionBusy, s.slot)
	}
	if s.writtenID != "" {
		c.log.WarnContext(ctx, "abandoned session left a saved order without occupancy; next reconcile will flag it",
			slotAttrs(s.slot, "order_id", s.writtenID)...)
	}
	c.closeLocked(s)
	return nil
}

// closeLocked removes s from the session table. s.mu must be held.
func (c *Controller) closeLocked(s *session) {
	s.closed = true
	c.mu.Lock()
	if c.sessions[s.slot] == s {
		delete(c.sessions, s.slot)
	}
	c.mu.Unlock()
}

// Commit saves the slot's order. A new order is appended and then the slot
// is flagged occupied, in that order; if the flag write fails the session
// stays open and a retry reuses the saved record. An edited order replaces
// its stored record and occupancy is not touched. On success the session
// closes.
func (c *Controller) Commit(ctx context.Context, kind models.Kind, n int) (*models.Order, error) {
	c.lifecycle.RLock()
	defer c.lifecycle.RUnlock()

	s, err := c.session(kind, n)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", orderdomain.ErrSessionNotFound, s.slot)
	}
	if s.pending {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", orderdomain.ErrSessionBusy, s.slot)
	}
	snap := s.builder.Snapshot()
	editing := s.editing
	if err := domainsvcs.ValidateForCommit(snap, editing != nil); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("commit %s: %w", s.slot, err)
	}
	s.pending = true
	s.mu.Unlock()

	var order *models.Order
	if editing != nil {
		order, err = c.commitEdit(ctx, editing, snap)
	} else {
		order, err = c.commitNew(ctx, s, snap)
	}

	s.mu.Lock()
	s.pending = false
	if err == nil {
		c.closeLocked(s)
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	c.metrics.Committed(ctx, order.Slot.Kind.String(), editing != nil, order.Total.InexactFloat64())
	c.evict(ctx, order.ID)
	c.log.InfoContext(ctx, "order committed",
		slotAttrs(order.Slot, "order_id", order.ID, "total", order.Total.StringFixed(2), "edit", editing != nil)...)
	return order, nil
}

func (c *Controller) commitNew(ctx context.Context, s *session, snap models.Snapshot) (*models.Order, error) {
	s.mu.Lock()
	writtenID, writtenAt := s.writtenID, s.writtenAt
	s.mu.Unlock()

	var order *models.Order
	if writtenID != "" {
		order = models.NewOrder(writtenID, s.slot, snap, writtenAt)
		if err := c.repo.Replace(ctx, order); err != nil {
			if !errors.Is(err, orderdomain.ErrOrderNotFound) {
				return nil, fmt.Errorf("commit %s: %w", s.slot, err)
			}
			// Discarded between attempts; start over with a fresh record.
			writtenID = ""
		}
	}
	if writtenID == "" {
		id, at := c.ids.Next()
		order = models.NewOrder(id, s.slot, snap, at)
		if err := c.repo.Append(ctx, order); err != nil {
			return nil, fmt.Errorf("commit %s: %w", s.slot, err)
		}
		s.mu.Lock()
		s.writtenID, s.writtenAt = id, at
		s.mu.Unlock()
	}

	if err := c.occ.Set(ctx, s.slot, true); err != nil {
		c.log.ErrorContext(ctx, "order saved but occupancy flag not set",
			slotAttrs(s.slot, "order_id", order.ID, "error", err)...)
		return nil, fmt.Errorf("commit %s: order %s saved: %w", s.slot, order.ID, err)
	}
	return order, nil
}

func (c *Controller) commitEdit(ctx context.Context, original *models.Order, snap models.Snapshot) (*models.Order, error) {
	order := original.WithItems(snap)
	if err := c.repo.Replace(ctx, order); err != nil {
		return nil, fmt.Errorf("commit edit of %s: %w", order.ID, err)
	}
	return order, nil
}

// Reopen loads a saved, unpaid order into an edit session at its slot.
func (c *Controller) Reopen(ctx context.Context, orderID string) (SessionView, error) {
	o, err := c.repo.FindByID(ctx, orderID)
	if err != nil {
		return SessionView{}, fmt.Errorf("reopen %s: %w", orderID, err)
	}
	if o.Paid {
		return SessionView{}, fmt.Errorf("reopen %s: %w", orderID, orderdomain.ErrOrderSettled)
	}

	c.mu.Lock()
	existing, ok := c.sessions[o.Slot]
	if !ok {
		s := newEditSession(o)
		c.sessions[o.Slot] = s
		c.mu.Unlock()
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.view(), nil
	}
	c.mu.Unlock()

	existing.mu.Lock()
	defer existing.mu.Unlock()
	if existing.orderID() == o.ID {
		return existing.view(), nil
	}
	return SessionView{}, fmt.Errorf("%w: %s has another open session", orderdomain.ErrSlotOccupied, o.Slot)
}

// sessionFor returns the open session writing to orderID, if any.
func (c *Controller) sessionFor(orderID string, slot models.Slot) *session {
	c.mu.Lock()
	s := c.sessions[slot]
	c.mu.Unlock()
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orderID() != orderID {
		return nil
	}
	return s
}

// closeSessionFor closes the session writing to orderID. Fails with
// ErrSessionBusy while that session is committing.
func (c *Controller) closeSessionFor(orderID string, slot models.Slot) error {
	s := c.sessionFor(orderID, slot)
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		return fmt.Errorf("%w: %s", orderdomain.ErrSessionBusy, slot)
	}
	c.closeLocked(s)
	return nil
}

// Discard deletes an order and releases its slot. A second discard of the
// same id fails with ErrOrderNotFound.
func (c *Controller) Discard(ctx context.Context, orderID string) error {
	c.lifecycle.RLock()
	defer c.lifecycle.RUnlock()

	o, err := c.repo.FindByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("discard %s: %w", orderID, err)
	}
	if s := c.sessionFor(o.ID, o.Slot); s != nil {
		s.mu.Lock()
		busy := s.pending
		s.mu.Unlock()
		if busy {
			return fmt.Errorf("discard %s: %w", orderID, orderdomain.ErrSessionBusy)
		}
	}

	if err := c.repo.Remove(ctx, o.ID); err != nil {
		return fmt.Errorf("discard %s: %w", orderID, err)
	}
	c.evict(ctx, o.ID)
	if err := c.closeSessionFor(o.ID, o.Slot); err != nil {
		c.log.WarnContext(ctx, "session still open for discarded order", slotAttrs(o.Slot, "order_id", o.ID, "error", err)...)
	}

	if o.Active() {
		if err := c.occ.Set(ctx, o.Slot, false); err != nil {
			c.log.ErrorContext(ctx, "order discarded but slot not released",
				slotAttrs(o.Slot, "order_id", o.ID, "error", err)...)
			return fmt.Errorf("discard %s: order removed: %w", orderID, err)
		}
	}
	c.metrics.Discarded(ctx, o.Slot.Kind.String())
	c.log.InfoContext(ctx, "order discarded", slotAttrs(o.Slot, "order_id", o.ID)...)
	return nil
}

// Settle marks an order paid and releases its slot. The order stays in
// history.
func (c *Controller) Settle(ctx context.Context, orderID string) (*models.Order, error) {
	c.lifecycle.RLock()
	defer c.lifecycle.RUnlock()

	o, err := c.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("settle %s: %w", orderID, err)
	}
	if o.Paid {
		return nil, fmt.Errorf("settle %s: %w", orderID, orderdomain.ErrOrderSettled)
	}
	if err := c.closeSessionFor(o.ID, o.Slot); err != nil {
		return nil, fmt.Errorf("settle %s: %w", orderID, err)
	}

	o.Paid = true
	if err := c.repo.Replace(ctx, o); err != nil {
		return nil, fmt.Errorf("settle %s: %w", orderID, err)
	}
	c.evict(ctx, o.ID)

	if err := c.occ.Set(ctx, o.Slot, false); err != nil {
		c.log.ErrorContext(ctx, "order settled but slot not released",
			slotAttrs(o.Slot, "order_id", o.ID, "error", err)...)
		return nil, fmt.Errorf("settle %s: order paid: %w", orderID, err)
	}
	c.metrics.Settled(ctx, o.Slot.Kind.String())
	c.log.InfoContext(ctx, "order settled", slotAttrs(o.Slot, "order_id", o.ID)...)
	return o, nil
}

// ReconcileResult lists the flags a reconcile pass changed.
type ReconcileResult struct {
	Raised   []models.Slot
	Released []models.Slot
}

// Reconcile makes every occupancy flag agree with the unpaid orders. Flag
// write failures are collected; the pass continues past them. Lifecycle
// writes wait for the pass, so the order listing and the flags it is
// compared with are one consistent view.
func (c *Controller) Reconcile(ctx context.Context) (ReconcileResult, error) {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	orders, err := c.repo.ListAll(ctx)
	if err != nil {
		return ReconcileResult{}, wrapStorage("reconcile: list orders", err)
	}
	if len(orders) > 0 {
		c.ids.Observe(orders[0].CreatedAt)
	}

	raise, release := domainsvcs.OccupancyDiff(c.occ.Flags(), domainsvcs.ActiveBySlot(orders))

	var (
		res  ReconcileResult
		errs []error
	)
	for _, slot := range raise {
		if err := c.occ.Set(ctx, slot, true); err != nil {
			errs = append(errs, err)
			continue
		}
		res.Raised = append(res.Raised, slot)
	}
	for _, slot := range release {
		if err := c.occ.Set(ctx, slot, false); err != nil {
			errs = append(errs, err)
			continue
		}
		res.Released = append(res.Released, slot)
	}

	if n := len(res.Raised) + len(res.Released); n > 0 {
		c.metrics.Reconciled(ctx, n)
		c.log.WarnContext(ctx, "occupancy reconciled", "raised", fmtSlots(res.Raised), "released", fmtSlots(res.Released))
	}
	return res, errors.Join(errs...)
}

// ReconcileOccupancy runs Reconcile for the scheduled workflow, reporting
// slots by their store keys.
func (c *Controller) ReconcileOccupancy(ctx context.Context) (workflows.ReconcileResult, error) {
	res, err := c.Reconcile(ctx)
	return workflows.ReconcileResult{Raised: fmtSlots(res.Raised), Released: fmtSlots(res.Released)}, err
}

// RunReconcileLoop reconciles every interval until ctx is done. A
// non-positive interval disables the loop.
func (c *Controller) RunReconcileLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.Reconcile(ctx); err != nil {
				c.log.ErrorContext(ctx, "scheduled reconcile failed", "error", err)
			}
		}
	}
}

// ListOrders returns every order, most recent first. Storage failures are
// logged and reported as an empty history.
func (c *Controller) ListOrders(ctx context.Context) []*models.Order {
	orders, err := c.repo.ListAll(ctx)
	if err != nil {
		c.log.ErrorContext(ctx, "list orders failed; returning empty history", "error", err)
		return []*models.Order{}
	}
	return orders
}

// ListOccupiedSlots returns the occupied numbers of kind, ascending.
func (c *Controller) ListOccupiedSlots(kind models.Kind) ([]int, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", orderdomain.ErrInvalidSlot, kind)
	}
	return c.occ.ListOccupied(kind), nil
}

// ClearOrders deletes every order, closes sessions bound to them and
// releases every slot.
func (c *Controller) ClearOrders(ctx context.Context) ([]string, error) {
	c.lifecycle.RLock()
	defer c.lifecycle.RUnlock()

	ids, err := c.repo.Clear(ctx)
	if err != nil {
		return nil, fmt.Errorf("clear orders: %w", err)
	}
	c.evict(ctx, ids...)

	c.mu.Lock()
	open := make([]*session, 0, len(c.sessions))
	for _, s := range c.sessions {
		open = append(open, s)
	}
	c.mu.Unlock()
	for _, s := range open {
		s.mu.Lock()
		if s.orderID() != "" && !s.pending {
			c.closeLocked(s)
		}
		s.mu.Unlock()
	}

	var errs []error
	for slot, occupied := range c.occ.Flags() {
		if !occupied {
			continue
		}
		if err := c.occ.Set(ctx, slot, false); err != nil {
			errs = append(errs, err)
		}
	}
	c.log.InfoContext(ctx, "orders cleared", "count", len(ids))
	if err := errors.Join(errs...); err != nil {
		return ids, fmt.Errorf("clear orders: release slots: %w", err)
	}
	return ids, nil
}

func slotAttrs(slot models.Slot, extra ...any) []any {
	return append([]any{"slot_kind", slot.Kind.String(), "slot_number", slot.Number}, extra...)
}

func fmtSlots(slots []models.Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}
