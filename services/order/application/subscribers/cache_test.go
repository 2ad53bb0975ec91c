package subscribers

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/tablepos/pkg/cache"
	"github.com/ghuser/tablepos/pkg/logger"
	menumodels "github.com/ghuser/tablepos/services/menu/domain/models"
	orderevents "github.com/ghuser/tablepos/services/order/domain/events"
	"github.com/ghuser/tablepos/services/order/domain/models"
	"github.com/ghuser/tablepos/services/order/infrastructure/persistence/memory"
)

type mapCache struct {
	mu      sync.Mutex
	entries map[string]*cache.CachedOrder
}

func (m *mapCache) Get(_ context.Context, id string) (*cache.CachedOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, redis.Nil
}

func (m *mapCache) Set(_ context.Context, o *cache.CachedOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[o.ID] = o
	return nil
}

func (m *mapCache) Delete(_ context.Context, ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.entries, id)
	}
	return nil
}

type recordingSubscriber struct {
	topics []string
}

func (r *recordingSubscriber) Subscribe(_ context.Context, topic string, _ func(context.Context, *message.Message) error) (<-chan error, error) {
	r.topics = append(r.topics, topic)
	ch := make(chan error)
	close(ch)
	return ch, nil
}

func storedOrder(t *testing.T, repo *memory.OrderRepository, id string) *models.Order {
	t.Helper()
	entry, err := menumodels.NewMenuEntry("F1", "Burger", decimal.RequireFromString("25.99"), menumodels.CategoryFood)
	require.NoError(t, err)
	b := models.NewBuilder()
	b.AddItem(entry)
	slot, err := models.NewSlot(models.KindDineIn, 4)
	require.NoError(t, err)
	o := models.NewOrder(id, slot, b.Snapshot(), time.Now())
	require.NoError(t, repo.Append(context.Background(), o))
	return o
}

func eventMessage(t *testing.T, payload any) *message.Message {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return message.NewMessage(uuid.NewString(), b)
}

func newProjector() (*CacheProjector, *memory.OrderRepository, *mapCache) {
	repo := memory.NewOrderRepository()
	c := &mapCache{entries: make(map[string]*cache.CachedOrder)}
	return NewCacheProjector(repo, c, logger.Nop()), repo, c
}

func TestCacheProjector_WarmsOnCommit(t *testing.T) {
	ctx := context.Background()
	p, repo, c := newProjector()
	o := storedOrder(t, repo, "1700000000000")

	err := p.HandleOrderChanged(ctx, eventMessage(t, orderevents.OrderEvent{OrderID: o.ID}))
	require.NoError(t, err)

	got, err := c.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "25.99", got.Total)
	assert.Equal(t, 4, got.SlotNumber)
}

func TestCacheProjector_ChangedAfterRemovalIsNoop(t *testing.T) {
	ctx := context.Background()
	p, _, c := newProjector()

	err := p.HandleOrderChanged(ctx, eventMessage(t, orderevents.OrderEvent{OrderID: "missing"}))
	require.NoError(t, err)
	assert.Empty(t, c.entries)
}

func TestCacheProjector_EvictsOnRemoval(t *testing.T) {
	ctx := context.Background()
	p, repo, c := newProjector()
	o := storedOrder(t, repo, "1700000000001")
	require.NoError(t, p.HandleOrderChanged(ctx, eventMessage(t, orderevents.OrderEvent{OrderID: o.ID})))

	require.NoError(t, p.HandleOrderRemoved(ctx, eventMessage(t, orderevents.OrderEvent{OrderID: o.ID})))
	_, err := c.Get(ctx, o.ID)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestCacheProjector_EvictsOnClear(t *testing.T) {
	ctx := context.Background()
	p, repo, c := newProjector()
	a := storedOrder(t, repo, "1700000000002")
	b := storedOrder(t, repo, "1700000000003")
	for _, id := range []string{a.ID, b.ID} {
		require.NoError(t, p.HandleOrderChanged(ctx, eventMessage(t, orderevents.OrderEvent{OrderID: id})))
	}

	err := p.HandleOrdersCleared(ctx, eventMessage(t, orderevents.OrdersClearedEvent{OrderIDs: []string{a.ID, b.ID}}))
	require.NoError(t, err)
	assert.Empty(t, c.entries)
}

func TestCacheProjector_RejectsBadPayload(t *testing.T) {
	p, _, _ := newProjector()
	err := p.HandleOrderRemoved(context.Background(), message.NewMessage(uuid.NewString(), []byte("{")))
	assert.Error(t, err)
}

func TestCacheProjector_RegistersEveryTopic(t *testing.T) {
	p, _, _ := newProjector()
	sub := &recordingSubscriber{}
	require.NoError(t, p.Register(context.Background(), sub))
	assert.ElementsMatch(t, orderevents.Topics(), sub.topics)
}
