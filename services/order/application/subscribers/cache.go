// Package subscribers projects order events into the Redis read model.
package subscribers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/tablepos/pkg/logger"
	appsvcs "github.com/ghuser/tablepos/services/order/application/services"
	orderdomain "github.com/ghuser/tablepos/services/order/domain"
	orderevents "github.com/ghuser/tablepos/services/order/domain/events"
	"github.com/ghuser/tablepos/services/order/domain/repositories"
)

// Subscriber is the subscribe side of events.EventBus.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler func(context.Context, *message.Message) error) (<-chan error, error)
}

// CacheProjector keeps the order cache in step with the order topics.
// Handlers are idempotent: warming re-reads the current record and eviction
// ignores missing keys.
type CacheProjector struct {
	repo  repositories.OrderRepository
	cache appsvcs.OrderCache
	log   logger.Logger
}

// NewCacheProjector returns a projector reading from repo and writing to cache.
func NewCacheProjector(repo repositories.OrderRepository, cache appsvcs.OrderCache, log logger.Logger) *CacheProjector {
	return &CacheProjector{repo: repo, cache: cache, log: log}
}

// Register subscribes every order topic and drains subscriber errors in the
// background.
func (p *CacheProjector) Register(ctx context.Context, sub Subscriber) error {
	handlers := map[string]func(context.Context, *message.Message) error{
		orderevents.TopicOrderCommitted: p.HandleOrderChanged,
		orderevents.TopicOrderUpdated:   p.HandleOrderChanged,
		orderevents.TopicOrderDiscarded: p.HandleOrderRemoved,
		orderevents.TopicOrderSettled:   p.HandleOrderRemoved,
		orderevents.TopicOrdersCleared:  p.HandleOrdersCleared,
	}
	for _, topic := range orderevents.Topics() {
		errCh, err := sub.Subscribe(ctx, topic, handlers[topic])
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		go func(topic string) {
			for err := range errCh {
				p.log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}(topic)
	}
	p.log.Info("event subscribers registered", "topics", orderevents.Topics())
	return nil
}

// HandleOrderChanged warms the cache with the stored record.
func (p *CacheProjector) HandleOrderChanged(ctx context.Context, msg *message.Message) error {
	var evt orderevents.OrderEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return err
	}

	o, err := p.repo.FindByID(ctx, evt.OrderID)
	if errors.Is(err, orderdomain.ErrOrderNotFound) {
		// Removed after the event was published; a later event evicts it.
		return nil
	}
	if err != nil {
		return err
	}

	if err := p.cache.Set(ctx, appsvcs.ToCached(o)); err != nil {
		// Cache warming is best-effort; log but do not fail the handler.
		p.log.WarnContext(ctx, "cache warm failed", "order_id", evt.OrderID, "error", err)
		return nil
	}
	p.log.DebugContext(ctx, "cache warmed", "order_id", evt.OrderID, "topic", msg.Metadata.Get("name"))
	return nil
}

// HandleOrderRemoved evicts a discarded or settled order.
func (p *CacheProjector) HandleOrderRemoved(ctx context.Context, msg *message.Message) error {
	var evt orderevents.OrderEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return err
	}
	return p.cache.Delete(ctx, evt.OrderID)
}

// HandleOrdersCleared evicts every order removed by a bulk clear.
func (p *CacheProjector) HandleOrdersCleared(ctx context.Context, msg *message.Message) error {
	var evt orderevents.OrdersClearedEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return err
	}
	return p.cache.Delete(ctx, evt.OrderIDs...)
}
