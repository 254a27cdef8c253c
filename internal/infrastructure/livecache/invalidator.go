package livecache

import (
	"context"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/club-events/external/livepush"
	"github.com/riskibarqy/club-events/internal/platform/cache"
	"github.com/riskibarqy/club-events/internal/platform/logging"
	"github.com/riskibarqy/club-events/internal/platform/metrics"
	"github.com/riskibarqy/club-events/internal/usecase"
)

// Publisher pushes invalidation notices to connected viewers.
type Publisher interface {
	Enabled() bool
	Publish(ctx context.Context, notification livepush.Notification) error
}

// Invalidator drops the cached live state of an event and, when a publisher
// is configured, tells the realtime gateway in the background.
type Invalidator struct {
	store     *cache.Store
	publisher Publisher
	pool      *ants.Pool
	logger    *logging.Logger
	now       func() time.Time
}

func NewInvalidator(store *cache.Store, publisher Publisher, workers int, logger *logging.Logger) (*Invalidator, error) {
	if logger == nil {
		logger = logging.Default()
	}
	inv := &Invalidator{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	if publisher == nil || !publisher.Enabled() {
		return inv, nil
	}

	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create live push pool: %w", err)
	}
	inv.publisher = publisher
	inv.pool = pool
	return inv, nil
}

func (i *Invalidator) InvalidateLiveView(ctx context.Context, eventID string) {
	if i.store != nil {
		i.store.Delete(ctx, usecase.LiveStateCacheKey(eventID))
	}
	if i.publisher == nil {
		return
	}

	notification := livepush.Notification{EventID: eventID, Reason: "invalidated", At: i.now().UTC()}
	detached := context.WithoutCancel(ctx)
	err := i.pool.Submit(func() {
		if err := i.publisher.Publish(detached, notification); err != nil {
			metrics.LivePushTotal.WithLabelValues("failed").Inc()
			i.logger.WarnContext(detached, "live push failed", "event_id", eventID, "error", err)
			return
		}
		metrics.LivePushTotal.WithLabelValues("sent").Inc()
	})
	if err != nil {
		metrics.LivePushTotal.WithLabelValues("dropped").Inc()
		i.logger.WarnContext(ctx, "live push not submitted", "event_id", eventID, "error", err)
	}
}

// Close waits up to timeout for pending pushes.
func (i *Invalidator) Close(timeout time.Duration) error {
	if i.pool == nil {
		return nil
	}
	if err := i.pool.ReleaseTimeout(timeout); err != nil {
		return fmt.Errorf("release live push pool: %w", err)
	}
	return nil
}
