package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/transitlk/notifier/internal/model"
	"github.com/transitlk/notifier/internal/push"
)

// Transport delivers one payload to one subscription. Implementations
// translate transport-specific failures into push.ErrGone (permanent),
// push.ErrMalformed (unusable subscription), or any other error (transient).
type Transport interface {
	Send(sub *model.Subscription, payload []byte) error
}

const defaultSendConcurrency = 16

// Engine fans out push deliveries over a fixed subscription snapshot. A
// failed recipient never aborts the batch; permanent failures trigger a
// best-effort prune of the subscription from the registry.
type Engine struct {
	transport   Transport
	registry    SubscriptionRegistry
	concurrency int
	logger      *slog.Logger
}

// NewEngine creates a delivery engine. concurrency bounds the simultaneous
// sends; values below 1 use the default.
func NewEngine(transport Transport, registry SubscriptionRegistry, concurrency int, logger *slog.Logger) *Engine {
	if concurrency < 1 {
		concurrency = defaultSendConcurrency
	}
	return &Engine{
		transport:   transport,
		registry:    registry,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Send delivers the notification to every subscription in the snapshot and
// blocks until all attempts finish. Cancellation is not supported mid-batch;
// every attempt in the snapshot runs. Registry mutations during the batch
// (including the engine's own prunes) never change which subscriptions are
// attempted. On return, Successful+Failed == TotalSent == len(snapshot).
func (e *Engine) Send(ctx context.Context, n *model.Notification, snapshot []model.Subscription) (model.DeliveryStats, error) {
	payload, err := BuildPayload(n)
	if err != nil {
		return model.DeliveryStats{}, fmt.Errorf("build payload: %w", err)
	}

	var successful, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i := range snapshot {
		sub := &snapshot[i]
		g.Go(func() error {
			e.deliver(sub, payload, &successful, &failed)
			return nil
		})
	}
	g.Wait()

	stats := model.DeliveryStats{
		Successful: int(successful.Load()),
		Failed:     int(failed.Load()),
	}
	stats.TotalSent = stats.Successful + stats.Failed
	return stats, nil
}

func (e *Engine) deliver(sub *model.Subscription, payload []byte, successful, failed *atomic.Int64) {
	err := e.transport.Send(sub, payload)
	if err == nil {
		successful.Add(1)
		return
	}
	failed.Add(1)

	switch {
	case errors.Is(err, push.ErrMalformed):
		e.logger.Warn("skipped malformed subscription", "subscription_id", sub.SubscriptionID)
	case errors.Is(err, push.ErrGone):
		// Prune failures are swallowed; a stale entry is corrected on its
		// next delivery attempt.
		if rerr := e.registry.Remove(sub.SubscriptionID); rerr != nil {
			e.logger.Error("prune gone subscription", "subscription_id", sub.SubscriptionID, "error", rerr)
		} else {
			e.logger.Info("pruned gone subscription", "subscription_id", sub.SubscriptionID)
		}
	default:
		e.logger.Error("send push", "subscription_id", sub.SubscriptionID, "error", err)
	}
}
