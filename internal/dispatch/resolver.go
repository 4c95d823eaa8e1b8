package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/transitlk/notifier/internal/model"
)

// SubscriptionRegistry is the slice of the subscription store the dispatch
// stages need. The sqlite store implements it; tests use in-memory fakes.
type SubscriptionRegistry interface {
	FindByUser(userID string) ([]model.Subscription, error)
	ListAll(limit int) ([]model.Subscription, error)
	Remove(subscriptionID string) error
}

// UserDirectory resolves targeting criteria to matching users. Read-only.
type UserDirectory interface {
	FindByCriteria(c model.TargetCriteria) ([]model.User, error)
}

const (
	defaultLookupConcurrency = 8
	unrestrictedListLimit    = 500
)

// Resolver maps targeting criteria to a deduplicated subscription snapshot.
type Resolver struct {
	directory   UserDirectory
	registry    SubscriptionRegistry
	concurrency int
	logger      *slog.Logger
}

// NewResolver creates a resolver. concurrency bounds the simultaneous
// per-user subscription lookups; values below 1 use the default.
func NewResolver(directory UserDirectory, registry SubscriptionRegistry, concurrency int, logger *slog.Logger) *Resolver {
	if concurrency < 1 {
		concurrency = defaultLookupConcurrency
	}
	return &Resolver{
		directory:   directory,
		registry:    registry,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Resolve produces a finite, deduplicated subscription snapshot for the
// criteria. Fully empty criteria short-circuit to a bounded registry listing,
// which also reaches anonymous subscriptions. An empty matching user set
// yields an empty snapshot, not an error.
func (r *Resolver) Resolve(ctx context.Context, criteria model.TargetCriteria) ([]model.Subscription, error) {
	if criteria.Empty() {
		return r.registry.ListAll(unrestrictedListLimit)
	}

	users, err := r.directory.FindByCriteria(criteria)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{})
		subs []model.Subscription
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, u := range users {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			found, err := r.registry.FindByUser(u.UserID)
			if err != nil {
				return fmt.Errorf("subscriptions for user %s: %w", u.UserID, err)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, sub := range found {
				if _, dup := seen[sub.SubscriptionID]; dup {
					continue
				}
				seen[sub.SubscriptionID] = struct{}{}
				subs = append(subs, sub)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Debug("resolved audience", "users", len(users), "subscriptions", len(subs))
	return subs, nil
}
