package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/transitlk/notifier/internal/model"
)

// ErrNoRecipients is returned when the target criteria match no
// subscriptions. The notification record is still created with zero stats.
var ErrNoRecipients = errors.New("no subscriptions matched the target criteria")

// NotificationStore persists notification records and their delivery stats.
type NotificationStore interface {
	Create(n *model.Notification) error
	UpdateStats(notificationID string, stats model.DeliveryStats) error
}

// Request is the admin-supplied content and audience for one dispatch.
type Request struct {
	AdminID        string
	Title          string
	Subject        string
	Body           string
	MessageType    string
	TargetAudience string
	Province       string
	City           string
	Route          string
}

// Service runs the full dispatch pipeline: persist the notification, resolve
// the audience, fan out delivery, write final stats. Each stage completes
// fully before the next begins.
type Service struct {
	store    NotificationStore
	resolver *Resolver
	engine   *Engine
	logger   *slog.Logger
}

func NewService(store NotificationStore, resolver *Resolver, engine *Engine, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		engine:   engine,
		logger:   logger,
	}
}

// CreateAndDispatch persists the notification and delivers it to the resolved
// audience. The returned notification carries the final stats. It returns
// ErrNoRecipients (with the created record) when nothing matched. A stats
// write failure is surfaced even though deliveries already happened; the
// caller never sees a partial result otherwise.
func (s *Service) CreateAndDispatch(ctx context.Context, req Request) (*model.Notification, error) {
	n := &model.Notification{
		AdminID:        req.AdminID,
		Title:          req.Title,
		Subject:        req.Subject,
		Body:           req.Body,
		MessageType:    req.MessageType,
		TargetAudience: req.TargetAudience,
		Province:       req.Province,
		City:           req.City,
		Route:          req.Route,
		SentAt:         time.Now().UTC(),
	}
	if err := s.store.Create(n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	criteria := model.TargetCriteria{
		UserType: model.AudienceUserType(req.TargetAudience),
		Province: req.Province,
		City:     req.City,
		Route:    req.Route,
	}

	snapshot, err := s.resolver.Resolve(ctx, criteria)
	if err != nil {
		return n, fmt.Errorf("resolve audience: %w", err)
	}
	if len(snapshot) == 0 {
		return n, ErrNoRecipients
	}

	stats, err := s.engine.Send(ctx, n, snapshot)
	if err != nil {
		return n, err
	}
	n.Stats = stats

	if err := s.store.UpdateStats(n.NotificationID, stats); err != nil {
		// Pushes already went out; accounting failed. Known asymmetry.
		return n, fmt.Errorf("update notification stats: %w", err)
	}

	s.logger.Info("notification dispatched",
		"notification_id", n.NotificationID,
		"audience", n.TargetAudience,
		"total", stats.TotalSent,
		"successful", stats.Successful,
		"failed", stats.Failed,
	)
	return n, nil
}
