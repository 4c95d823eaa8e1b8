package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/transitlk/notifier/internal/model"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("not found")

// NotificationStore persists notification records. Content is immutable once
// created; the delivery stats and click counter mutate through single SQL
// statements so concurrent callers never lose updates.
type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// Create persists the notification with zeroed stats and click count,
// assigning NotificationID and SentAt if unset.
func (s *NotificationStore) Create(n *model.Notification) error {
	if n.NotificationID == "" {
		n.NotificationID = uuid.NewString()
	}
	if n.SentAt.IsZero() {
		n.SentAt = time.Now().UTC()
	}
	n.Stats = model.DeliveryStats{}
	n.ClickCount = 0

	_, err := s.db.Exec(
		`INSERT INTO notifications (notification_id, admin_id, title, subject, body,
		     message_type, target_audience, province, city, route, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.NotificationID, n.AdminID, n.Title, n.Subject, n.Body,
		n.MessageType, n.TargetAudience, n.Province, n.City, n.Route, n.SentAt,
	)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// UpdateStats overwrites the delivery counters in one statement.
// Last writer wins; at most one delivery pass per notification is expected.
func (s *NotificationStore) UpdateStats(notificationID string, stats model.DeliveryStats) error {
	result, err := s.db.Exec(
		`UPDATE notifications SET total_sent = ?, successful = ?, failed = ?
		 WHERE notification_id = ?`,
		stats.TotalSent, stats.Successful, stats.Failed, notificationID,
	)
	if err != nil {
		return fmt.Errorf("update notification stats: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update notification stats: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementClick adds exactly one to the click counter. The increment happens
// inside the database, so N concurrent calls raise the counter by exactly N.
func (s *NotificationStore) IncrementClick(notificationID string) error {
	result, err := s.db.Exec(
		`UPDATE notifications SET click_count = click_count + 1 WHERE notification_id = ?`,
		notificationID,
	)
	if err != nil {
		return fmt.Errorf("increment click count: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment click count: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns the full notification record or ErrNotFound.
func (s *NotificationStore) Get(notificationID string) (*model.Notification, error) {
	var n model.Notification
	err := s.db.QueryRow(
		`SELECT notification_id, admin_id, title, subject, body, message_type,
		     target_audience, province, city, route, sent_at,
		     total_sent, successful, failed, click_count
		 FROM notifications WHERE notification_id = ?`, notificationID,
	).Scan(
		&n.NotificationID, &n.AdminID, &n.Title, &n.Subject, &n.Body, &n.MessageType,
		&n.TargetAudience, &n.Province, &n.City, &n.Route, &n.SentAt,
		&n.Stats.TotalSent, &n.Stats.Successful, &n.Stats.Failed, &n.ClickCount,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &n, nil
}

// ListRecent returns up to limit notification summaries ordered by send time
// descending.
func (s *NotificationStore) ListRecent(limit int) ([]model.NotificationSummary, error) {
	rows, err := s.db.Query(
		`SELECT notification_id, title, body, sent_at, total_sent, successful, failed
		 FROM notifications ORDER BY sent_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent notifications: %w", err)
	}
	defer rows.Close()

	var summaries []model.NotificationSummary
	for rows.Next() {
		var sum model.NotificationSummary
		if err := rows.Scan(&sum.NotificationID, &sum.Title, &sum.Content, &sum.DateCreated,
			&sum.Stats.TotalSent, &sum.Stats.Successful, &sum.Stats.Failed); err != nil {
			return nil, fmt.Errorf("scan notification summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}
