package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/transitlk/notifier/internal/model"
)

// SubscriptionStore owns the push subscription registry. At most one active
// subscription exists per (endpoint, user_id) pair; removal is idempotent.
type SubscriptionStore struct {
	db *sql.DB
}

func NewSubscriptionStore(db *sql.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

// Add inserts the subscription unless an active entry already shares its
// (endpoint, user_id) coordinates. It returns the stored subscription and
// whether a new row was inserted; re-subscribing with identical coordinates
// is a no-op that returns the existing entry.
func (s *SubscriptionStore) Add(sub model.Subscription) (*model.Subscription, bool, error) {
	if sub.SubscriptionID == "" {
		sub.SubscriptionID = uuid.NewString()
	}
	if sub.UserID == "" {
		sub.UserID = model.AnonymousUserID
	}

	result, err := s.db.Exec(
		`INSERT INTO subscriptions (subscription_id, user_id, endpoint, p256dh_key, auth_key)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(endpoint, user_id) DO NOTHING`,
		sub.SubscriptionID, sub.UserID, sub.Endpoint, sub.Keys.P256dh, sub.Keys.Auth,
	)
	if err != nil {
		return nil, false, fmt.Errorf("add subscription: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("add subscription: %w", err)
	}
	if n == 0 {
		existing, err := s.getByCoordinates(sub.Endpoint, sub.UserID)
		return existing, false, err
	}

	stored, err := s.GetByID(sub.SubscriptionID)
	return stored, true, err
}

// Remove deletes the subscription if present. Removing an absent or
// already-removed subscription is not an error.
func (s *SubscriptionStore) Remove(subscriptionID string) error {
	_, err := s.db.Exec(`DELETE FROM subscriptions WHERE subscription_id = ?`, subscriptionID)
	if err != nil {
		return fmt.Errorf("remove subscription: %w", err)
	}
	return nil
}

// GetByID returns the subscription or ErrNotFound.
func (s *SubscriptionStore) GetByID(subscriptionID string) (*model.Subscription, error) {
	row := s.db.QueryRow(
		`SELECT subscription_id, user_id, endpoint, p256dh_key, auth_key, added_at
		 FROM subscriptions WHERE subscription_id = ?`, subscriptionID,
	)
	return scanSubscription(row, "get subscription")
}

func (s *SubscriptionStore) getByCoordinates(endpoint, userID string) (*model.Subscription, error) {
	row := s.db.QueryRow(
		`SELECT subscription_id, user_id, endpoint, p256dh_key, auth_key, added_at
		 FROM subscriptions WHERE endpoint = ? AND user_id = ?`, endpoint, userID,
	)
	return scanSubscription(row, "get subscription by coordinates")
}

// FindByUser returns the active subscriptions owned by the user.
func (s *SubscriptionStore) FindByUser(userID string) ([]model.Subscription, error) {
	rows, err := s.db.Query(
		`SELECT subscription_id, user_id, endpoint, p256dh_key, auth_key, added_at
		 FROM subscriptions WHERE user_id = ? ORDER BY added_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("find subscriptions by user: %w", err)
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

// ListAll returns a bounded page of active subscriptions. Used only when the
// audience is fully unrestricted; it is the only path that reaches anonymous
// subscriptions.
func (s *SubscriptionStore) ListAll(limit int) ([]model.Subscription, error) {
	rows, err := s.db.Query(
		`SELECT subscription_id, user_id, endpoint, p256dh_key, auth_key, added_at
		 FROM subscriptions ORDER BY added_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

func scanSubscription(row *sql.Row, op string) (*model.Subscription, error) {
	var sub model.Subscription
	err := row.Scan(&sub.SubscriptionID, &sub.UserID, &sub.Endpoint, &sub.Keys.P256dh, &sub.Keys.Auth, &sub.AddedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

func scanSubscriptions(rows *sql.Rows) ([]model.Subscription, error) {
	var subs []model.Subscription
	for rows.Next() {
		var sub model.Subscription
		if err := rows.Scan(&sub.SubscriptionID, &sub.UserID, &sub.Endpoint, &sub.Keys.P256dh, &sub.Keys.Auth, &sub.AddedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
