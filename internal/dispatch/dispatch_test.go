package dispatch

import (
	"io"
	"log/slog"
	"sync"

	"github.com/transitlk/notifier/internal/model"
)

// In-memory doubles for the registry, directory, transport, and record store.

type fakeDirectory struct {
	users []model.User
	err   error
}

func (f *fakeDirectory) FindByCriteria(c model.TargetCriteria) ([]model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var matched []model.User
	for _, u := range f.users {
		if c.UserType != "" && u.UserType != c.UserType {
			continue
		}
		if c.Province != "" && u.Province != c.Province {
			continue
		}
		if c.City != "" && u.City != c.City {
			continue
		}
		if c.Route != "" && u.Route != c.Route {
			continue
		}
		matched = append(matched, u)
	}
	return matched, nil
}

type fakeRegistry struct {
	mu        sync.Mutex
	subs      []model.Subscription
	removed   []string
	removeErr error

	inFlight    int
	maxInFlight int
	onLookup    func()
}

func (f *fakeRegistry) FindByUser(userID string) ([]model.Subscription, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	if f.onLookup != nil {
		f.onLookup()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
	var found []model.Subscription
	for _, sub := range f.subs {
		if sub.UserID == userID {
			found = append(found, sub)
		}
	}
	return found, nil
}

func (f *fakeRegistry) ListAll(limit int) ([]model.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.subs) > limit {
		return f.subs[:limit], nil
	}
	return f.subs, nil
}

func (f *fakeRegistry) Remove(subscriptionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, subscriptionID)
	for i, sub := range f.subs {
		if sub.SubscriptionID == subscriptionID {
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeRegistry) removedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}

// fakeTransport classifies outcomes per endpoint.
type fakeTransport struct {
	mu       sync.Mutex
	outcomes map[string]error // keyed by endpoint; missing means success
	attempts []string
}

func (f *fakeTransport) Send(sub *model.Subscription, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, sub.Endpoint)
	return f.outcomes[sub.Endpoint]
}

func (f *fakeTransport) attemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.attempts)
}

type fakeNotificationStore struct {
	mu        sync.Mutex
	created   []*model.Notification
	stats     map[string]model.DeliveryStats
	createErr error
	updateErr error
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{stats: make(map[string]model.DeliveryStats)}
}

func (f *fakeNotificationStore) Create(n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if n.NotificationID == "" {
		n.NotificationID = "N" + string(rune('1'+len(f.created)))
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationStore) UpdateStats(notificationID string, stats model.DeliveryStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.stats[notificationID] = stats
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sub(id, userID, endpoint string) model.Subscription {
	return model.Subscription{
		SubscriptionID: id,
		UserID:         userID,
		Endpoint:       endpoint,
		Keys:           model.SubscriptionKeys{P256dh: "p", Auth: "a"},
	}
}
