package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/transitlk/notifier/internal/model"
)

func testNotification(title string, sentAt time.Time) *model.Notification {
	return &model.Notification{
		AdminID:        "A1",
		Title:          title,
		Subject:        "Service update",
		Body:           "Body of " + title,
		MessageType:    model.MessageTypeInfo,
		TargetAudience: model.AudiencePassengers,
		SentAt:         sentAt,
	}
}

func TestCreateNotification(t *testing.T) {
	s := NewNotificationStore(setupTestDB(t))

	n := testNotification("N1", time.Time{})
	if err := s.Create(n); err != nil {
		t.Fatalf("create: %v", err)
	}
	if n.NotificationID == "" {
		t.Error("expected assigned notification id")
	}
	if n.SentAt.IsZero() {
		t.Error("expected assigned sent time")
	}

	got, err := s.Get(n.NotificationID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Stats != (model.DeliveryStats{}) {
		t.Errorf("stats = %+v, want zeroed", got.Stats)
	}
	if got.ClickCount != 0 {
		t.Errorf("click count = %d, want 0", got.ClickCount)
	}
}

func TestUpdateStats(t *testing.T) {
	s := NewNotificationStore(setupTestDB(t))

	n := testNotification("N1", time.Time{})
	s.Create(n)

	stats := model.DeliveryStats{TotalSent: 3, Successful: 2, Failed: 1}
	if err := s.UpdateStats(n.NotificationID, stats); err != nil {
		t.Fatalf("update stats: %v", err)
	}

	got, _ := s.Get(n.NotificationID)
	if got.Stats != stats {
		t.Errorf("stats = %+v, want %+v", got.Stats, stats)
	}
	if got.Stats.Successful+got.Stats.Failed != got.Stats.TotalSent {
		t.Errorf("stats invariant violated: %+v", got.Stats)
	}
}

func TestUpdateStatsNotFound(t *testing.T) {
	s := NewNotificationStore(setupTestDB(t))

	err := s.UpdateStats("missing", model.DeliveryStats{TotalSent: 1, Failed: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestIncrementClickConcurrent(t *testing.T) {
	s := NewNotificationStore(setupTestDB(t))

	n := testNotification("N1", time.Time{})
	s.Create(n)

	const callers = 5
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.IncrementClick(n.NotificationID); err != nil {
				t.Errorf("increment click: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := s.Get(n.NotificationID)
	if got.ClickCount != callers {
		t.Errorf("click count = %d, want %d", got.ClickCount, callers)
	}
}

func TestIncrementClickNotFound(t *testing.T) {
	s := NewNotificationStore(setupTestDB(t))

	err := s.IncrementClick("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetNotFound(t *testing.T) {
	s := NewNotificationStore(setupTestDB(t))

	_, err := s.Get("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListRecentOrderAndProjection(t *testing.T) {
	s := NewNotificationStore(setupTestDB(t))

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.Create(testNotification("first", base))
	s.Create(testNotification("second", base.Add(time.Minute)))
	third := testNotification("third", base.Add(2*time.Minute))
	s.Create(third)
	s.UpdateStats(third.NotificationID, model.DeliveryStats{TotalSent: 2, Successful: 2})

	summaries, err := s.ListRecent(2)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("len = %d, want 2", len(summaries))
	}
	if summaries[0].Title != "third" || summaries[1].Title != "second" {
		t.Errorf("order = [%s, %s], want [third, second]", summaries[0].Title, summaries[1].Title)
	}
	if summaries[0].Content != "Body of third" {
		t.Errorf("content = %q, want body text", summaries[0].Content)
	}
	if !summaries[0].DateCreated.Equal(third.SentAt) {
		t.Errorf("dateCreated = %v, want %v", summaries[0].DateCreated, third.SentAt)
	}
	if summaries[0].Stats.Successful != 2 {
		t.Errorf("stats.successful = %d, want 2", summaries[0].Stats.Successful)
	}
}
