package dispatch

import (
	"encoding/json"
	"time"

	"github.com/transitlk/notifier/internal/model"
)

// Payload is the JSON sent to the push service. One canonical payload is
// built per notification; every recipient in a batch receives the same bytes.
type Payload struct {
	Title          string         `json:"title"`
	Body           string         `json:"body"`
	Subject        string         `json:"subject"`
	MessageType    string         `json:"messageType"`
	NotificationID string         `json:"notificationId"`
	URL            string         `json:"url"`
	AdditionalData AdditionalData `json:"additionalData"`
}

// AdditionalData carries batch metadata alongside the displayed content.
type AdditionalData struct {
	SentAt         time.Time `json:"sentAt"`
	TargetAudience string    `json:"targetAudience"`
}

// BuildPayload marshals the canonical payload for a notification.
func BuildPayload(n *model.Notification) ([]byte, error) {
	return json.Marshal(Payload{
		Title:          n.Title,
		Body:           n.Body,
		Subject:        n.Subject,
		MessageType:    n.MessageType,
		NotificationID: n.NotificationID,
		URL:            "/notification/" + n.NotificationID,
		AdditionalData: AdditionalData{
			SentAt:         n.SentAt,
			TargetAudience: n.TargetAudience,
		},
	})
}
