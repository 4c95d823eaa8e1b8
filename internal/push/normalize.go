package push

import (
	"encoding/json"

	"github.com/transitlk/notifier/internal/model"
)

// Browsers and older clients deliver subscriptions in several shapes: a flat
// web-push subscription object, a wrapped {subscription: {...}, userId}
// envelope, or the subscription as a JSON-encoded string inside that
// envelope. ParseSubscription normalizes all of them into the canonical
// model.Subscription exactly once; downstream code never branches on
// representation.

type subscribeEnvelope struct {
	Endpoint     string                 `json:"endpoint"`
	Keys         model.SubscriptionKeys `json:"keys"`
	UserID       string                 `json:"userId"`
	Subscription json.RawMessage        `json:"subscription"`
}

type rawSubscription struct {
	Endpoint string                 `json:"endpoint"`
	Keys     model.SubscriptionKeys `json:"keys"`
}

// ParseSubscription normalizes an inbound subscribe body. It returns
// ErrMalformed when no usable endpoint and credentials can be extracted.
// The returned subscription has no SubscriptionID; the registry assigns one.
func ParseSubscription(body []byte) (*model.Subscription, error) {
	var env subscribeEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, ErrMalformed
	}

	raw := rawSubscription{Endpoint: env.Endpoint, Keys: env.Keys}
	if raw.Endpoint == "" && len(env.Subscription) > 0 {
		inner := env.Subscription
		// Unwrap a JSON-encoded string first.
		var encoded string
		if err := json.Unmarshal(inner, &encoded); err == nil {
			inner = []byte(encoded)
		}
		if err := json.Unmarshal(inner, &raw); err != nil {
			return nil, ErrMalformed
		}
	}

	if raw.Endpoint == "" || raw.Keys.P256dh == "" || raw.Keys.Auth == "" {
		return nil, ErrMalformed
	}

	userID := env.UserID
	if userID == "" {
		userID = model.AnonymousUserID
	}

	return &model.Subscription{
		UserID:   userID,
		Endpoint: raw.Endpoint,
		Keys:     raw.Keys,
	}, nil
}
