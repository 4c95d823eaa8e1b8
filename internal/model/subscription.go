package model

import "time"

// AnonymousUserID marks subscriptions registered without a user association.
const AnonymousUserID = "ANONYMOUS"

// SubscriptionKeys are the transport credentials of one recipient device.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is the canonical in-memory shape of a push subscription.
// Inbound payloads of any accepted representation are normalized into this
// shape exactly once at ingestion.
type Subscription struct {
	SubscriptionID string           `json:"subscriptionId"`
	UserID         string           `json:"userId"`
	Endpoint       string           `json:"endpoint"`
	Keys           SubscriptionKeys `json:"keys"`
	AddedAt        time.Time        `json:"addedAt"`
}
