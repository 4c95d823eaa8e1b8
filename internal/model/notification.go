package model

import "time"

// Message types accepted on the wire.
const (
	MessageTypeInfo        = "info"
	MessageTypeWarning     = "warning"
	MessageTypeCritical    = "critical"
	MessageTypeMaintenance = "maintenance"
)

// Target audiences accepted on the wire.
const (
	AudienceAll            = "all"
	AudiencePassengers     = "passengers"
	AudienceConductors     = "conductors"
	AudienceMOTOfficers    = "mot_officers"
	AudienceFleetOperators = "fleet_operators"
)

// ValidMessageType reports whether t is one of the enumerated message types.
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeInfo, MessageTypeWarning, MessageTypeCritical, MessageTypeMaintenance:
		return true
	}
	return false
}

// ValidAudience reports whether a is one of the enumerated target audiences.
func ValidAudience(a string) bool {
	switch a {
	case AudienceAll, AudiencePassengers, AudienceConductors, AudienceMOTOfficers, AudienceFleetOperators:
		return true
	}
	return false
}

// AudienceUserType maps a target audience to the user type it selects.
// AudienceAll returns the empty string: no user-type constraint.
func AudienceUserType(audience string) string {
	switch audience {
	case AudiencePassengers:
		return UserTypePassenger
	case AudienceConductors:
		return UserTypeConductor
	case AudienceMOTOfficers:
		return UserTypeMOTOfficer
	case AudienceFleetOperators:
		return UserTypeFleetOperator
	}
	return ""
}

// DeliveryStats are the per-notification delivery counters. After the first
// stats write, Successful+Failed == TotalSent holds.
type DeliveryStats struct {
	TotalSent  int `json:"totalSent"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// Notification content is immutable once created; only Stats and ClickCount
// change, through the store's single-statement update operations.
type Notification struct {
	NotificationID string        `json:"notificationId"`
	AdminID        string        `json:"adminId"`
	Title          string        `json:"title"`
	Subject        string        `json:"subject"`
	Body           string        `json:"body"`
	MessageType    string        `json:"messageType"`
	TargetAudience string        `json:"targetAudience"`
	Province       string        `json:"province,omitempty"`
	City           string        `json:"city,omitempty"`
	Route          string        `json:"route,omitempty"`
	SentAt         time.Time     `json:"sentAt"`
	Stats          DeliveryStats `json:"stats"`
	ClickCount     int64         `json:"clickCount"`
}

// NotificationSummary is the projection returned by recent-notification
// listings. Content carries the body and DateCreated the send time, matching
// what the admin frontend expects.
type NotificationSummary struct {
	NotificationID string        `json:"notificationId"`
	Title          string        `json:"title"`
	Content        string        `json:"content"`
	DateCreated    time.Time     `json:"dateCreated"`
	Stats          DeliveryStats `json:"stats"`
}
