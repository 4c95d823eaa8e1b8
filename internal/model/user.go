package model

// User types as stored in the user directory.
const (
	UserTypePassenger     = "passenger"
	UserTypeConductor     = "conductor"
	UserTypeMOTOfficer    = "mot_officer"
	UserTypeFleetOperator = "fleet_operator"
	UserTypeAdmin         = "admin"
)

// User is a read-only projection of the identity system's user record.
// The notifier never creates or updates users outside of tests and seeding.
type User struct {
	UserID   string `json:"userId"`
	UserType string `json:"userType"`
	Province string `json:"province,omitempty"`
	City     string `json:"city,omitempty"`
	Route    string `json:"route,omitempty"`
	Email    string `json:"email,omitempty"`
}

// TargetCriteria selects the users a notification is addressed to.
// Empty fields impose no constraint; an empty UserType matches every type.
type TargetCriteria struct {
	UserType string
	Province string
	City     string
	Route    string
}

// Empty reports whether the criteria constrain nothing at all.
func (c TargetCriteria) Empty() bool {
	return c.UserType == "" && c.Province == "" && c.City == "" && c.Route == ""
}
