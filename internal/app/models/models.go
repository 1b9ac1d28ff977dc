package models

// RoleType defines the role an authenticated actor acts under
type RoleType string

const (
	RoleStudent    RoleType = "STUDENT"
	RoleInstructor RoleType = "INSTRUCTOR"
	RoleAdmin      RoleType = "ADMIN"
)

// Valid reports whether r is a known role
func (r RoleType) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated caller as supplied by the identity layer.
// The core trusts it and only performs the authorization checks it is given.
type Actor struct {
	UserID int64    `json:"userId"`
	Role   RoleType `json:"roleType"`
}

// IsAdmin reports whether the actor has administrative rights
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
