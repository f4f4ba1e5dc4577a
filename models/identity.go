package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role of an authenticated account.
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCitizen || r == RoleAdmin
}

// Identity is the caller's account context, extracted from the auth token by
// the transport layer. The zero Identity means unauthenticated.
type Identity struct {
	AccountID primitive.ObjectID
	Role      Role
}

// Zero reports whether the identity is unauthenticated.
func (id Identity) Zero() bool {
	return id.AccountID.IsZero()
}

// IsAdmin reports whether the identity holds the admin role.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}
