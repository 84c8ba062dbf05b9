package domain

// Role is the caller's role as asserted by the identity provider.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Identity is the verified caller identity attached to every request.
// It comes from the auth collaborator's token, never from request bodies.
type Identity struct {
	UserID string
	Name   string
	Email  string
	Role   Role
}
