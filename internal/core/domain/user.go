package domain

import "github.com/google/uuid"

// User is the signed-in principal resolved from a bearer token.
// Accounts live with the external auth provider and are never stored here.
type User struct {
	ID    uuid.UUID
	Email string
	Role  string
}
