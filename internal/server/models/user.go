// Package models defines the persistent value types of the server.
package models

// User is a registered account. The password hash is an opaque PHC blob and
// is never serialized outward.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	IsActive     bool   `json:"is_active"`
}
