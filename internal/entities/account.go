package entities

import "time"

// Account represents a registered user record in the credential store
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialized
	CreatedAt    time.Time `json:"created_at"`
}
