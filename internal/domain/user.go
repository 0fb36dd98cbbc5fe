package domain

import "time"

// User is the domain entity for a user account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	// Todos lists IDs of the todos assigned to this user.
	Todos     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
