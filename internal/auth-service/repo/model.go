package repo

import "time"

// User é o modelo persistido no Postgres. Role vem do join com
// roles/user_roles.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
