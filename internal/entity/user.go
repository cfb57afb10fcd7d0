package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that owns company profiles.
type User struct {
	ID           uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
