// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account. Users are immutable after
// registration; there is no update or delete path.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	CreatedAt    time.Time `json:"created_at"`
}
