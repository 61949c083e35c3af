package model

// Identity represents the resolved acting user for an authenticated request.
// It is reconstructed from the bearer token on each request and carries only
// what handlers need; the password hash never travels with it.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
