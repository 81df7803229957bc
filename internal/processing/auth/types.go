package auth

import "time"

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Session struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity is what the rest of the application sees: a stable user id plus
// display fields. Link handlers never touch User or Session directly.
type Identity struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

type SignInInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// Credential is the outcome of a successful sign-in: the identity plus the
// signed cookie value and its expiry.
type Credential struct {
	Identity  Identity
	Token     string
	ExpiresAt time.Time
}
