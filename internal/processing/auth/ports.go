package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAdminExists        = errors.New("an admin account already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoSession          = errors.New("no valid session")
)

type UserRepository interface {
	Insert(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Count(ctx context.Context) (int64, error)
}

type SessionRepository interface {
	Insert(ctx context.Context, session *Session) error
	FindByToken(ctx context.Context, token string) (*Session, error)
	DeleteByToken(ctx context.Context, token string) error
}
