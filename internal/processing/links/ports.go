package links

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound            = errors.New("link not found")
	ErrInactive            = errors.New("link inactive")
	ErrExpired             = errors.New("link expired")
	ErrInvalidURL          = errors.New("invalid url")
	ErrInvalidAlias        = errors.New("invalid alias")
	ErrReservedAlias       = errors.New("alias is reserved")
	ErrAliasTaken          = errors.New("alias already taken")
	ErrAllocationExhausted = errors.New("could not allocate a unique short code")
)

type LinkRepository interface {
	Insert(ctx context.Context, link *Link) error
	FindByID(ctx context.Context, id, ownerID string) (*Link, error)
	FindByCode(ctx context.Context, code string) (*Link, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	CodeExistsExcept(ctx context.Context, code, excludeID string) (bool, error)
	List(ctx context.Context, in ListLinksInput) ([]*Link, int64, error)
	Update(ctx context.Context, link *Link) error
	Delete(ctx context.Context, id, ownerID string) error
	IncrementClicks(ctx context.Context, id string, at time.Time) error
}

type StatsRepository interface {
	Dashboard(ctx context.Context, ownerID string) (*DashboardStats, error)
}

type CodeGenerator interface {
	Generate(length int) (string, error)
}
