package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linkboard/linkboard/internal/infrastructure/db"
	"github.com/linkboard/linkboard/internal/processing/auth"
)

type UsersRepository struct {
	pool *pgxpool.Pool
}

func NewUsersRepository(p *db.Postgres) (*UsersRepository, error) {
	if p == nil || p.Pool == nil {
		return nil, errors.New("postgres pool is nil")
	}
	return &UsersRepository{pool: p.Pool}, nil
}

func (r *UsersRepository) Insert(ctx context.Context, user *auth.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		toTimestamptz(user.CreatedAt),
		toTimestamptz(user.UpdatedAt),
	)
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return auth.ErrEmailTaken
	}
	return err
}

func (r *UsersRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.findBy(ctx, `email = $1`, email)
}

func (r *UsersRepository) FindByID(ctx context.Context, id string) (*auth.User, error) {
	return r.findBy(ctx, `id = $1`, id)
}

func (r *UsersRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (r *UsersRepository) findBy(ctx context.Context, where string, arg any) (*auth.User, error) {
	var (
		out       auth.User
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users WHERE `+where,
		arg,
	).Scan(&out.ID, &out.Name, &out.Email, &out.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}

	out.CreatedAt = createdAt.Time.UTC()
	out.UpdatedAt = updatedAt.Time.UTC()
	return &out, nil
}
