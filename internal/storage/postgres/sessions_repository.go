package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linkboard/linkboard/internal/infrastructure/db"
	"github.com/linkboard/linkboard/internal/processing/auth"
)

type SessionsRepository struct {
	pool *pgxpool.Pool
}

func NewSessionsRepository(p *db.Postgres) (*SessionsRepository, error) {
	if p == nil || p.Pool == nil {
		return nil, errors.New("postgres pool is nil")
	}
	return &SessionsRepository{pool: p.Pool}, nil
}

func (r *SessionsRepository) Insert(ctx context.Context, session *auth.Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions
			(id, token, user_id, expires_at, ip_address, user_agent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		session.ID,
		session.Token,
		session.UserID,
		toTimestamptz(session.ExpiresAt),
		toNullableText(session.IPAddress),
		toNullableText(session.UserAgent),
		toTimestamptz(session.CreatedAt),
		toTimestamptz(session.UpdatedAt),
	)
	return err
}

func (r *SessionsRepository) FindByToken(ctx context.Context, token string) (*auth.Session, error) {
	var (
		out       auth.Session
		expiresAt pgtype.Timestamptz
		ipAddress pgtype.Text
		userAgent pgtype.Text
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, token, user_id, expires_at, ip_address, user_agent, created_at, updated_at
		FROM sessions WHERE token = $1`,
		token,
	).Scan(&out.ID, &out.Token, &out.UserID, &expiresAt, &ipAddress, &userAgent, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrNoSession
		}
		return nil, err
	}

	out.ExpiresAt = expiresAt.Time.UTC()
	out.IPAddress = nullableTextValue(ipAddress)
	out.UserAgent = nullableTextValue(userAgent)
	out.CreatedAt = createdAt.Time.UTC()
	out.UpdatedAt = updatedAt.Time.UTC()
	return &out, nil
}

func (r *SessionsRepository) DeleteByToken(ctx context.Context, token string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrNoSession
	}
	return nil
}
