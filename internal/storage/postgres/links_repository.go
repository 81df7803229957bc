package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linkboard/linkboard/internal/infrastructure/db"
	"github.com/linkboard/linkboard/internal/processing/links"
)

const uniqueViolationCode = "23505"

type LinksRepository struct {
	pool *pgxpool.Pool
}

func NewLinksRepository(p *db.Postgres) (*LinksRepository, error) {
	if p == nil || p.Pool == nil {
		return nil, errors.New("postgres pool is nil")
	}
	return &LinksRepository{pool: p.Pool}, nil
}

const linkColumns = `id, owner_id, original_url, short_code, custom_alias, title,
	total_clicks, is_active, expires_at, created_at, updated_at, last_clicked_at`

func (r *LinksRepository) Insert(ctx context.Context, link *links.Link) error {
	if link == nil {
		return errors.New("link is nil")
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO short_links
			(id, owner_id, original_url, short_code, custom_alias, title,
			 total_clicks, is_active, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		link.ID,
		link.OwnerID,
		link.OriginalURL,
		link.ShortCode,
		toNullableText(link.CustomAlias),
		toNullableText(link.Title),
		link.TotalClicks,
		link.IsActive,
		toNullableTimestamptz(link.ExpiresAt),
		toTimestamptz(link.CreatedAt),
		toTimestamptz(link.UpdatedAt),
	)
	if err == nil {
		return nil
	}

	// The unique constraint on short_code is the authoritative uniqueness
	// check; the service's pre-check can always race.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return links.ErrAliasTaken
	}
	return err
}

func (r *LinksRepository) FindByID(ctx context.Context, id, ownerID string) (*links.Link, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM short_links WHERE id = $1 AND owner_id = $2`, linkColumns),
		id, ownerID,
	)
	return scanLink(row)
}

func (r *LinksRepository) FindByCode(ctx context.Context, code string) (*links.Link, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM short_links WHERE short_code = $1`, linkColumns),
		code,
	)
	return scanLink(row)
}

func (r *LinksRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM short_links WHERE short_code = $1)`, code,
	).Scan(&exists)
	return exists, err
}

func (r *LinksRepository) CodeExistsExcept(ctx context.Context, code, excludeID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM short_links WHERE short_code = $1 AND id <> $2)`,
		code, excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *LinksRepository) List(ctx context.Context, in links.ListLinksInput) ([]*links.Link, int64, error) {
	where := `owner_id = $1`
	args := []any{in.OwnerID}
	if in.Search != "" {
		where += ` AND (original_url ILIKE $2 OR short_code ILIKE $2 OR title ILIKE $2)`
		args = append(args, "%"+escapeLike(in.Search)+"%")
	}

	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM short_links WHERE `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (in.Page - 1) * in.PageSize
	query := fmt.Sprintf(`
		SELECT %s FROM short_links
		WHERE %s
		ORDER BY created_at DESC
		LIMIT %d OFFSET %d`, linkColumns, where, in.PageSize, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*links.Link, 0, in.PageSize)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, link)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (r *LinksRepository) Update(ctx context.Context, link *links.Link) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE short_links
		SET original_url = $1,
		    short_code = $2,
		    custom_alias = $3,
		    title = $4,
		    is_active = $5,
		    expires_at = $6,
		    updated_at = $7
		WHERE id = $8 AND owner_id = $9`,
		link.OriginalURL,
		link.ShortCode,
		toNullableText(link.CustomAlias),
		toNullableText(link.Title),
		link.IsActive,
		toNullableTimestamptz(link.ExpiresAt),
		toTimestamptz(link.UpdatedAt),
		link.ID,
		link.OwnerID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return links.ErrAliasTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return links.ErrNotFound
	}
	return nil
}

func (r *LinksRepository) Delete(ctx context.Context, id, ownerID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM short_links WHERE id = $1 AND owner_id = $2`, id, ownerID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return links.ErrNotFound
	}
	return nil
}

// IncrementClicks bumps the counter with a single in-place arithmetic update
// so concurrent redirects to the same code never lose increments.
func (r *LinksRepository) IncrementClicks(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE short_links
		SET total_clicks = total_clicks + 1,
		    last_clicked_at = $2,
		    updated_at = $2
		WHERE id = $1`,
		id, toTimestamptz(at),
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLink(row rowScanner) (*links.Link, error) {
	var (
		out           links.Link
		customAlias   pgtype.Text
		title         pgtype.Text
		expiresAt     pgtype.Timestamptz
		createdAt     pgtype.Timestamptz
		updatedAt     pgtype.Timestamptz
		lastClickedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&out.ID,
		&out.OwnerID,
		&out.OriginalURL,
		&out.ShortCode,
		&customAlias,
		&title,
		&out.TotalClicks,
		&out.IsActive,
		&expiresAt,
		&createdAt,
		&updatedAt,
		&lastClickedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, links.ErrNotFound
		}
		return nil, err
	}

	out.CustomAlias = nullableTextValue(customAlias)
	out.Title = nullableTextValue(title)
	out.CreatedAt = createdAt.Time.UTC()
	out.UpdatedAt = updatedAt.Time.UTC()
	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		out.ExpiresAt = &t
	}
	if lastClickedAt.Valid {
		t := lastClickedAt.Time.UTC()
		out.LastClickedAt = &t
	}

	return &out, nil
}

// escapeLike escapes LIKE metacharacters in user-supplied search terms.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func toNullableText(v string) pgtype.Text {
	v = strings.TrimSpace(v)
	if v == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{
		String: v,
		Valid:  true,
	}
}

func nullableTextValue(v pgtype.Text) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func toTimestamptz(v time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{
		Time:  v.UTC(),
		Valid: true,
	}
}

func toNullableTimestamptz(v *time.Time) pgtype.Timestamptz {
	if v == nil {
		return pgtype.Timestamptz{}
	}
	return toTimestamptz(*v)
}
