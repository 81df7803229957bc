package links

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type Service struct {
	linkRepo    LinkRepository
	statsRepo   StatsRepository
	codegen     CodeGenerator
	codeLength  int
	maxAttempts int
	now         func() time.Time
}

func NewService(linkRepo LinkRepository, statsRepo StatsRepository, codegen CodeGenerator, codeLength int) *Service {
	if codeLength <= 0 {
		codeLength = 6
	}

	return &Service{
		linkRepo:    linkRepo,
		statsRepo:   statsRepo,
		codegen:     codegen,
		codeLength:  codeLength,
		maxAttempts: 10,
		now:         time.Now,
	}
}

// CreateLink allocates a short code and inserts a new link owned by the
// caller. When a custom alias is supplied it is used verbatim after the
// reserved-path and uniqueness checks; otherwise a random base62 code is
// generated with a bounded number of attempts. The existence pre-checks are
// advisory only: the unique constraint on short_code is the authoritative
// signal, and its violation at insert time is surfaced as ErrAliasTaken
// (custom alias) or retried (random code).
func (s *Service) CreateLink(ctx context.Context, in CreateLinkInput) (*Link, error) {
	normalizedURL, err := validateAndNormalizeURL(in.OriginalURL)
	if err != nil {
		return nil, ErrInvalidURL
	}

	now := s.now().UTC()
	link := &Link{
		ID:          uuid.New().String(),
		OwnerID:     in.OwnerID,
		OriginalURL: normalizedURL,
		Title:       strings.TrimSpace(in.Title),
		IsActive:    true,
		ExpiresAt:   in.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	alias := strings.TrimSpace(in.CustomAlias)
	if alias != "" {
		if err := validateAlias(alias); err != nil {
			return nil, err
		}
		taken, err := s.linkRepo.CodeExists(ctx, alias)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrAliasTaken
		}

		link.ShortCode = alias
		link.CustomAlias = alias
		if err := s.linkRepo.Insert(ctx, link); err != nil {
			return nil, err
		}
		return link, nil
	}

	for range s.maxAttempts {
		code, err := s.codegen.Generate(s.codeLength)
		if err != nil {
			return nil, err
		}

		taken, err := s.linkRepo.CodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		link.ShortCode = code
		if err := s.linkRepo.Insert(ctx, link); err != nil {
			if err == ErrAliasTaken {
				continue
			}
			return nil, err
		}
		return link, nil
	}

	return nil, ErrAllocationExhausted
}

// ListLinks returns the caller's links newest-first, optionally filtered by a
// substring match across URL, short code and title. Pages beyond the last one
// return an empty slice with the correct total.
func (s *Service) ListLinks(ctx context.Context, in ListLinksInput) (*LinkPage, error) {
	if in.Page <= 0 {
		in.Page = 1
	}
	if in.PageSize <= 0 {
		in.PageSize = defaultPageSize
	}
	if in.PageSize > maxPageSize {
		in.PageSize = maxPageSize
	}
	in.Search = strings.TrimSpace(in.Search)

	data, total, err := s.linkRepo.List(ctx, in)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(in.PageSize) - 1) / int64(in.PageSize))

	return &LinkPage{
		Data: data,
		Metadata: PageMetadata{
			Total:      total,
			Page:       in.Page,
			PageSize:   in.PageSize,
			TotalPages: totalPages,
		},
	}, nil
}

// UpdateLink applies a partial update to a link owned by the caller. A
// non-empty alias that differs from the current short code is re-validated
// against reservation and uniqueness among all other links; on success both
// the short code and the custom alias take the new value. An empty-string
// alias is a deliberate no-op on the code, not a "revert to random"
// operation.
func (s *Service) UpdateLink(ctx context.Context, in UpdateLinkInput) (*Link, error) {
	link, err := s.linkRepo.FindByID(ctx, in.ID, in.OwnerID)
	if err != nil {
		return nil, err
	}

	if in.CustomAlias != nil {
		alias := strings.TrimSpace(*in.CustomAlias)
		if alias != "" && alias != link.ShortCode {
			if err := validateAlias(alias); err != nil {
				return nil, err
			}
			taken, err := s.linkRepo.CodeExistsExcept(ctx, alias, link.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrAliasTaken
			}
			link.ShortCode = alias
			link.CustomAlias = alias
		}
	}

	if in.OriginalURL != nil {
		normalizedURL, err := validateAndNormalizeURL(*in.OriginalURL)
		if err != nil {
			return nil, ErrInvalidURL
		}
		link.OriginalURL = normalizedURL
	}
	if in.Title != nil {
		link.Title = strings.TrimSpace(*in.Title)
	}
	if in.IsActive != nil {
		link.IsActive = *in.IsActive
	}
	if in.SetExpiresAt {
		link.ExpiresAt = in.ExpiresAt
	}

	link.UpdatedAt = s.now().UTC()

	if err := s.linkRepo.Update(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *Service) DeleteLink(ctx context.Context, id, ownerID string) error {
	return s.linkRepo.Delete(ctx, id, ownerID)
}

func (s *Service) DashboardStats(ctx context.Context, ownerID string) (*DashboardStats, error) {
	return s.statsRepo.Dashboard(ctx, ownerID)
}

// Resolve looks up a short code for a public redirect. Checks run in order
// and short-circuit: missing, then inactive, then expired. On success the
// click counter is bumped with a single atomic in-place update so concurrent
// redirects never lose increments.
func (s *Service) Resolve(ctx context.Context, code string) (*Link, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrNotFound
	}

	link, err := s.linkRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if !link.IsActive {
		return nil, ErrInactive
	}
	now := s.now().UTC()
	if link.ExpiresAt != nil && now.After(link.ExpiresAt.UTC()) {
		return nil, ErrExpired
	}

	if err := s.linkRepo.IncrementClicks(ctx, link.ID, now); err != nil {
		return nil, err
	}
	link.TotalClicks++

	return link, nil
}

func validateAndNormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidURL
	}
	if strings.TrimSpace(u.Host) == "" {
		return "", ErrInvalidURL
	}

	u.Fragment = ""
	return u.String(), nil
}
