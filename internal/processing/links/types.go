package links

import "time"

type Link struct {
	ID            string
	OwnerID       string
	OriginalURL   string
	ShortCode     string
	CustomAlias   string
	Title         string
	TotalClicks   int64
	IsActive      bool
	ExpiresAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastClickedAt *time.Time
}

type CreateLinkInput struct {
	OwnerID     string
	OriginalURL string
	Title       string
	CustomAlias string
	ExpiresAt   *time.Time
}

// UpdateLinkInput carries a partial update. Nil pointers leave the field
// untouched. ExpiresAt is only applied when SetExpiresAt is true, so callers
// can distinguish "clear the expiry" from "leave it alone".
type UpdateLinkInput struct {
	ID      string
	OwnerID string

	OriginalURL  *string
	Title        *string
	CustomAlias  *string
	IsActive     *bool
	SetExpiresAt bool
	ExpiresAt    *time.Time
}

type ListLinksInput struct {
	OwnerID  string
	Page     int
	PageSize int
	Search   string
}

type PageMetadata struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

type LinkPage struct {
	Data     []*Link
	Metadata PageMetadata
}

type DashboardStats struct {
	TotalURLs   int64 `json:"totalUrls"`
	TotalClicks int64 `json:"totalClicks"`
}
