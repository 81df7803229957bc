package links

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- Hand-written mocks ---

type mockLinkRepo struct {
	insertFn           func(ctx context.Context, link *Link) error
	findByIDFn         func(ctx context.Context, id, ownerID string) (*Link, error)
	findByCodeFn       func(ctx context.Context, code string) (*Link, error)
	codeExistsFn       func(ctx context.Context, code string) (bool, error)
	codeExistsExceptFn func(ctx context.Context, code, excludeID string) (bool, error)
	listFn             func(ctx context.Context, in ListLinksInput) ([]*Link, int64, error)
	updateFn           func(ctx context.Context, link *Link) error
	deleteFn           func(ctx context.Context, id, ownerID string) error
	incrementFn        func(ctx context.Context, id string, at time.Time) error

	incrementCalls int
}

func (m *mockLinkRepo) Insert(ctx context.Context, link *Link) error {
	return m.insertFn(ctx, link)
}
func (m *mockLinkRepo) FindByID(ctx context.Context, id, ownerID string) (*Link, error) {
	return m.findByIDFn(ctx, id, ownerID)
}
func (m *mockLinkRepo) FindByCode(ctx context.Context, code string) (*Link, error) {
	return m.findByCodeFn(ctx, code)
}
func (m *mockLinkRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	if m.codeExistsFn == nil {
		return false, nil
	}
	return m.codeExistsFn(ctx, code)
}
func (m *mockLinkRepo) CodeExistsExcept(ctx context.Context, code, excludeID string) (bool, error) {
	if m.codeExistsExceptFn == nil {
		return false, nil
	}
	return m.codeExistsExceptFn(ctx, code, excludeID)
}
func (m *mockLinkRepo) List(ctx context.Context, in ListLinksInput) ([]*Link, int64, error) {
	return m.listFn(ctx, in)
}
func (m *mockLinkRepo) Update(ctx context.Context, link *Link) error {
	return m.updateFn(ctx, link)
}
func (m *mockLinkRepo) Delete(ctx context.Context, id, ownerID string) error {
	return m.deleteFn(ctx, id, ownerID)
}
func (m *mockLinkRepo) IncrementClicks(ctx context.Context, id string, at time.Time) error {
	m.incrementCalls++
	if m.incrementFn == nil {
		return nil
	}
	return m.incrementFn(ctx, id, at)
}

type mockStatsRepo struct {
	dashboardFn func(ctx context.Context, ownerID string) (*DashboardStats, error)
}

func (m *mockStatsRepo) Dashboard(ctx context.Context, ownerID string) (*DashboardStats, error) {
	return m.dashboardFn(ctx, ownerID)
}

type mockCodeGenerator struct {
	codes []string
	idx   int
}

func (m *mockCodeGenerator) Generate(int) (string, error) {
	if m.idx >= len(m.codes) {
		return "", errors.New("no more codes")
	}
	c := m.codes[m.idx]
	m.idx++
	return c, nil
}

// --- Tests for validateAndNormalizeURL ---

func TestValidateAndNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"valid https", "https://example.com/path", "https://example.com/path", false},
		{"valid http", "http://example.com", "http://example.com", false},
		{"strips fragment", "https://example.com/page#section", "https://example.com/page", false},
		{"empty string", "", "", true},
		{"bad scheme ftp", "ftp://example.com", "", true},
		{"no scheme", "example.com", "", true},
		{"missing host", "https://", "", true},
		{"whitespace trimmed", "  https://example.com  ", "https://example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validateAndNormalizeURL(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// --- Tests for validateAlias ---

func TestValidateAlias(t *testing.T) {
	tests := []struct {
		name  string
		alias string
		want  error
	}{
		{"valid", "my-alias_1", nil},
		{"too short", "ab", ErrInvalidAlias},
		{"too long", "abcdefghijklmnopqrstu", ErrInvalidAlias},
		{"bad chars", "my alias!", ErrInvalidAlias},
		{"reserved login", "login", ErrReservedAlias},
		{"reserved api", "api", ErrReservedAlias},
		{"reserved dashboard", "dashboard", ErrReservedAlias},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateAlias(tt.alias); got != tt.want {
				t.Errorf("validateAlias(%q) = %v, want %v", tt.alias, got, tt.want)
			}
		})
	}
}

// --- Tests for Service ---

func newTestService(lr *mockLinkRepo, sr *mockStatsRepo, gen CodeGenerator) *Service {
	svc := NewService(lr, sr, gen, 6)
	svc.now = func() time.Time {
		return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestCreateLink_HappyPath(t *testing.T) {
	lr := &mockLinkRepo{
		insertFn: func(_ context.Context, _ *Link) error { return nil },
	}
	gen := &mockCodeGenerator{codes: []string{"abc123"}}

	svc := newTestService(lr, nil, gen)

	link, err := svc.CreateLink(context.Background(), CreateLinkInput{
		OwnerID:     "user-1",
		OriginalURL: "https://example.com/a",
	})
	if err != nil {
		t.Fatal(err)
	}
	if link.ShortCode != "abc123" {
		t.Errorf("short code = %q, want %q", link.ShortCode, "abc123")
	}
	if link.TotalClicks != 0 {
		t.Errorf("total clicks = %d, want 0", link.TotalClicks)
	}
	if !link.IsActive {
		t.Error("new link should be active")
	}
	if link.OwnerID != "user-1" {
		t.Errorf("owner = %q, want user-1", link.OwnerID)
	}
	if link.ID == "" {
		t.Error("expected a generated id")
	}
}

func TestCreateLink_InvalidURL(t *testing.T) {
	svc := newTestService(&mockLinkRepo{}, nil, &mockCodeGenerator{})

	_, err := svc.CreateLink(context.Background(), CreateLinkInput{OriginalURL: "not-a-url"})
	if err != ErrInvalidURL {
		t.Errorf("got %v, want ErrInvalidURL", err)
	}
}

func TestCreateLink_CustomAlias(t *testing.T) {
	t.Run("uses alias verbatim", func(t *testing.T) {
		lr := &mockLinkRepo{
			insertFn: func(_ context.Context, link *Link) error { return nil },
		}
		svc := newTestService(lr, nil, &mockCodeGenerator{})

		link, err := svc.CreateLink(context.Background(), CreateLinkInput{
			OwnerID:     "user-1",
			OriginalURL: "https://example.com",
			CustomAlias: "my-brand",
		})
		if err != nil {
			t.Fatal(err)
		}
		if link.ShortCode != "my-brand" || link.CustomAlias != "my-brand" {
			t.Errorf("code=%q alias=%q, want my-brand for both", link.ShortCode, link.CustomAlias)
		}
	})

	t.Run("reserved alias rejected", func(t *testing.T) {
		svc := newTestService(&mockLinkRepo{}, nil, &mockCodeGenerator{})

		_, err := svc.CreateLink(context.Background(), CreateLinkInput{
			OriginalURL: "https://example.com",
			CustomAlias: "login",
		})
		if err != ErrReservedAlias {
			t.Errorf("got %v, want ErrReservedAlias", err)
		}
	})

	t.Run("taken alias rejected on pre-check", func(t *testing.T) {
		lr := &mockLinkRepo{
			codeExistsFn: func(_ context.Context, _ string) (bool, error) { return true, nil },
		}
		svc := newTestService(lr, nil, &mockCodeGenerator{})

		_, err := svc.CreateLink(context.Background(), CreateLinkInput{
			OriginalURL: "https://example.com",
			CustomAlias: "taken",
		})
		if err != ErrAliasTaken {
			t.Errorf("got %v, want ErrAliasTaken", err)
		}
	})

	t.Run("insert race surfaces as alias taken", func(t *testing.T) {
		lr := &mockLinkRepo{
			insertFn: func(_ context.Context, _ *Link) error { return ErrAliasTaken },
		}
		svc := newTestService(lr, nil, &mockCodeGenerator{})

		_, err := svc.CreateLink(context.Background(), CreateLinkInput{
			OriginalURL: "https://example.com",
			CustomAlias: "raced",
		})
		if err != ErrAliasTaken {
			t.Errorf("got %v, want ErrAliasTaken", err)
		}
	})
}

func TestCreateLink_RetriesOnCollision(t *testing.T) {
	inserts := 0
	lr := &mockLinkRepo{
		insertFn: func(_ context.Context, link *Link) error {
			inserts++
			if link.ShortCode == "dupe01" {
				return ErrAliasTaken
			}
			return nil
		},
	}
	gen := &mockCodeGenerator{codes: []string{"dupe01", "fresh1"}}

	svc := newTestService(lr, nil, gen)

	link, err := svc.CreateLink(context.Background(), CreateLinkInput{OriginalURL: "https://example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if link.ShortCode != "fresh1" {
		t.Errorf("short code = %q, want fresh1", link.ShortCode)
	}
	if inserts != 2 {
		t.Errorf("inserts = %d, want 2", inserts)
	}
}

func TestCreateLink_AllocationExhausted(t *testing.T) {
	codes := make([]string, 10)
	for i := range codes {
		codes[i] = "dupe"
	}
	lr := &mockLinkRepo{
		insertFn: func(_ context.Context, _ *Link) error { return ErrAliasTaken },
	}
	svc := newTestService(lr, nil, &mockCodeGenerator{codes: codes})

	_, err := svc.CreateLink(context.Background(), CreateLinkInput{OriginalURL: "https://example.com"})
	if err != ErrAllocationExhausted {
		t.Errorf("got %v, want ErrAllocationExhausted", err)
	}
}

func TestListLinks(t *testing.T) {
	t.Run("clamps page and page size", func(t *testing.T) {
		var got ListLinksInput
		lr := &mockLinkRepo{
			listFn: func(_ context.Context, in ListLinksInput) ([]*Link, int64, error) {
				got = in
				return nil, 0, nil
			},
		}
		svc := newTestService(lr, nil, nil)

		_, err := svc.ListLinks(context.Background(), ListLinksInput{OwnerID: "u", Page: 0, PageSize: -1})
		if err != nil {
			t.Fatal(err)
		}
		if got.Page != 1 || got.PageSize != defaultPageSize {
			t.Errorf("page=%d size=%d, want 1 and %d", got.Page, got.PageSize, defaultPageSize)
		}
	})

	t.Run("beyond last page returns empty data with total", func(t *testing.T) {
		lr := &mockLinkRepo{
			listFn: func(_ context.Context, in ListLinksInput) ([]*Link, int64, error) {
				return []*Link{}, 3, nil
			},
		}
		svc := newTestService(lr, nil, nil)

		page, err := svc.ListLinks(context.Background(), ListLinksInput{OwnerID: "u", Page: 9, PageSize: 10})
		if err != nil {
			t.Fatal(err)
		}
		if len(page.Data) != 0 {
			t.Errorf("data length = %d, want 0", len(page.Data))
		}
		if page.Metadata.Total != 3 {
			t.Errorf("total = %d, want 3", page.Metadata.Total)
		}
		if page.Metadata.TotalPages != 1 {
			t.Errorf("total pages = %d, want 1", page.Metadata.TotalPages)
		}
	})
}

func TestUpdateLink(t *testing.T) {
	owned := func() *Link {
		return &Link{
			ID:          "id-1",
			OwnerID:     "user-1",
			OriginalURL: "https://example.com",
			ShortCode:   "abc123",
			IsActive:    true,
		}
	}

	t.Run("not owned returns not found", func(t *testing.T) {
		lr := &mockLinkRepo{
			findByIDFn: func(_ context.Context, _, _ string) (*Link, error) { return nil, ErrNotFound },
		}
		svc := newTestService(lr, nil, nil)

		_, err := svc.UpdateLink(context.Background(), UpdateLinkInput{ID: "id-1", OwnerID: "intruder"})
		if err != ErrNotFound {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("alias change updates short code", func(t *testing.T) {
		lr := &mockLinkRepo{
			findByIDFn: func(_ context.Context, _, _ string) (*Link, error) { return owned(), nil },
			updateFn:   func(_ context.Context, _ *Link) error { return nil },
		}
		svc := newTestService(lr, nil, nil)

		alias := "new-alias"
		link, err := svc.UpdateLink(context.Background(), UpdateLinkInput{
			ID: "id-1", OwnerID: "user-1", CustomAlias: &alias,
		})
		if err != nil {
			t.Fatal(err)
		}
		if link.ShortCode != "new-alias" || link.CustomAlias != "new-alias" {
			t.Errorf("code=%q alias=%q, want new-alias", link.ShortCode, link.CustomAlias)
		}
	})

	t.Run("alias equal to current code is not a conflict", func(t *testing.T) {
		lr := &mockLinkRepo{
			findByIDFn: func(_ context.Context, _, _ string) (*Link, error) { return owned(), nil },
			codeExistsExceptFn: func(_ context.Context, _, _ string) (bool, error) {
				t.Error("uniqueness check must not run for a self-match")
				return false, nil
			},
			updateFn: func(_ context.Context, _ *Link) error { return nil },
		}
		svc := newTestService(lr, nil, nil)

		alias := "abc123"
		if _, err := svc.UpdateLink(context.Background(), UpdateLinkInput{
			ID: "id-1", OwnerID: "user-1", CustomAlias: &alias,
		}); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("alias taken by another link", func(t *testing.T) {
		lr := &mockLinkRepo{
			findByIDFn: func(_ context.Context, _, _ string) (*Link, error) { return owned(), nil },
			codeExistsExceptFn: func(_ context.Context, code, excludeID string) (bool, error) {
				if excludeID != "id-1" {
					t.Errorf("exclude id = %q, want id-1", excludeID)
				}
				return true, nil
			},
		}
		svc := newTestService(lr, nil, nil)

		alias := "someone-elses"
		_, err := svc.UpdateLink(context.Background(), UpdateLinkInput{
			ID: "id-1", OwnerID: "user-1", CustomAlias: &alias,
		})
		if err != ErrAliasTaken {
			t.Errorf("got %v, want ErrAliasTaken", err)
		}
	})

	t.Run("empty alias leaves short code untouched", func(t *testing.T) {
		lr := &mockLinkRepo{
			findByIDFn: func(_ context.Context, _, _ string) (*Link, error) { return owned(), nil },
			updateFn:   func(_ context.Context, _ *Link) error { return nil },
		}
		svc := newTestService(lr, nil, nil)

		alias := ""
		link, err := svc.UpdateLink(context.Background(), UpdateLinkInput{
			ID: "id-1", OwnerID: "user-1", CustomAlias: &alias,
		})
		if err != nil {
			t.Fatal(err)
		}
		if link.ShortCode != "abc123" {
			t.Errorf("short code = %q, want abc123", link.ShortCode)
		}
	})

	t.Run("deactivation", func(t *testing.T) {
		lr := &mockLinkRepo{
			findByIDFn: func(_ context.Context, _, _ string) (*Link, error) { return owned(), nil },
			updateFn:   func(_ context.Context, _ *Link) error { return nil },
		}
		svc := newTestService(lr, nil, nil)

		inactive := false
		link, err := svc.UpdateLink(context.Background(), UpdateLinkInput{
			ID: "id-1", OwnerID: "user-1", IsActive: &inactive,
		})
		if err != nil {
			t.Fatal(err)
		}
		if link.IsActive {
			t.Error("link should be inactive")
		}
	})
}

func TestResolve(t *testing.T) {
	active := func() *Link {
		return &Link{
			ID:          "id-1",
			OriginalURL: "https://example.com/a",
			ShortCode:   "abc123",
			IsActive:    true,
			TotalClicks: 4,
		}
	}

	t.Run("unknown code", func(t *testing.T) {
		lr := &mockLinkRepo{
			findByCodeFn: func(_ context.Context, _ string) (*Link, error) { return nil, ErrNotFound },
		}
		svc := newTestService(lr, nil, nil)

		_, err := svc.Resolve(context.Background(), "nope")
		if err != ErrNotFound {
			t.Errorf("got %v, want ErrNotFound", err)
		}
		if lr.incrementCalls != 0 {
			t.Errorf("increment calls = %d, want 0", lr.incrementCalls)
		}
	})

	t.Run("inactive link does not count", func(t *testing.T) {
		link := active()
		link.IsActive = false
		lr := &mockLinkRepo{
			findByCodeFn: func(_ context.Context, _ string) (*Link, error) { return link, nil },
		}
		svc := newTestService(lr, nil, nil)

		_, err := svc.Resolve(context.Background(), "abc123")
		if err != ErrInactive {
			t.Errorf("got %v, want ErrInactive", err)
		}
		if lr.incrementCalls != 0 {
			t.Errorf("increment calls = %d, want 0", lr.incrementCalls)
		}
	})

	t.Run("expired link does not count", func(t *testing.T) {
		link := active()
		past := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		link.ExpiresAt = &past
		lr := &mockLinkRepo{
			findByCodeFn: func(_ context.Context, _ string) (*Link, error) { return link, nil },
		}
		svc := newTestService(lr, nil, nil)

		_, err := svc.Resolve(context.Background(), "abc123")
		if err != ErrExpired {
			t.Errorf("got %v, want ErrExpired", err)
		}
		if lr.incrementCalls != 0 {
			t.Errorf("increment calls = %d, want 0", lr.incrementCalls)
		}
	})

	t.Run("future expiry still resolves", func(t *testing.T) {
		link := active()
		future := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		link.ExpiresAt = &future
		lr := &mockLinkRepo{
			findByCodeFn: func(_ context.Context, _ string) (*Link, error) { return link, nil },
		}
		svc := newTestService(lr, nil, nil)

		got, err := svc.Resolve(context.Background(), "abc123")
		if err != nil {
			t.Fatal(err)
		}
		if got.OriginalURL != "https://example.com/a" {
			t.Errorf("url = %q", got.OriginalURL)
		}
	})

	t.Run("success increments exactly once", func(t *testing.T) {
		lr := &mockLinkRepo{
			findByCodeFn: func(_ context.Context, _ string) (*Link, error) { return active(), nil },
		}
		svc := newTestService(lr, nil, nil)

		got, err := svc.Resolve(context.Background(), "abc123")
		if err != nil {
			t.Fatal(err)
		}
		if lr.incrementCalls != 1 {
			t.Errorf("increment calls = %d, want 1", lr.incrementCalls)
		}
		if got.TotalClicks != 5 {
			t.Errorf("total clicks = %d, want 5", got.TotalClicks)
		}
	})

	t.Run("blank code", func(t *testing.T) {
		svc := newTestService(&mockLinkRepo{}, nil, nil)
		if _, err := svc.Resolve(context.Background(), "   "); err != ErrNotFound {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})
}

func TestDashboardStats(t *testing.T) {
	sr := &mockStatsRepo{
		dashboardFn: func(_ context.Context, ownerID string) (*DashboardStats, error) {
			if ownerID != "user-1" {
				t.Errorf("owner = %q, want user-1", ownerID)
			}
			return &DashboardStats{TotalURLs: 1, TotalClicks: 1}, nil
		},
	}
	svc := newTestService(&mockLinkRepo{}, sr, nil)

	stats, err := svc.DashboardStats(context.Background(), "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalURLs != 1 || stats.TotalClicks != 1 {
		t.Errorf("stats = %+v, want {1 1}", stats)
	}
}
