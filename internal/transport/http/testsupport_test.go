package http

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/linkboard/linkboard/internal/config"
	"github.com/linkboard/linkboard/internal/processing/auth"
	"github.com/linkboard/linkboard/internal/processing/links"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "linkboard-test", Env: "test"},
		Shortener: config.ShortenerConfig{
			BaseURL:        "http://sho.rt",
			CodeLength:     6,
			RedirectStatus: 302,
		},
		Auth: config.AuthConfig{
			SessionSecret: "test-secret",
			SessionTTL:    time.Hour,
			CookieName:    "linkboard_session",
		},
	}
}

// memLinkRepo is an in-memory LinkRepository for handler tests.
type memLinkRepo struct {
	mu    sync.Mutex
	links map[string]*links.Link
}

func newMemLinkRepo() *memLinkRepo {
	return &memLinkRepo{links: make(map[string]*links.Link)}
}

func (r *memLinkRepo) Insert(_ context.Context, link *links.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.links {
		if existing.ShortCode == link.ShortCode {
			return links.ErrAliasTaken
		}
	}
	clone := *link
	r.links[link.ID] = &clone
	return nil
}

func (r *memLinkRepo) FindByID(_ context.Context, id, ownerID string) (*links.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[id]
	if !ok || link.OwnerID != ownerID {
		return nil, links.ErrNotFound
	}
	clone := *link
	return &clone, nil
}

func (r *memLinkRepo) FindByCode(_ context.Context, code string) (*links.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, link := range r.links {
		if link.ShortCode == code {
			clone := *link
			return &clone, nil
		}
	}
	return nil, links.ErrNotFound
}

func (r *memLinkRepo) CodeExists(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, link := range r.links {
		if link.ShortCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *memLinkRepo) CodeExistsExcept(_ context.Context, code, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, link := range r.links {
		if link.ShortCode == code && link.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memLinkRepo) List(_ context.Context, in links.ListLinksInput) ([]*links.Link, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*links.Link
	for _, link := range r.links {
		if link.OwnerID != in.OwnerID {
			continue
		}
		if in.Search != "" {
			needle := strings.ToLower(in.Search)
			if !strings.Contains(strings.ToLower(link.OriginalURL), needle) &&
				!strings.Contains(strings.ToLower(link.ShortCode), needle) &&
				!strings.Contains(strings.ToLower(link.Title), needle) {
				continue
			}
		}
		clone := *link
		matched = append(matched, &clone)
	}

	total := int64(len(matched))
	start := (in.Page - 1) * in.PageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + in.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *memLinkRepo) Update(_ context.Context, link *links.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.links[link.ID]
	if !ok || existing.OwnerID != link.OwnerID {
		return links.ErrNotFound
	}
	for _, other := range r.links {
		if other.ID != link.ID && other.ShortCode == link.ShortCode {
			return links.ErrAliasTaken
		}
	}
	clone := *link
	r.links[link.ID] = &clone
	return nil
}

func (r *memLinkRepo) Delete(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[id]
	if !ok || link.OwnerID != ownerID {
		return links.ErrNotFound
	}
	delete(r.links, id)
	return nil
}

func (r *memLinkRepo) IncrementClicks(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[id]
	if !ok {
		return links.ErrNotFound
	}
	link.TotalClicks++
	link.LastClickedAt = &at
	return nil
}

type memStatsRepo struct {
	links *memLinkRepo
}

func (r *memStatsRepo) Dashboard(_ context.Context, ownerID string) (*links.DashboardStats, error) {
	r.links.mu.Lock()
	defer r.links.mu.Unlock()
	stats := &links.DashboardStats{}
	for _, link := range r.links.links {
		if link.OwnerID == ownerID {
			stats.TotalURLs++
			stats.TotalClicks += link.TotalClicks
		}
	}
	return stats, nil
}

// memUserRepo is an in-memory UserRepository for handler tests.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*auth.User)}
}

func (r *memUserRepo) Insert(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return auth.ErrEmailTaken
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

// memSessionRepo is an in-memory SessionRepository for handler tests.
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*auth.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*auth.Session)}
}

func (r *memSessionRepo) Insert(_ context.Context, session *auth.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *session
	r.sessions[session.Token] = &clone
	return nil
}

func (r *memSessionRepo) FindByToken(_ context.Context, token string) (*auth.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok {
		return nil, auth.ErrNoSession
	}
	clone := *session
	return &clone, nil
}

func (r *memSessionRepo) DeleteByToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[token]; !ok {
		return auth.ErrNoSession
	}
	delete(r.sessions, token)
	return nil
}
