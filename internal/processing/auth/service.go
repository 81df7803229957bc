package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const defaultSessionTTL = 7 * 24 * time.Hour

type Service struct {
	users      UserRepository
	sessions   SessionRepository
	signer     *TokenSigner
	sessionTTL time.Duration
	now        func() time.Time
}

func NewService(users UserRepository, sessions SessionRepository, signer *TokenSigner, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}

	return &Service{
		users:      users,
		sessions:   sessions,
		signer:     signer,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// HasAdminAccount reports whether any account exists. The frontend uses it to
// decide between the onboarding screen and the login screen.
func (s *Service) HasAdminAccount(ctx context.Context) (bool, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SignUp creates the admin account and signs it in. It is an onboarding-only
// operation: once any account exists further sign-ups are refused.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*Credential, error) {
	exists, err := s.HasAdminAccount(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAdminExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	return s.openSession(ctx, user, "", "")
}

// dummyHash keeps SignIn's cost uniform: an unknown email still pays one
// bcrypt comparison, so response timing does not reveal which emails exist.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("linkboard-dummy-password"), bcrypt.DefaultCost)

func (s *Service) SignIn(ctx context.Context, in SignInInput) (*Credential, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if err == ErrUserNotFound {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(in.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.openSession(ctx, user, in.IPAddress, in.UserAgent)
}

// SignOut revokes the session behind the given cookie value. An unparseable
// or already-revoked token is not an error: the end state is the same.
func (s *Service) SignOut(ctx context.Context, cookieValue string) error {
	sessionToken, err := s.signer.Parse(cookieValue)
	if err != nil {
		return nil
	}
	if err := s.sessions.DeleteByToken(ctx, sessionToken); err != nil && err != ErrNoSession {
		return err
	}
	return nil
}

// SessionFromToken resolves a cookie value to an authenticated identity.
// The JWT signature and expiry are checked first, then the session row
// (revocation), then its own expiry. Every failure is ErrNoSession.
func (s *Service) SessionFromToken(ctx context.Context, cookieValue string) (*Identity, error) {
	sessionToken, err := s.signer.Parse(cookieValue)
	if err != nil {
		return nil, ErrNoSession
	}

	session, err := s.sessions.FindByToken(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	if s.now().UTC().After(session.ExpiresAt.UTC()) {
		return nil, ErrNoSession
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if err == ErrUserNotFound {
			return nil, ErrNoSession
		}
		return nil, err
	}

	return &Identity{UserID: user.ID, Name: user.Name, Email: user.Email}, nil
}

func (s *Service) openSession(ctx context.Context, user *User, ip, userAgent string) (*Credential, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	session := &Session{
		ID:        uuid.New().String(),
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Insert(ctx, session); err != nil {
		return nil, err
	}

	signed, err := s.signer.Sign(user.ID, token, session.ExpiresAt)
	if err != nil {
		return nil, err
	}

	return &Credential{
		Identity:  Identity{UserID: user.ID, Name: user.Name, Email: user.Email},
		Token:     signed,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
