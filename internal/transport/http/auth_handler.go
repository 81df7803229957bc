package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/linkboard/linkboard/internal/config"
	"github.com/linkboard/linkboard/internal/constants"
	"github.com/linkboard/linkboard/internal/infrastructure/logger"
	appvalidation "github.com/linkboard/linkboard/internal/infrastructure/validation"
	"github.com/linkboard/linkboard/internal/processing/auth"
	"github.com/linkboard/linkboard/internal/transport/http/middleware"
	"github.com/linkboard/linkboard/pkg/httputils"
	"go.uber.org/zap"
)

type AuthHandler struct {
	cfg *config.Config
	svc *auth.Service
}

func NewAuthHandler(cfg *config.Config, svc *auth.Service) *AuthHandler {
	return &AuthHandler{cfg: cfg, svc: svc}
}

type signUpRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type onboardingResponse struct {
	HasAdminAccount bool `json:"hasAdminAccount"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}
	if err := appvalidation.Validate(req); err != nil {
		httputils.WriteAPIError(w, r, authValidationError(err))
		return
	}

	cred, err := h.svc.SignUp(r.Context(), auth.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch err {
		case auth.ErrAdminExists:
			httputils.WriteAPIError(w, r, constants.ErrAdminExists)
		case auth.ErrEmailTaken:
			httputils.WriteAPIError(w, r, constants.ErrEmailTaken)
		default:
			logger.Error("failed to sign up", zap.Error(err))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	h.setSessionCookie(w, cred)
	httputils.WriteAPISuccess(w, r, constants.SuccessSignedUp, cred.Identity)
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}
	if err := appvalidation.Validate(req); err != nil {
		httputils.WriteAPIError(w, r, authValidationError(err))
		return
	}

	cred, err := h.svc.SignIn(r.Context(), auth.SignInInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		switch err {
		case auth.ErrInvalidCredentials:
			httputils.WriteAPIError(w, r, constants.ErrInvalidCredentials)
		default:
			logger.Error("failed to sign in", zap.Error(err))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	h.setSessionCookie(w, cred)
	httputils.WriteAPISuccess(w, r, constants.SuccessSignedIn, cred.Identity)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cfg.Auth.CookieName); err == nil && cookie.Value != "" {
		if err := h.svc.SignOut(r.Context(), cookie.Value); err != nil {
			logger.Error("failed to sign out", zap.Error(err))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
			return
		}
	}

	h.clearSessionCookie(w)
	httputils.WriteAPISuccess(w, r, constants.SuccessSignedOut, nil)
}

// Session returns the identity behind the current session cookie. The route
// sits behind SessionMiddleware, so the identity is always present here.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		httputils.WriteAPIError(w, r, constants.ErrUnauthorized)
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessSessionFound, identity)
}

// Onboarding reports whether the admin account has been created yet. The
// frontend uses it to choose between the onboarding and sign-in screens, so
// it is deliberately unauthenticated.
func (h *AuthHandler) Onboarding(w http.ResponseWriter, r *http.Request) {
	exists, err := h.svc.HasAdminAccount(r.Context())
	if err != nil {
		logger.Error("failed to check onboarding state", zap.Error(err))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessOnboardingStatus, onboardingResponse{
		HasAdminAccount: exists,
	})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, cred *auth.Credential) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.Auth.CookieName,
		Value:    cred.Token,
		Path:     "/",
		Expires:  cred.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cfg.App.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.Auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.App.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func authValidationError(err error) constants.APIError {
	apiErr := constants.ErrInvalidRequestBody
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			switch {
			case e.Field() == "email":
				return apiErr.WithMessage("a valid email is required")
			case e.Field() == "password" && e.Tag() == "min":
				return apiErr.WithMessage("password must be at least 8 characters")
			case e.Field() == "password":
				return apiErr.WithMessage("password is required")
			case e.Field() == "name":
				return apiErr.WithMessage("name is required")
			}
		}
	}
	return apiErr
}
