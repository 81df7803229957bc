package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/linkboard/linkboard/internal/config"
	"github.com/linkboard/linkboard/internal/constants"
	"github.com/linkboard/linkboard/internal/infrastructure/logger"
	appvalidation "github.com/linkboard/linkboard/internal/infrastructure/validation"
	"github.com/linkboard/linkboard/internal/processing/links"
	"github.com/linkboard/linkboard/internal/transport/http/middleware"
	"github.com/linkboard/linkboard/pkg/httputils"
	"go.uber.org/zap"
)

type LinksHandler struct {
	cfg *config.Config
	svc *links.Service
}

func NewLinksHandler(cfg *config.Config, svc *links.Service) *LinksHandler {
	return &LinksHandler{cfg: cfg, svc: svc}
}

type createLinkRequest struct {
	URL         string     `json:"url" validate:"required,notblank,http_url"`
	Title       string     `json:"title,omitempty" validate:"omitempty,max=200"`
	CustomAlias string     `json:"customAlias,omitempty" validate:"omitempty,short_alias"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty" validate:"omitempty,future"`
}

type updateLinkRequest struct {
	URL         *string         `json:"url,omitempty" validate:"omitempty,notblank,http_url"`
	Title       *string         `json:"title,omitempty" validate:"omitempty,max=200"`
	CustomAlias *string         `json:"customAlias,omitempty"`
	IsActive    *bool           `json:"isActive,omitempty"`
	ExpiresAt   json.RawMessage `json:"expiresAt,omitempty"`
}

// expiresAtPatch distinguishes an absent expiresAt (leave it alone) from an
// explicit null (clear it) from a timestamp (set it).
func (req *updateLinkRequest) expiresAtPatch() (set bool, value *time.Time, err error) {
	if len(req.ExpiresAt) == 0 {
		return false, nil, nil
	}
	if string(req.ExpiresAt) == "null" {
		return true, nil, nil
	}
	var t time.Time
	if err := json.Unmarshal(req.ExpiresAt, &t); err != nil {
		return false, nil, err
	}
	return true, &t, nil
}

type linkResponse struct {
	ID            string     `json:"id"`
	URL           string     `json:"url"`
	ShortCode     string     `json:"shortCode"`
	ShortURL      string     `json:"shortUrl"`
	CustomAlias   string     `json:"customAlias,omitempty"`
	Title         string     `json:"title,omitempty"`
	TotalClicks   int64      `json:"totalClicks"`
	IsActive      bool       `json:"isActive"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	LastClickedAt *time.Time `json:"lastClickedAt,omitempty"`
}

type listLinksResponse struct {
	Data     []linkResponse     `json:"data"`
	Metadata links.PageMetadata `json:"metadata"`
}

func (h *LinksHandler) toResponse(link *links.Link) linkResponse {
	return linkResponse{
		ID:            link.ID,
		URL:           link.OriginalURL,
		ShortCode:     link.ShortCode,
		ShortURL:      strings.TrimRight(h.cfg.Shortener.BaseURL, "/") + "/" + link.ShortCode,
		CustomAlias:   link.CustomAlias,
		Title:         link.Title,
		TotalClicks:   link.TotalClicks,
		IsActive:      link.IsActive,
		ExpiresAt:     link.ExpiresAt,
		CreatedAt:     link.CreatedAt,
		UpdatedAt:     link.UpdatedAt,
		LastClickedAt: link.LastClickedAt,
	}
}

func (h *LinksHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		httputils.WriteAPIError(w, r, constants.ErrUnauthorized)
		return
	}

	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}
	if err := appvalidation.Validate(req); err != nil {
		httputils.WriteAPIError(w, r, createValidationError(err))
		return
	}

	link, err := h.svc.CreateLink(r.Context(), links.CreateLinkInput{
		OwnerID:     identity.UserID,
		OriginalURL: req.URL,
		Title:       req.Title,
		CustomAlias: req.CustomAlias,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		h.writeLinkError(w, r, err, "failed to create link")
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessLinkCreated, h.toResponse(link))
}

func (h *LinksHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		httputils.WriteAPIError(w, r, constants.ErrUnauthorized)
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("pageSize"))

	result, err := h.svc.ListLinks(r.Context(), links.ListLinksInput{
		OwnerID:  identity.UserID,
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(query.Get("search")),
	})
	if err != nil {
		logger.Error("failed to list links", zap.Error(err))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
		return
	}

	data := make([]linkResponse, 0, len(result.Data))
	for _, link := range result.Data {
		data = append(data, h.toResponse(link))
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessLinksFound, listLinksResponse{
		Data:     data,
		Metadata: result.Metadata,
	})
}

func (h *LinksHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		httputils.WriteAPIError(w, r, constants.ErrUnauthorized)
		return
	}

	var req updateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}
	if err := appvalidation.Validate(req); err != nil {
		httputils.WriteAPIError(w, r, createValidationError(err))
		return
	}

	setExpiresAt, expiresAt, err := req.expiresAtPatch()
	if err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}

	in := links.UpdateLinkInput{
		ID:           r.PathValue("id"),
		OwnerID:      identity.UserID,
		OriginalURL:  req.URL,
		Title:        req.Title,
		CustomAlias:  req.CustomAlias,
		IsActive:     req.IsActive,
		SetExpiresAt: setExpiresAt,
		ExpiresAt:    expiresAt,
	}

	link, err := h.svc.UpdateLink(r.Context(), in)
	if err != nil {
		h.writeLinkError(w, r, err, "failed to update link")
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessLinkUpdated, h.toResponse(link))
}

func (h *LinksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		httputils.WriteAPIError(w, r, constants.ErrUnauthorized)
		return
	}

	if err := h.svc.DeleteLink(r.Context(), r.PathValue("id"), identity.UserID); err != nil {
		h.writeLinkError(w, r, err, "failed to delete link")
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessLinkDeleted, nil)
}

func (h *LinksHandler) Stats(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		httputils.WriteAPIError(w, r, constants.ErrUnauthorized)
		return
	}

	stats, err := h.svc.DashboardStats(r.Context(), identity.UserID)
	if err != nil {
		logger.Error("failed to fetch dashboard stats", zap.Error(err))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessStatsFound, stats)
}

func (h *LinksHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	link, err := h.svc.Resolve(r.Context(), code)
	if err != nil {
		switch err {
		case links.ErrNotFound:
			httputils.WriteAPIError(w, r, constants.ErrLinkNotFound)
		case links.ErrInactive:
			httputils.WriteAPIError(w, r, constants.ErrLinkInactive)
		case links.ErrExpired:
			httputils.WriteAPIError(w, r, constants.ErrLinkExpired)
		default:
			logger.Error("failed to resolve short code", zap.Error(err), zap.String("code", code))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	http.Redirect(w, r, link.OriginalURL, h.cfg.Shortener.RedirectStatus)
}

func (h *LinksHandler) writeLinkError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	switch err {
	case links.ErrInvalidURL:
		httputils.WriteAPIError(w, r, constants.ErrInvalidURL)
	case links.ErrInvalidAlias:
		httputils.WriteAPIError(w, r, constants.ErrInvalidAlias)
	case links.ErrReservedAlias:
		httputils.WriteAPIError(w, r, constants.ErrReservedAlias)
	case links.ErrAliasTaken:
		httputils.WriteAPIError(w, r, constants.ErrAliasTaken)
	case links.ErrAllocationExhausted:
		httputils.WriteAPIError(w, r, constants.ErrAllocationExhausted)
	case links.ErrNotFound:
		httputils.WriteAPIError(w, r, constants.ErrLinkNotFound)
	default:
		logger.Error(logMsg, zap.Error(err))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
	}
}

func createValidationError(err error) constants.APIError {
	apiErr := constants.ErrInvalidRequestBody
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			switch {
			case e.Field() == "url":
				return constants.ErrInvalidURL
			case e.Field() == "customAlias":
				return constants.ErrInvalidAlias
			case e.Field() == "expiresAt" && e.Tag() == "future":
				return apiErr.WithMessage("expiresAt must be in the future")
			case e.Field() == "title" && e.Tag() == "max":
				return apiErr.WithMessage("title must be at most 200 characters")
			}
		}
	}
	return apiErr
}
