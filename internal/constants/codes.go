package constants

// Error codes used in API responses.
// These are the machine-readable codes returned in the "error" field.
const (
	// Common error codes
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeRateLimited    = "RATE_LIMITED"

	// Shortener-specific codes
	CodeInvalidURL          = "INVALID_URL"
	CodeInvalidAlias        = "INVALID_ALIAS"
	CodeReservedAlias       = "RESERVED_ALIAS"
	CodeAliasTaken          = "ALIAS_TAKEN"
	CodeAllocationExhausted = "ALLOCATION_EXHAUSTED"
	CodeLinkNotFound        = "LINK_NOT_FOUND"
	CodeLinkInactive        = "LINK_INACTIVE"
	CodeLinkExpired         = "LINK_EXPIRED"

	// Auth-specific codes
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAdminExists        = "ADMIN_EXISTS"
	CodeEmailTaken         = "EMAIL_TAKEN"

	// Success codes
	CodeLinkCreated      = "LINK_CREATED"
	CodeLinkUpdated      = "LINK_UPDATED"
	CodeLinkDeleted      = "LINK_DELETED"
	CodeLinksFound       = "LINKS_FOUND"
	CodeStatsFound       = "STATS_FOUND"
	CodeSignedUp         = "SIGNED_UP"
	CodeSignedIn         = "SIGNED_IN"
	CodeSignedOut        = "SIGNED_OUT"
	CodeSessionFound     = "SESSION_FOUND"
	CodeOnboardingStatus = "ONBOARDING_STATUS"
)
