package constants

// Error messages used in API responses.
// These are the human-readable messages returned in the "message" field.
const (
	// Common messages
	MsgInvalidRequestBody = "Invalid request body"
	MsgInternalError      = "An internal error occurred"
	MsgUnauthorized       = "Unauthorized"
	MsgRateLimited        = "Too many requests"

	// Shortener-specific messages
	MsgInvalidURL          = "Invalid URL (must be http or https)"
	MsgInvalidAlias        = "Alias must be 3-20 letters, numbers, hyphens or underscores"
	MsgReservedAlias       = "This alias is reserved for system use"
	MsgAliasTaken          = "Custom alias is already in use"
	MsgAllocationExhausted = "Failed to generate a unique short code. Please try again."
	MsgLinkNotFound        = "Short URL not found"
	MsgLinkInactive        = "This short URL is currently inactive"
	MsgLinkExpired         = "This short URL has expired"

	// Auth-specific messages
	MsgInvalidCredentials = "Invalid email or password"
	MsgAdminExists        = "An admin account already exists"
	MsgEmailTaken         = "Email is already registered"
)
