package constants

import "net/http"

// APISuccess represents a standardized API success response with code and HTTP status.
// Use these predefined success constants for consistent API responses across the application.
type APISuccess struct {
	Code   string
	Status int
}

// Link-related success responses
var (
	SuccessLinkCreated = APISuccess{
		Code:   CodeLinkCreated,
		Status: http.StatusCreated,
	}
	SuccessLinkUpdated = APISuccess{
		Code:   CodeLinkUpdated,
		Status: http.StatusOK,
	}
	SuccessLinkDeleted = APISuccess{
		Code:   CodeLinkDeleted,
		Status: http.StatusOK,
	}
	SuccessLinksFound = APISuccess{
		Code:   CodeLinksFound,
		Status: http.StatusOK,
	}
	SuccessStatsFound = APISuccess{
		Code:   CodeStatsFound,
		Status: http.StatusOK,
	}
)

// Auth-related success responses
var (
	SuccessSignedUp = APISuccess{
		Code:   CodeSignedUp,
		Status: http.StatusCreated,
	}
	SuccessSignedIn = APISuccess{
		Code:   CodeSignedIn,
		Status: http.StatusOK,
	}
	SuccessSignedOut = APISuccess{
		Code:   CodeSignedOut,
		Status: http.StatusOK,
	}
	SuccessSessionFound = APISuccess{
		Code:   CodeSessionFound,
		Status: http.StatusOK,
	}
	SuccessOnboardingStatus = APISuccess{
		Code:   CodeOnboardingStatus,
		Status: http.StatusOK,
	}
)
