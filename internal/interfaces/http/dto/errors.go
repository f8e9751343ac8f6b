package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when identity is required but missing
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// Sync error codes
const (
	// ErrCodeSyncAlreadyRunning is used when a job's lock is held
	ErrCodeSyncAlreadyRunning = "ERR_SYNC_ALREADY_RUNNING"
	// ErrCodeCredentialsMissing is used when a platform is not connected
	ErrCodeCredentialsMissing = "ERR_CREDENTIALS_MISSING"
	// ErrCodeCredentialsExpired is used when stored credentials expired
	ErrCodeCredentialsExpired = "ERR_CREDENTIALS_EXPIRED"
	// ErrCodePlatformUnavailable is used when the platform API is down
	ErrCodePlatformUnavailable = "ERR_PLATFORM_UNAVAILABLE"
)

// Order error codes
const (
	// ErrCodeInvalidStatusTransition is used when a status change
	// violates the transition table
	ErrCodeInvalidStatusTransition = "ERR_INVALID_STATUS_TRANSITION"
	// ErrCodeInvalidState is used when an operation is invalid for the
	// current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeSyncAlreadyRunning:  http.StatusConflict,
	ErrCodeCredentialsMissing:  http.StatusUnprocessableEntity,
	ErrCodeCredentialsExpired:  http.StatusUnprocessableEntity,
	ErrCodePlatformUnavailable: http.StatusBadGateway,

	ErrCodeInvalidStatusTransition: http.StatusUnprocessableEntity,
	ErrCodeInvalidState:            http.StatusUnprocessableEntity,

	// Domain error codes surface without the ERR_ prefix
	"NOT_FOUND":                 http.StatusNotFound,
	"ALREADY_EXISTS":            http.StatusConflict,
	"INVALID_INPUT":             http.StatusBadRequest,
	"CONCURRENCY_CONFLICT":      http.StatusConflict,
	"INVALID_STATE":             http.StatusUnprocessableEntity,
	"INVALID_STATUS":            http.StatusBadRequest,
	"INVALID_STATUS_TRANSITION": http.StatusUnprocessableEntity,
	"INVALID_TRANSITION_SOURCE": http.StatusBadRequest,
	"FORCE_NOT_ALLOWED":         http.StatusForbidden,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting
// to 500
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
