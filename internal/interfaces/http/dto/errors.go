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

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
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

// Dispatch error codes
const (
	// ErrCodeMappingMissing is used when required field mappings resolve empty
	ErrCodeMappingMissing = "ERR_MAPPING_MISSING"
	// ErrCodeParamsMissing is used when required provider params cannot be satisfied
	ErrCodeParamsMissing = "ERR_PARAMS_MISSING"
	// ErrCodeProviderRejected is used when the courier returned an error envelope
	ErrCodeProviderRejected = "ERR_PROVIDER_REJECTED"
	// ErrCodeTransportFailure is used when the courier HTTP call itself failed
	ErrCodeTransportFailure = "ERR_TRANSPORT_FAILURE"
	// ErrCodeConfigurationInvalid is used when pre-flight validation refuses dispatch
	ErrCodeConfigurationInvalid = "ERR_CONFIGURATION_INVALID"
	// ErrCodeDispatchInProgress is used when another dispatch holds the order guard
	ErrCodeDispatchInProgress = "ERR_DISPATCH_IN_PROGRESS"
	// ErrCodeUnsupportedProtocol is used when the configured protocol cannot dispatch
	ErrCodeUnsupportedProtocol = "ERR_UNSUPPORTED_PROTOCOL"
	// ErrCodeOrderNotAssigned is used when a status update targets an unassigned order
	ErrCodeOrderNotAssigned = "ERR_ORDER_NOT_ASSIGNED"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
	// ErrCodeTooManyRequests is an alias for rate limiting
	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	// Dispatch errors. Client-side configuration problems are 422; provider
	// and transport failures surface as 502 because the upstream call failed.
	ErrCodeMappingMissing:       http.StatusUnprocessableEntity,
	ErrCodeParamsMissing:        http.StatusUnprocessableEntity,
	ErrCodeProviderRejected:     http.StatusBadGateway,
	ErrCodeTransportFailure:     http.StatusBadGateway,
	ErrCodeConfigurationInvalid: http.StatusUnprocessableEntity,
	ErrCodeDispatchInProgress:   http.StatusConflict,
	ErrCodeUnsupportedProtocol:  http.StatusUnprocessableEntity,
	ErrCodeOrderNotAssigned:     http.StatusUnprocessableEntity,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTooManyRequests: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps bare error codes to the standardized format.
// Domain errors carry the short form; the wire format uses the ERR_ prefix.
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":         ErrCodeNotFound,
	"ALREADY_EXISTS":    ErrCodeAlreadyExists,
	"INVALID_INPUT":     ErrCodeInvalidInput,
	"INVALID_STATE":     ErrCodeInvalidState,
	"UNAUTHORIZED":      ErrCodeUnauthorized,
	"FORBIDDEN":         ErrCodeForbidden,
	"VALIDATION_ERROR":  ErrCodeValidation,
	"BAD_REQUEST":       ErrCodeBadRequest,
	"INTERNAL_ERROR":    ErrCodeInternal,
	"MAPPING_MISSING":   ErrCodeMappingMissing,
	"PARAMS_MISSING":    ErrCodeParamsMissing,
	"PROVIDER_REJECTED": ErrCodeProviderRejected,
	"TRANSPORT_FAILURE": ErrCodeTransportFailure,
}

// NormalizeErrorCode converts a legacy error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
