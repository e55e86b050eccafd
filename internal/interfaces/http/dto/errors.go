package dto

import "net/http"

// Error codes surfaced by the API. The domain layer produces most of
// these; the rest come from request parsing and auth.
const (
	ErrCodeInternal     = "INTERNAL"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"

	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeTerminalState       = "TERMINAL_STATE"
	ErrCodeSelfControl         = "SELF_CONTROL"
	ErrCodeTripClosed          = "TRIP_CLOSED"
	ErrCodeOrderNotDeliverable = "ORDER_NOT_DELIVERABLE"
	ErrCodeDuplicateRequest    = "DUPLICATE_REQUEST"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes.
// Workflow violations (wrong state, self-control, closed trip) are
// conflicts with current resource state, so they map to 409.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeInvalidInput:      http.StatusBadRequest,
	"INVALID_CLIENT_NAME":    http.StatusBadRequest,
	"INVALID_TRIP_NAME":      http.StatusBadRequest,
	"INVALID_PRODUCT_CODE":   http.StatusBadRequest,
	"INVALID_QUANTITY":       http.StatusBadRequest,
	"INVALID_PRICE":          http.StatusBadRequest,
	"INVALID_AMOUNT":         http.StatusBadRequest,
	"INVALID_PAYMENT":        http.StatusBadRequest,
	"INVALID_PAYMENT_METHOD": http.StatusBadRequest,
	"INVALID_EXPENSE_TYPE":   http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:      http.StatusNotFound,
	"PRODUCT_NOT_FOUND":  http.StatusNotFound,
	"CLIENT_NOT_FOUND":   http.StatusNotFound,
	"EXPENSE_NOT_FOUND":  http.StatusNotFound,
	ErrCodeConflict:      http.StatusConflict,
	ErrCodeAlreadyExists: http.StatusConflict,

	ErrCodeInvalidState:        http.StatusConflict,
	ErrCodeTerminalState:       http.StatusConflict,
	ErrCodeSelfControl:         http.StatusConflict,
	ErrCodeTripClosed:          http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,
	ErrCodeOrderNotDeliverable: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code,
// defaulting to 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
