package dto

import "net/http"

// Interface-level error codes for failures that never reach the domain
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeValidation = "VALIDATION_FAILED"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Unknown codes fall back to 500 so new domain failures are never
// silently reported as client errors.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeInternal:   http.StatusInternalServerError,

	"NOT_FOUND":       http.StatusNotFound,
	"TENANT_REQUIRED": http.StatusBadRequest,

	"DUPLICATE_BILL_NUMBER": http.StatusConflict,
	"ALREADY_UNDONE":        http.StatusConflict,

	"INVALID_STATE":        http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":   http.StatusUnprocessableEntity,
	"INSUFFICIENT_BALANCE": http.StatusUnprocessableEntity,

	"INVALID_INPUT":       http.StatusBadRequest,
	"INVALID_BILL_NUMBER": http.StatusBadRequest,
	"INVALID_QUANTITY":    http.StatusBadRequest,
	"INVALID_PRICE":       http.StatusBadRequest,
	"INVALID_PAYMENT":     http.StatusBadRequest,
	"INVALID_PRODUCT":     http.StatusBadRequest,
	"INVALID_CAMPAIGN":    http.StatusBadRequest,
	"INVALID_RULE":        http.StatusBadRequest,
	"NO_ITEMS":            http.StatusBadRequest,
}

// HTTPStatusFor resolves the HTTP status for a domain error code
func HTTPStatusFor(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
