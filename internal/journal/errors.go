package journal

import (
	"errors"
	"net/http"
)

// Domain errors for journal operations.
var (
	ErrNotFound  = errors.New("journal entry not found")
	ErrDuplicate = errors.New("journal entry already exists")
	ErrInvalidID = errors.New("invalid journal entry id")
)

// MapHTTPStatus maps journal errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidID) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
