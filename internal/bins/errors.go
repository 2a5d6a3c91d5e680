package bins

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/binsort/pkg/storage"
)

// ErrUnknownBin indicates a bin identifier outside the fixed set.
var ErrUnknownBin = errors.New("unknown bin")

// MapHTTPStatus maps bin and storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnknownBin) {
		return http.StatusNotFound
	}
	return storage.MapHTTPStatus(err)
}
