package ingest

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/binsort/internal/bins"
	"github.com/JaimeStill/binsort/internal/detection"
)

// Domain errors for ingestion.
var (
	ErrNoFile               = errors.New("no file selected")
	ErrInvalidType          = errors.New("invalid file type")
	ErrTooLarge             = errors.New("file too large")
	ErrNoImage              = errors.New("no image data provided")
	ErrClassificationFailed = errors.New("could not classify waste type")
	ErrWrongBin             = errors.New("item belongs to a different bin")
	ErrInternal             = errors.New("internal error processing file")
)

// MapHTTPStatus maps ingestion errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, bins.ErrUnknownBin):
		return http.StatusNotFound
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrNoFile),
		errors.Is(err, ErrInvalidType),
		errors.Is(err, ErrNoImage),
		errors.Is(err, ErrClassificationFailed),
		errors.Is(err, detection.ErrDecodeFailure):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func statusOf(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrWrongBin):
		return StatusWrongBin
	case errors.Is(err, ErrNoFile):
		return StatusNoFile
	case errors.Is(err, ErrInvalidType):
		return StatusInvalidType
	case errors.Is(err, ErrTooLarge):
		return StatusTooLarge
	case errors.Is(err, ErrClassificationFailed):
		return StatusClassificationFailed
	}
	return StatusError
}

func uploadMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoFile):
		return "No file selected"
	case errors.Is(err, ErrInvalidType):
		return "Invalid file type"
	case errors.Is(err, ErrTooLarge):
		return "File too large"
	case errors.Is(err, ErrClassificationFailed):
		return "Could not classify waste type"
	}
	return err.Error()
}

func frameMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoImage):
		return "No image data provided"
	case errors.Is(err, detection.ErrDecodeFailure):
		return "Invalid image data"
	case errors.Is(err, ErrClassificationFailed):
		return "Classification failed"
	}
	return err.Error()
}
