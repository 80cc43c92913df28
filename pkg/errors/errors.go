package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidInput covers malformed caller input: negative k, k1 < 0,
	// b or alpha outside [0,1], unknown model names.
	ErrInvalidInput = errors.New("invalid input")
	// ErrZeroProbability is the domain error for a zero interpolated
	// probability under log-domain scoring. It indicates a smoothing
	// configuration bug, so it fails loudly instead of producing -Inf.
	ErrZeroProbability  = errors.New("zero probability under log scoring")
	ErrDocumentNotFound = errors.New("document not found")
	ErrQueryNotFound    = errors.New("query not found")
	ErrCorpusEmpty      = errors.New("corpus is empty")
	ErrStoreUnavailable = errors.New("corpus store unavailable")
	ErrInternal         = errors.New("internal error")
	ErrTimeout          = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrDocumentNotFound), errors.Is(err, ErrQueryNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrZeroProbability):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
