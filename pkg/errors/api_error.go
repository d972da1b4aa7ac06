package errors

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ApiError is the error type every layer returns when the failure has a
// client-visible status. Err keeps the underlying cause for logging only.
type ApiError struct {
	StatusCode int
	Message    string
	Errors     []string
	Err        error
}

func (e *ApiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s (%v)", e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

func (e *ApiError) Unwrap() error {
	return e.Err
}

func New(status int, message string, err error) *ApiError {
	return &ApiError{StatusCode: status, Message: message, Errors: []string{}, Err: err}
}

func BadRequest(message string) *ApiError {
	return New(fiber.StatusBadRequest, message, nil)
}

func Unauthorized(message string) *ApiError {
	return New(fiber.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *ApiError {
	return New(fiber.StatusForbidden, message, nil)
}

func NotFound(message string) *ApiError {
	return New(fiber.StatusNotFound, message, nil)
}

func Internal(message string, err error) *ApiError {
	return New(fiber.StatusInternalServerError, message, err)
}

// Upstream wraps a media store failure. The store is fatal to the request but
// surfaces as a client error, matching the public contract.
func Upstream(message string, err error) *ApiError {
	return New(fiber.StatusBadRequest, message, err)
}

var (
	ErrVideoRequired     = func() *ApiError { return BadRequest("Video is required") }
	ErrThumbnailRequired = func() *ApiError { return BadRequest("Thumbnail is required") }
	ErrVideoNotFound     = func() *ApiError { return NotFound("Video not found") }
	ErrInvalidID         = func() *ApiError { return BadRequest("Invalid ID format") }
	ErrNotOwner          = func() *ApiError { return Forbidden("You are not allowed to access this video") }
)
