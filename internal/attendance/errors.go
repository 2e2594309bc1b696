package attendance

import (
	"errors"
	"fmt"

	"timeflow-backend/internal/face"
)

var (
	ErrAlreadyCheckedIn  = errors.New("already checked in today")
	ErrAlreadyCheckedOut = errors.New("already checked out today")
	ErrNoCheckInFound    = errors.New("no check-in record found for today")
)

// ===== Error model (employees/reports と同型) =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeUnavailable     Code = "UNAVAILABLE"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

// toAPIError classifies engine errors; anything unknown is a dependency
// failure and safe to retry.
func toAPIError(err error) *APIError {
	var api *APIError
	switch {
	case errors.As(err, &api):
		return api
	case errors.Is(err, ErrAlreadyCheckedIn):
		return &APIError{Code: CodeConflict, Reason: "ALREADY_CHECKED_IN", Message: err.Error()}
	case errors.Is(err, ErrAlreadyCheckedOut):
		return &APIError{Code: CodeConflict, Reason: "ALREADY_CHECKED_OUT", Message: err.Error()}
	case errors.Is(err, ErrNoCheckInFound):
		return &APIError{Code: CodeNotFound, Reason: "NO_CHECK_IN_FOUND", Message: err.Error()}
	case errors.Is(err, ErrRecordNotFound):
		return &APIError{Code: CodeNotFound, Reason: "NO_RECORD", Message: err.Error()}
	case errors.Is(err, ErrUnknownEmployee):
		return &APIError{Code: CodeNotFound, Reason: "UNKNOWN_EMPLOYEE", Message: err.Error()}
	case errors.Is(err, face.ErrImageTooLarge):
		return &APIError{Code: CodeInvalidArgument, Reason: "IMAGE_TOO_LARGE", Message: err.Error()}
	case errors.Is(err, face.ErrInvalidImage):
		return &APIError{Code: CodeInvalidArgument, Reason: "INVALID_IMAGE", Message: err.Error()}
	default:
		return &APIError{Code: CodeUnavailable, Message: "temporarily unavailable, retry"}
	}
}

func toHTTPStatus(err error) int {
	switch toAPIError(err).Code {
	case CodeInvalidArgument:
		return 400
	case CodeNotFound:
		return 404
	case CodeConflict:
		return 409
	case CodeUnavailable:
		return 503
	default:
		return 500
	}
}
