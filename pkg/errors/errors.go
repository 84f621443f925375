package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeTimeout      = "TIMEOUT"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInvalidInput = "INVALID_INPUT"

	CodeInvalidStayInterval = "INVALID_STAY_INTERVAL"
	CodeInvalidGuestParty   = "INVALID_GUEST_PARTY"
	CodeRoomUnavailable     = "ROOM_UNAVAILABLE"
	CodeIllegalTransition   = "ILLEGAL_TRANSITION"
	CodePaymentRejected     = "PAYMENT_REJECTED"
)

// statusByCode is the HTTP status each code is reported with. Codes missing
// here fall back to 500.
var statusByCode = map[string]int{
	CodeNotFound:            http.StatusNotFound,
	CodeValidation:          http.StatusUnprocessableEntity,
	CodeUnauthorized:        http.StatusUnauthorized,
	CodeForbidden:           http.StatusForbidden,
	CodeConflict:            http.StatusConflict,
	CodeInternal:            http.StatusInternalServerError,
	CodeBadRequest:          http.StatusBadRequest,
	CodeTimeout:             http.StatusGatewayTimeout,
	CodeUnavailable:         http.StatusServiceUnavailable,
	CodeInvalidInput:        http.StatusBadRequest,
	CodeInvalidStayInterval: http.StatusUnprocessableEntity,
	CodeInvalidGuestParty:   http.StatusUnprocessableEntity,
	CodeRoomUnavailable:     http.StatusConflict,
	CodeIllegalTransition:   http.StatusConflict,
	CodePaymentRejected:     http.StatusPaymentRequired,
}

// AppError is an error that knows how it is reported to API callers.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

// Response is the body sent to callers. Internal messages are masked.
func (e *AppError) Response() ErrorResponse {
	message := e.Message
	if e.Code == CodeInternal {
		message = "Internal server error"
	}
	return ErrorResponse{Code: e.Code, Message: message, Details: e.Details}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// WithCause attaches the underlying error so errors.Is can see domain sentinels.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func newError(code, message string) *AppError {
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	return New(code, message, status)
}

func NotFound(resource string) *AppError {
	return newError(CodeNotFound, resource+" not found")
}

func NotFoundWithID(resource, id string) *AppError {
	return NotFound(resource).WithDetails(map[string]any{
		"resource": resource,
		"id":       id,
	})
}

func Validation(message string, details map[string]any) *AppError {
	return newError(CodeValidation, message).WithDetails(details)
}

func InvalidInput(message string) *AppError {
	return newError(CodeInvalidInput, message)
}

func TooLarge(message string) *AppError {
	return New(CodeBadRequest, message, http.StatusRequestEntityTooLarge)
}

func Unauthorized(message string) *AppError {
	return newError(CodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return newError(CodeForbidden, message)
}

func Conflict(message string) *AppError {
	return newError(CodeConflict, message)
}

func Internal(message string, err error) *AppError {
	return newError(CodeInternal, message).WithCause(err)
}

func Timeout(message string) *AppError {
	return newError(CodeTimeout, message)
}

func Unavailable(service string) *AppError {
	return newError(CodeUnavailable, service+" is temporarily unavailable")
}

// InvalidStayInterval reports check-in/check-out dates that do not form a stay.
func InvalidStayInterval(message string) *AppError {
	return newError(CodeInvalidStayInterval, message)
}

func InvalidGuestParty(message string) *AppError {
	return newError(CodeInvalidGuestParty, message)
}

func RoomUnavailable(message string) *AppError {
	return newError(CodeRoomUnavailable, message)
}

func IllegalTransition(message string) *AppError {
	return newError(CodeIllegalTransition, message)
}

func PaymentRejected(message string) *AppError {
	return newError(CodePaymentRejected, message)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError unwraps err to an AppError, treating anything else as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
