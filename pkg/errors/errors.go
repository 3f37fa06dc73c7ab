package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")

	ErrScheduleConflict       = New("SCHEDULE_CONFLICT", http.StatusConflict, "jadwal bentrok dengan jadwal lain")
	ErrScheduleNotFound       = New("SCHEDULE_NOT_FOUND", http.StatusNotFound, "jadwal tidak ditemukan")
	ErrTeacherSubjectNotFound = New("TEACHER_SUBJECT_NOT_FOUND", http.StatusNotFound, "relasi guru-mapel tidak ditemukan")
	ErrSemesterNotFound       = New("SEMESTER_NOT_FOUND", http.StatusNotFound, "semester tidak ditemukan")
	ErrSemesterNotActive      = New("SEMESTER_NOT_ACTIVE", http.StatusBadRequest, "semester yang dipilih sudah tidak aktif")
	ErrActiveSemesterNotFound = New("ACTIVE_SEMESTER_NOT_FOUND", http.StatusConflict, "tidak ada semester aktif yang dapat digunakan")
	ErrSemesterRequired       = New("SEMESTER_REQUIRED", http.StatusBadRequest, "semesterId atau kombinasi tahun ajaran dan semester wajib diisi")
	ErrInvalidDate            = New("INVALID_DATE", http.StatusBadRequest, "format tanggal tidak valid")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// WithDetails returns a copy of the error carrying structured details,
// e.g. the list of colliding schedule entries.
func WithDetails(err *Error, details interface{}) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Details = details
	return &clone
}
