package apierr

import (
	"errors"
	"fmt"
	"net/http"

	mysql "github.com/go-sql-driver/mysql"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeRateLimited     Code = "RATE_LIMITED"
	CodeInternal        Code = "INTERNAL"
)

// MySQL server error numbers we translate.
const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

type APIError struct {
	Code    Code
	Message string
	// Err is the underlying cause. Never rendered to clients.
	Err error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

func ErrInvalid(msg string) *APIError         { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrUnauthenticated(msg string) *APIError { return &APIError{Code: CodeUnauthenticated, Message: msg} }
func ErrNotFound(msg string) *APIError        { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError        { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError        { return &APIError{Code: CodeInternal, Message: msg} }
func ErrRateLimited(msg string) *APIError     { return &APIError{Code: CodeRateLimited, Message: msg} }

// Internal wraps a storage or runtime failure.
func Internal(msg string, err error) *APIError {
	return &APIError{Code: CodeInternal, Message: msg, Err: err}
}

// FromStorage classifies an error returned by the database layer.
// Errors that are already *APIError pass through untouched.
func FromStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var api *APIError
	if errors.As(err, &api) {
		return err
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry:
			return &APIError{Code: CodeConflict, Message: op + ": already exists", Err: err}
		case mysqlRowIsReferenced:
			return &APIError{Code: CodeConflict, Message: op + ": still referenced by other records", Err: err}
		case mysqlNoReferencedRow:
			return &APIError{Code: CodeInvalidArgument, Message: op + ": referenced record does not exist", Err: err}
		}
	}
	return Internal(op+" failed", err)
}

// CodeOf returns the error code, CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var api *APIError
	if errors.As(err, &api) {
		return api.Code
	}
	return CodeInternal
}

func ToHTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ---------- response envelope ----------

type ErrorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func Body(code Code, msg string) ErrorDTO {
	var e ErrorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

// BodyFromErr builds the client payload. Internal details are only exposed when
// expose is set (dev mode).
func BodyFromErr(err error, expose bool) ErrorDTO {
	var api *APIError
	if errors.As(err, &api) {
		if api.Code == CodeInternal && !expose {
			return Body(CodeInternal, "internal error")
		}
		if expose && api.Err != nil {
			return Body(api.Code, api.Message+": "+api.Err.Error())
		}
		return Body(api.Code, api.Message)
	}
	if expose {
		return Body(CodeInternal, err.Error())
	}
	return Body(CodeInternal, "internal error")
}
