package debughttp

import (
	"errors"
	"net/http"

	"github.com/on-the-ground/dispatch_ive_go/registry"
)

// AppError is an error reported to the client with its HTTP status.
type AppError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeNotFound      = "NOT_FOUND"
	CodeInternalError = "INTERNAL_ERROR"
)

func (e *AppError) Error() string { return e.Code + ": " + e.Message }

func BadRequest(msg string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Code: CodeBadRequest, Message: msg}
}

func NotFound(msg string) *AppError {
	return &AppError{Status: http.StatusNotFound, Code: CodeNotFound, Message: msg}
}

func Internal(msg string) *AppError {
	return &AppError{Status: http.StatusInternalServerError, Code: CodeInternalError, Message: msg}
}

// FromStdError maps err to the AppError sent to the client.
func FromStdError(err error) *AppError {
	if err == nil {
		return nil
	}
	var app *AppError
	if errors.As(err, &app) {
		return app
	}
	if errors.Is(err, registry.ErrSiteNotFound) {
		return NotFound(err.Error())
	}
	return Internal("unexpected error")
}

type errorEnvelope struct {
	Err *AppError `json:"error"`
}

// HandlerFunc is an http handler whose error is written as an errorEnvelope.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

func (h HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h(w, r); err != nil {
		app := FromStdError(err)
		writeJSON(w, app.Status, errorEnvelope{Err: app})
	}
}
