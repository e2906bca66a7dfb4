// Package httperr defines the JSON error envelope returned by every handler.
// Codes are stable machine-readable strings; messages are for humans.
package httperr

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	CodeBadRequest      = "bad_request"
	CodeUnauthenticated = "unauthenticated"
	CodeForbidden       = "forbidden"
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodeInternal        = "internal"
)

// Response is the wire shape of an error.
type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func JSON(c echo.Context, status int, code, message string) error {
	return c.JSON(status, Response{Code: code, Message: message})
}

func BadRequest(c echo.Context, message string) error {
	return JSON(c, http.StatusBadRequest, CodeBadRequest, message)
}

func Unauthenticated(c echo.Context, message string) error {
	return JSON(c, http.StatusUnauthorized, CodeUnauthenticated, message)
}

func Forbidden(c echo.Context, message string) error {
	return JSON(c, http.StatusForbidden, CodeForbidden, message)
}

func NotFound(c echo.Context, message string) error {
	return JSON(c, http.StatusNotFound, CodeNotFound, message)
}

func Conflict(c echo.Context, message string) error {
	return JSON(c, http.StatusConflict, CodeConflict, message)
}

func Internal(c echo.Context, message string) error {
	return JSON(c, http.StatusInternalServerError, CodeInternal, message)
}
