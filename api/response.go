package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"infraspend/config"
	"infraspend/middleware"
	"infraspend/models"
	"infraspend/service"

	"github.com/gin-gonic/gin"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Response is the envelope of every JSON reply
type Response struct {
	Status  string            `json:"status" example:"success"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Success 200 with data
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Status: statusSuccess, Data: data})
}

// SuccessWithMessage 200 with a message and optional data
func SuccessWithMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Response{Status: statusSuccess, Message: message, Data: data})
}

// Created 201 with the new record
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Status: statusSuccess, Data: data})
}

// Error replies with an error envelope
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{Status: statusError, Message: message})
}

// BadRequest 400
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError 500
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// statusFor maps a service error kind to an HTTP status
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindAuth:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindInvalidTransition, service.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Fail writes err as an error envelope. Unexpected errors are logged and
// their text is only shown outside release mode.
func Fail(c *gin.Context, err error) {
	if e, ok := service.AsError(err); ok {
		c.JSON(statusFor(e.Kind), Response{Status: statusError, Message: e.Message, Errors: e.Fields})
		return
	}
	slog.ErrorContext(c.Request.Context(), "request failed",
		"component", "http", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	InternalError(c, config.SafeErrorMessage(err, "internal server error"))
}

// bindJSON binds the request body, replying 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		BadRequest(c, config.SafeErrorMessage(err, "malformed request body"))
		return false
	}
	return true
}

// pathID parses the :id route parameter, replying 400 when it is not a positive integer.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		BadRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func actor(c *gin.Context) *models.User {
	return middleware.CurrentActor(c)
}
