package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polygate-dev/polygate/internal/client"
	"github.com/polygate-dev/polygate/internal/pool"
	"github.com/polygate-dev/polygate/internal/protocol"
)

// ErrorKind classifies a request failure independent of the client dialect.
type ErrorKind string

const (
	ErrBadRequest          ErrorKind = "BadRequest"
	ErrUnauthorized        ErrorKind = "Unauthorized"
	ErrForbidden           ErrorKind = "Forbidden"
	ErrNotFound            ErrorKind = "NotFound"
	ErrRateLimited         ErrorKind = "RateLimited"
	ErrUpstreamTimeout     ErrorKind = "UpstreamTimeout"
	ErrUpstreamServerError ErrorKind = "UpstreamServerError"
	ErrProtocolMismatch    ErrorKind = "ProtocolMismatch"
	ErrNoHealthyProvider   ErrorKind = "NoHealthyProvider"
	ErrInternal            ErrorKind = "Internal"
)

// gatewayError pairs a kind with the message rendered to the client.
type gatewayError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *gatewayError) Error() string { return e.Message }

func newGatewayError(kind ErrorKind, message string) *gatewayError {
	return &gatewayError{Kind: kind, Status: statusOf(kind), Message: message}
}

func statusOf(kind ErrorKind) int {
	switch kind {
	case ErrBadRequest, ErrProtocolMismatch:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrUpstreamTimeout:
		return http.StatusGatewayTimeout
	case ErrUpstreamServerError:
		return http.StatusBadGateway
	case ErrNoHealthyProvider:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// classify maps an arbitrary failure to a gatewayError. Upstream HTTP
// statuses pass through where they make sense to a client.
func classify(err error) *gatewayError {
	var gw *gatewayError
	if errors.As(err, &gw) {
		return gw
	}
	var upstream *client.Error
	if errors.As(err, &upstream) {
		kind := kindOfStatus(upstream.Status)
		return &gatewayError{Kind: kind, Status: upstream.Status, Message: upstream.Message}
	}
	if errors.Is(err, pool.ErrNoHealthyProvider) {
		return newGatewayError(ErrNoHealthyProvider, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newGatewayError(ErrUpstreamTimeout, "upstream request timed out")
	}
	return newGatewayError(ErrInternal, err.Error())
}

func kindOfStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return ErrUpstreamTimeout
	case status >= 500:
		return ErrUpstreamServerError
	case status >= 400:
		return ErrBadRequest
	default:
		return ErrInternal
	}
}

// retryable reports whether the orchestrator may re-select and retry.
func retryable(err error) bool {
	gw := classify(err)
	return gw.Kind == ErrUpstreamTimeout || gw.Kind == ErrUpstreamServerError
}

// errorTypeFor maps an error kind to the dialect's error type string.
func openaiErrorType(kind ErrorKind) string {
	switch kind {
	case ErrBadRequest, ErrProtocolMismatch:
		return "invalid_request_error"
	case ErrUnauthorized, ErrForbidden:
		return "authentication_error"
	case ErrNotFound:
		return "not_found_error"
	case ErrRateLimited:
		return "rate_limit_error"
	default:
		return "api_error"
	}
}

func anthropicErrorType(kind ErrorKind) string {
	switch kind {
	case ErrBadRequest, ErrProtocolMismatch:
		return "invalid_request_error"
	case ErrUnauthorized, ErrForbidden:
		return "authentication_error"
	case ErrNotFound:
		return "not_found_error"
	case ErrRateLimited:
		return "rate_limit_error"
	case ErrUpstreamTimeout, ErrUpstreamServerError, ErrNoHealthyProvider:
		return "overloaded_error"
	default:
		return "api_error"
	}
}

func geminiErrorStatus(kind ErrorKind) string {
	switch kind {
	case ErrBadRequest, ErrProtocolMismatch:
		return "INVALID_ARGUMENT"
	case ErrUnauthorized:
		return "UNAUTHENTICATED"
	case ErrForbidden:
		return "PERMISSION_DENIED"
	case ErrNotFound:
		return "NOT_FOUND"
	case ErrRateLimited:
		return "RESOURCE_EXHAUSTED"
	case ErrUpstreamTimeout:
		return "DEADLINE_EXCEEDED"
	case ErrNoHealthyProvider, ErrUpstreamServerError:
		return "UNAVAILABLE"
	default:
		return "INTERNAL"
	}
}

// renderError writes the failure in the dialect the client spoke.
func renderError(c *gin.Context, dialect protocol.Protocol, err error) {
	gw := classify(err)
	switch dialect {
	case protocol.ProtocolAnthropic:
		c.JSON(gw.Status, gin.H{
			"type": "error",
			"error": gin.H{
				"type":    anthropicErrorType(gw.Kind),
				"message": gw.Message,
			},
		})
	case protocol.ProtocolGemini:
		c.JSON(gw.Status, gin.H{
			"error": gin.H{
				"code":    gw.Status,
				"message": gw.Message,
				"status":  geminiErrorStatus(gw.Kind),
			},
		})
	case protocol.ProtocolOllama:
		c.JSON(gw.Status, gin.H{"error": gw.Message})
	default:
		c.JSON(gw.Status, gin.H{
			"error": gin.H{
				"message": gw.Message,
				"type":    openaiErrorType(gw.Kind),
				"code":    string(gw.Kind),
			},
		})
	}
}
