package handlers

import (
	"errors"
	"net/http"

	"github.com/eduraio/qanda-api/internal/authz"
	"github.com/eduraio/qanda-api/internal/domain/answer"
	"github.com/eduraio/qanda-api/internal/domain/question"
	"github.com/eduraio/qanda-api/internal/domain/user"
	"github.com/eduraio/qanda-api/internal/pagination"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, "forbidden", message, nil)
}

// respondServiceError maps the errors every service can raise to a
// status. The forbidden reason travels to the client verbatim; handlers
// handle their resource-specific errors before falling back here.
func respondServiceError(ctx *gin.Context, err error, notFoundMsg, fallbackMsg string) {
	var forbidden *authz.ForbiddenError
	var pageErr *pagination.ValidationError

	switch {
	case errors.As(err, &forbidden):
		RespondForbidden(ctx, forbidden.Reason)
	case errors.As(err, &pageErr):
		RespondBadRequest(ctx, "Invalid query parameters", gin.H{
			"fields": []FieldError{{Field: pageErr.Field, Message: pageErr.Reason}},
		})
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, question.ErrNotFound),
		errors.Is(err, answer.ErrNotFound):
		RespondNotFound(ctx, notFoundMsg)
	default:
		RespondInternal(ctx, fallbackMsg)
	}
}
