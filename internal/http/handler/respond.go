package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kudihq/kudi/internal/service"
)

// writeError maps domain errors onto HTTP statuses with their stable codes.
// Anything unrecognized is a 500 with no detail leaked.
func writeError(c *gin.Context, err error) {
	var domainErr *service.Error
	if errors.As(err, &domainErr) {
		c.JSON(statusForCode(domainErr.Code), gin.H{
			"error": gin.H{
				"code":    domainErr.Code,
				"message": domainErr.Message,
			},
		})
		return
	}

	slog.ErrorContext(c.Request.Context(), "request failed",
		"error", err,
		"method", c.Request.Method,
		"path", c.FullPath(),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    "INTERNAL",
			"message": "internal server error",
		},
	})
}

func statusForCode(code string) int {
	switch code {
	case "FORBIDDEN":
		return http.StatusForbidden
	case "NOT_FOUND":
		return http.StatusNotFound
	case "ALREADY_VOIDED", "VOIDED", "ALREADY_MEMBER", "LIMIT_REACHED":
		return http.StatusConflict
	case "TRANSFER_FAILED":
		return http.StatusUnprocessableEntity
	case "VALIDATION_ERROR":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeValidationError(c *gin.Context, msg string) {
	writeError(c, service.Validation(msg))
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		writeValidationError(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
