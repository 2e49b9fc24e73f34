package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"glampstay/internal/app/apperr"
)

// respondOK writes the success envelope with payload under field.
func respondOK(c *gin.Context, status int, field string, payload any) {
	body := gin.H{"success": true}
	if field != "" {
		body[field] = payload
	}
	c.JSON(status, body)
}

// respondError classifies err and writes {success:false, error}. Store and internal
// failures get a generic message; the cause only goes to the log.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	classified := apperr.Classify(err)
	status := apperr.HTTPStatus(classified.Kind)
	if logger != nil {
		fields := []any{"status", status, "kind", classified.Kind, "error", err, "path", c.FullPath()}
		if p, ok := currentPrincipal(c); ok {
			fields = append(fields, "user_id", p.UserID)
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Debug("request rejected", fields...)
		}
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": apperr.PublicMessage(classified)})
}

func respondBadRequest(c *gin.Context, logger *slog.Logger, message string) {
	respondError(c, logger, apperr.Validation(message))
}
