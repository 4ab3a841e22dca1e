package middleware

import (
	"net/http"

	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/sentry"
	"github.com/flexprice/donorsync/internal/types"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last handler error. The gateway only tells success
// from failure, so every error is a 500 whose body is the error text.
func ErrorHandler(logger *logger.Logger, sentrySvc *sentry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		requestID := types.GetRequestID(c.Request.Context())

		logger.Errorw("webhook failed",
			"path", c.FullPath(),
			"request_id", requestID,
			"error", err,
		)
		sentrySvc.CaptureWebhookFailure(c.Request.Context(), c.FullPath(), requestID, err)

		c.String(http.StatusInternalServerError, err.Error())
	}
}
