package middleware

import (
	"net/http"
	"time"

	"cineplex/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// RequestLogger logs every request with a request id, echoing the caller's id
// when one is sent. Server errors recorded with c.Error are logged as well.
func RequestLogger(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)

		c.Next()

		reqLog := l.WithRequestID(requestID)
		if id, ok := CustomerIDFromContext(c); ok {
			reqLog = reqLog.WithCustomerID(id)
		}

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			if last := c.Errors.Last(); last != nil {
				reqLog.LogHTTPError(c, last.Err, status)
			}
		}
		reqLog.LogHTTPRequest(c, time.Since(start))
	}
}
