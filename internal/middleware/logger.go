package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"nepalstay/internal/pkg/logger"
	"nepalstay/internal/pkg/response"
)

// ErrorLogger recovers panics and logs failed requests.
func ErrorLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				requestLog(c, log, start).
					WithField("panic", fmt.Sprintf("%v", recovered)).
					WithField("stack", string(debug.Stack())).
					Error("panic recovered")
				response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Server error")
				return
			}

			for _, err := range c.Errors {
				requestLog(c, log, start).WithError(err.Err).Error("request error")
			}
			if len(c.Errors) == 0 && c.Writer.Status() >= http.StatusInternalServerError {
				requestLog(c, log, start).Error("http error")
			}
		}()

		c.Next()
	}
}

// AccessLog writes one line per request.
func AccessLog(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		requestLog(c, log, start).Info("request")
	}
}

func requestLog(c *gin.Context, log logrus.FieldLogger, start time.Time) logrus.FieldLogger {
	return logger.FromContext(c.Request.Context(), log).WithFields(logrus.Fields{
		"status":    c.Writer.Status(),
		"method":    c.Request.Method,
		"path":      c.Request.URL.Path,
		"client_ip": c.ClientIP(),
		"role":      string(Actor(c).Role),
		"latency":   time.Since(start).String(),
	})
}
