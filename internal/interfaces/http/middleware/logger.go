// internal/interfaces/http/middleware/logger.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger returns a gin.HandlerFunc that logs one entry per storefront request,
// tagged with the browser session and shopper when the request carries them
func Logger(logger logrus.FieldLogger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		fields := logrus.Fields{
			"request_id": param.Keys[RequestIDKey],
			"method":     param.Method,
			"path":       param.Path,
			"status":     param.StatusCode,
			"latency":    param.Latency,
			"client_ip":  param.ClientIP,
			"bytes":      param.BodySize,
		}
		if sid, ok := param.Keys[sessionIDKey].(string); ok {
			fields[sessionIDKey] = sid
		}
		username, _ := param.Keys[usernameKey].(string)
		if username != "" {
			fields[usernameKey] = username
		}
		entry := logger.WithFields(fields)

		if param.ErrorMessage != "" {
			entry = entry.WithField("error", param.ErrorMessage)
		}

		switch {
		case param.StatusCode >= http.StatusInternalServerError:
			entry.Error("Storefront request failed")
		case param.StatusCode == http.StatusTooManyRequests:
			entry.Warn("Storefront request throttled")
		case param.StatusCode >= http.StatusBadRequest:
			entry.Warn("Storefront request rejected")
		case param.StatusCode == http.StatusFound && username == "":
			entry.Info("Anonymous shopper redirected")
		default:
			entry.Info("Storefront request served")
		}

		return ""
	})
}
