package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// EchoZapLogger возвращает middleware для Echo, которое логирует запросы с помощью zap.
// /health и /metrics не логируются.
func EchoZapLogger(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if isProbePath(req.URL.Path) {
				return next(c)
			}

			start := time.Now()
			res := c.Response()

			requestFields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.String("remote_ip", c.RealIP()),
				zap.String("user_agent", req.UserAgent()),
			}
			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = res.Header().Get(echo.HeaderXRequestID)
			}
			if id != "" {
				requestFields = append(requestFields, zap.String("request_id", id))
			}

			err := next(c)

			if source, ok := c.Get(sourceServiceKey).(string); ok && source != "" {
				requestFields = append(requestFields, zap.String("source_service", source))
			}

			fields := append(requestFields,
				zap.Int("status", res.Status),
				zap.Duration("latency", time.Since(start)),
			)

			if err != nil {
				log.Error("Handler error", append(fields, zap.Error(err))...)
				return err
			}

			n := res.Status
			switch {
			case n >= http.StatusInternalServerError:
				log.Error("Server error", fields...)
			case n >= http.StatusBadRequest:
				log.Warn("Client error", fields...)
			default:
				log.Info("Success", fields...)
			}
			return nil
		}
	}
}

func isProbePath(path string) bool {
	return path == "/health" || path == "/metrics"
}
