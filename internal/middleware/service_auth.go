package middleware

import (
	"errors"
	"net/http"

	"kingdom-server/internal/interfaces"
	"kingdom-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ServiceTokenHeader - заголовок с межсервисным JWT.
const ServiceTokenHeader = "X-Internal-Service-Token"

var sourceServiceKey = string(models.SourceServiceContextKey)

// verifyRequest проверяет токен и возвращает claims или HTTP-статус с сообщением.
func verifyRequest(r *http.Request, verifier interfaces.TokenVerifier, requiredRole string, log *zap.Logger) (*models.ServiceClaims, int, string) {
	log = log.With(zap.String("path", r.URL.Path))

	tokenString := r.Header.Get(ServiceTokenHeader)
	if tokenString == "" {
		log.Warn("Service token header missing")
		return nil, http.StatusUnauthorized, "Unauthorized: Missing inter-service token"
	}

	claims, err := verifier.VerifyServiceToken(r.Context(), tokenString)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrTokenExpired):
			log.Warn("Service token expired")
			return nil, http.StatusUnauthorized, "Unauthorized: Inter-service token expired"
		case errors.Is(err, models.ErrTokenMalformed), errors.Is(err, models.ErrTokenInvalid):
			log.Warn("Service token verification failed", zap.Error(err))
			return nil, http.StatusUnauthorized, "Unauthorized: Invalid inter-service token"
		default:
			log.Error("Unexpected service token verification error", zap.Error(err))
			return nil, http.StatusInternalServerError, "Internal server error during inter-service token verification"
		}
	}

	if requiredRole != "" && !claims.HasRole(requiredRole) {
		log.Warn("Service lacks required role", zap.String("sourceService", claims.Subject), zap.String("role", requiredRole))
		return nil, http.StatusForbidden, "Forbidden: insufficient role"
	}

	log.Debug("Inter-service request authorized", zap.String("sourceService", claims.Subject))
	return claims, 0, ""
}

// InterServiceAuthMiddleware создает Echo middleware для проверки межсервисного JWT.
func InterServiceAuthMiddleware(verifier interfaces.TokenVerifier, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, status, msg := verifyRequest(c.Request(), verifier, "", logger)
			if claims == nil {
				return echo.NewHTTPError(status, msg)
			}
			c.Set(sourceServiceKey, claims.Subject)
			return next(c)
		}
	}
}

// GinInterServiceAuth создает Gin middleware для проверки межсервисного JWT с обязательной ролью.
func GinInterServiceAuth(verifier interfaces.TokenVerifier, requiredRole string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, status, msg := verifyRequest(c.Request, verifier, requiredRole, logger)
		if claims == nil {
			c.AbortWithStatusJSON(status, gin.H{"message": msg})
			return
		}
		c.Set(sourceServiceKey, claims.Subject)
		c.Next()
	}
}
