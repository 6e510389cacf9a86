package authutils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kingdom-server/internal/interfaces"
	"kingdom-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Compile-time check to ensure JWTVerifier implements TokenVerifier
var _ interfaces.TokenVerifier = (*JWTVerifier)(nil)

// JWTVerifier проверяет межсервисные JWT (HS256).
type JWTVerifier struct {
	secret []byte
	logger *zap.Logger
}

// NewJWTVerifier создает новый экземпляр JWTVerifier. Если логгер nil, используется Noop.
func NewJWTVerifier(secret string, logger *zap.Logger) (*JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JWTVerifier{
		secret: []byte(secret),
		logger: logger.Named("JWTVerifier"),
	}, nil
}

// VerifyServiceToken проверяет подпись, срок действия и наличие Subject.
func (v *JWTVerifier) VerifyServiceToken(_ context.Context, tokenString string) (*models.ServiceClaims, error) {
	log := v.logger.With(zap.String("tokenSnippet", tokenSnippet(tokenString)))
	claims := &models.ServiceClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.Warn("Unexpected signing method", zap.Any("alg", token.Header["alg"]))
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		log.Warn("Failed to parse or verify token", zap.Error(err))
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, models.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, models.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, models.ErrTokenInvalid
		}
		return nil, fmt.Errorf("%w: %v", models.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, models.ErrTokenInvalid
	}
	if claims.Subject == "" {
		log.Warn("Token missing subject (source service)")
		return nil, fmt.Errorf("%w: subject missing", models.ErrTokenInvalid)
	}

	log.Debug("Service token verified", zap.String("sourceService", claims.Subject), zap.Strings("roles", claims.Roles))
	return claims, nil
}

// IssueServiceToken подписывает межсервисный токен. Используется шлюзом чата и в тестах.
func IssueServiceToken(secret, service string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := models.ServiceClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   service,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// tokenSnippet возвращает безопасную для логгирования часть токена.
func tokenSnippet(tokenString string) string {
	limit := 15
	if len(tokenString) > limit {
		return tokenString[:limit] + "..."
	}
	return tokenString
}
