package interfaces

import (
	"context"

	"kingdom-server/internal/models"
)

// TokenVerifier проверяет межсервисные токены.
type TokenVerifier interface {
	// VerifyServiceToken возвращает models.ErrTokenExpired, models.ErrTokenMalformed
	// или ошибку, оборачивающую models.ErrTokenInvalid.
	VerifyServiceToken(ctx context.Context, tokenString string) (*models.ServiceClaims, error)
}
