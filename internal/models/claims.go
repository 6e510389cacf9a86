package models

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin - роль сервиса, которому разрешено редактировать каталог и сбрасывать игроков.
const RoleAdmin = "admin"

// ServiceClaims - claims межсервисного токена. Subject содержит имя вызывающего сервиса.
type ServiceClaims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// HasRole сообщает, выдана ли токену роль.
func (c *ServiceClaims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// contextKey - тип ключей контекста запроса.
type contextKey string

// SourceServiceContextKey - ключ, под которым middleware кладет имя вызывающего сервиса.
const SourceServiceContextKey contextKey = "source_service"
