// Package middleware provides HTTP middleware components for the application.
// It includes API client authentication, permission checks and security
// headers for the fiber web framework.
package middleware

import (
	"errors"
	"strings"

	"mpesagw/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const claimsKey = "claims"

// AuthMiddleware validates bearer tokens issued to merchant applications.
// With an empty secret every request passes and no claims are set.
type AuthMiddleware struct {
	secret []byte
	log    *zap.Logger
}

func NewAuthMiddleware(secret string, log *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret), log: log}
}

// Enabled reports whether tokens are checked.
func (m *AuthMiddleware) Enabled() bool {
	return len(m.secret) > 0
}

// Handler validates the HS256 token in the Authorization header and stores
// its claims in the request context.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	if !m.Enabled() {
		return c.Next()
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	claims := &models.ClientClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		msg := "invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "token expired"
		}
		m.log.Warn("rejected api token", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
	}

	if claims.ClientID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid claims"})
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// HasPermission returns a middleware that checks for a specific permission.
// It is a no-op when authentication is disabled.
func (m *AuthMiddleware) HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !m.Enabled() {
			return c.Next()
		}

		claims, ok := c.Locals(claimsKey).(*models.ClientClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		if !claims.HasPermission(permission) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
		}
		return c.Next()
	}
}

// Claims returns the authenticated client, if any.
func Claims(c *fiber.Ctx) (*models.ClientClaims, bool) {
	claims, ok := c.Locals(claimsKey).(*models.ClientClaims)
	return claims, ok
}
