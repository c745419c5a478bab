package http

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/order-allocation/internal/application/dto"
	"github.com/jhoicas/order-allocation/pkg/config"
	"github.com/jhoicas/order-allocation/pkg/jwt"
)

// Locals keys del llamante autenticado.
const (
	LocalCaller = "caller"
	LocalScopes = "scopes"
	LocalAPIKey = "api_key_auth"
)

// APIKeyHeader header con la clave de servicio.
const APIKeyHeader = "Api-Key"

// AuthMiddleware acepta el header Api-Key o un Bearer Token JWT de servicio.
// La Api-Key concede todos los scopes.
func AuthMiddleware(cfg config.AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key := c.Get(APIKeyHeader); key != "" {
			if cfg.APIKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(cfg.APIKey)) != 1 {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_API_KEY", Message: "api key inválida"})
			}
			c.Locals(LocalCaller, "api-key")
			c.Locals(LocalAPIKey, true)
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_CREDENTIALS", Message: "Api-Key o Authorization requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" || cfg.JWTSecret == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		claims, err := jwt.Parse(cfg.JWTSecret, cfg.JWTIssuer, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalCaller, claims.Service)
		c.Locals(LocalScopes, claims.Scopes)
		return c.Next()
	}
}

// RequireScope exige scope a los tokens JWT. Debe usarse DESPUÉS de AuthMiddleware.
func RequireScope(scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, _ := c.Locals(LocalAPIKey).(bool); ok {
			return c.Next()
		}
		scopes, _ := c.Locals(LocalScopes).([]string)
		for _, s := range scopes {
			if s == scope {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "scope requerido: " + scope})
	}
}

// GetCaller devuelve el llamante autenticado (después del middleware de auth).
func GetCaller(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalCaller).(string)
	return s
}
