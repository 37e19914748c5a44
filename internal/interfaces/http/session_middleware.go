package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Facture-2/Facture5-V2/internal/application/dto"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/pkg/jwt"
)

// LocalSession clave de c.Locals con la sesión del servidor.
const LocalSession = "session"

// sessionLoader lo implementa *auth.Service.
type sessionLoader interface {
	Load(ctx context.Context, sessionID string) (*entity.Session, error)
}

// SessionMiddleware valida el Bearer Token, carga la sesión del almacén (refrescando el estado
// de suscripción si toca) y la deja en c.Locals.
func SessionMiddleware(jwtSecret string, sessions sessionLoader, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		tok, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}

		sess, err := sessions.Load(c.UserContext(), tok.SessionID)
		if err != nil {
			log.Error().Err(err).Str("session_id", tok.SessionID).Msg("cargar sesión")
			return writeError(c, err)
		}
		if sess == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "SESSION_EXPIRED", Message: "la sesión ha expirado, inicie sesión de nuevo"})
		}
		c.Locals(LocalSession, sess)
		return c.Next()
	}
}

// RejectBlocked corta las sesiones bloqueadas por la suscripción. Va después de SessionMiddleware.
func RejectBlocked() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetSession(c).Blocked() {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "ACCOUNT_BLOCKED",
				Message: "la suscripción de la empresa ha expirado; contacte al administrador",
			})
		}
		return c.Next()
	}
}

// RequirePermission exige que la sesión tenga el permiso indicado.
// Propietario y operador pasan siempre; los usuarios gestionados según sus permisos.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := GetSession(c)
		if sess == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sesión requerida"})
		}
		if !sess.Can(permission) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "permiso '" + permission + "' requerido",
			})
		}
		return c.Next()
	}
}

// GetSession devuelve la sesión del contexto (después de SessionMiddleware).
func GetSession(c *fiber.Ctx) *entity.Session {
	s, _ := c.Locals(LocalSession).(*entity.Session)
	return s
}
