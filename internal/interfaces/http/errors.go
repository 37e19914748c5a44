package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Facture-2/Facture5-V2/internal/application/dto"
	"github.com/Facture-2/Facture5-V2/internal/domain"
)

// writeError traduce un error de dominio a status + dto.ErrorResponse.
// ErrAccountBlocked se evalúa antes que ErrInvalidCredentials: el cliente los distingue.
func writeError(c *fiber.Ctx, err error) error {
	status, code, msg := fiber.StatusInternalServerError, "INTERNAL", "error interno"
	switch {
	case errors.Is(err, domain.ErrAccountBlocked):
		status, code, msg = fiber.StatusForbidden, "ACCOUNT_BLOCKED", "la suscripción de la empresa ha expirado; contacte al administrador"
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, code, msg = fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "email o contraseña incorrectos"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code, msg = fiber.StatusUnauthorized, "UNAUTHORIZED", "sesión requerida"
	case errors.Is(err, domain.ErrForbidden):
		status, code, msg = fiber.StatusForbidden, "FORBIDDEN", "acceso denegado"
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		status, code, msg = fiber.StatusConflict, "EMAIL_EXISTS", "el email ya está registrado"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code, msg = fiber.StatusBadRequest, "VALIDATION", err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, code, msg = fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"
	case errors.Is(err, domain.ErrProviderError):
		status, code, msg = fiber.StatusBadGateway, "PROVIDER_ERROR", "el proveedor de identidad no respondió correctamente"
	case errors.Is(err, domain.ErrPersistence):
		status, code, msg = fiber.StatusServiceUnavailable, "PERSISTENCE_ERROR", "almacén no disponible, intente más tarde"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// ErrorHandler manejador de errores de Fiber para errores no tratados por los handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
	}
	return writeError(c, err)
}
