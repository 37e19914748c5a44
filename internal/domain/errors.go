package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
)

// Errores de sesión y suscripción. ErrAccountBlocked nunca debe confundirse con
// ErrInvalidCredentials: el cliente muestra mensajes distintos para cada uno.
var (
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrAccountBlocked     = errors.New("cuenta bloqueada: suscripción de la empresa expirada")
	ErrProviderError      = errors.New("error del proveedor de identidad")
	ErrPopupBlocked       = fmt.Errorf("%w: ventana emergente bloqueada", ErrProviderError)
	ErrPersistence        = errors.New("error de persistencia")
)

// Persistence envuelve un fallo del almacén para que errors.Is(err, ErrPersistence) funcione.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

// Provider envuelve un fallo del proveedor de identidad.
func Provider(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrProviderError, err)
}
