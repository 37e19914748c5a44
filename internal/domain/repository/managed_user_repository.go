package repository

import (
	"context"
	"time"

	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
)

// ManagedUserRepository define el puerto de persistencia para usuarios gestionados.
type ManagedUserRepository interface {
	// ListActiveByEmail devuelve todos los usuarios activos con ese email, sin distinguir
	// mayúsculas. Un mismo email puede existir en varias empresas; slice vacío si no hay ninguno.
	ListActiveByEmail(ctx context.Context, email string) ([]entity.ManagedUser, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Create(ctx context.Context, user *entity.ManagedUser) error
}
