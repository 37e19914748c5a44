package repository

import (
	"context"
	"time"

	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure (Firestore o PostgreSQL).
type CompanyRepository interface {
	// Get devuelve (nil, nil) si la empresa no existe.
	Get(ctx context.Context, id string) (*entity.Company, error)
	// Create escribe el perfil completo, sobrescribiendo si ya existe.
	Create(ctx context.Context, company *entity.Company) error
	// Merge fusiona los campos dados sobre el registro existente (merge superficial).
	Merge(ctx context.Context, id string, fields entity.CompanyFields) error
	// ListExpiredPro devuelve los ids de empresas pro cuya fecha de expiración es anterior a now.
	ListExpiredPro(ctx context.Context, now time.Time) ([]string, error)
}
