package repository

import (
	"context"

	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
)

// InvoiceRepository define el puerto de lectura de facturas para los reportes.
type InvoiceRepository interface {
	ListByCompany(ctx context.Context, companyID string) ([]entity.Invoice, error)
	Create(ctx context.Context, invoice *entity.Invoice) error
}
