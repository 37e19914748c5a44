package firebase

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo facturas en la colección invoices, filtradas por entrepriseId.
type InvoiceRepo struct {
	client *firestore.Client
}

// NewInvoiceRepository construye el adaptador.
func NewInvoiceRepository(client *firestore.Client) *InvoiceRepo {
	return &InvoiceRepo{client: client}
}

// ListByCompany devuelve todas las facturas de la empresa. Los documentos mal formados
// se decodifican con valores por defecto.
func (r *InvoiceRepo) ListByCompany(ctx context.Context, companyID string) ([]entity.Invoice, error) {
	iter := r.client.Collection(collectionInvoices).
		Where(fieldInvEntrepriseID, "==", companyID).
		Documents(ctx)
	defer iter.Stop()

	out := make([]entity.Invoice, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list invoices: %w", err)
		}
		out = append(out, decodeInvoice(snap.Ref.ID, snap.Data()))
	}
	return out, nil
}

// Create escribe la factura; genera el id si viene vacío.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if _, err := r.client.Collection(collectionInvoices).Doc(inv.ID).Set(ctx, encodeInvoice(inv)); err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}
