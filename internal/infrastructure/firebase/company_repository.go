package firebase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo empresas en la colección entreprises; el id del documento es el uid del propietario.
type CompanyRepo struct {
	client *firestore.Client
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(client *firestore.Client) *CompanyRepo {
	return &CompanyRepo{client: client}
}

// Get obtiene una empresa por id. Devuelve (nil, nil) si no existe.
func (r *CompanyRepo) Get(ctx context.Context, id string) (*entity.Company, error) {
	snap, err := r.client.Collection(collectionCompanies).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return decodeCompany(snap.Ref.ID, snap.Data()), nil
}

// Create escribe el documento completo, sobrescribiendo el existente.
func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	_, err := r.client.Collection(collectionCompanies).Doc(company.ID).Set(ctx, encodeFields(company.Fields()))
	if err != nil {
		return fmt.Errorf("set company: %w", err)
	}
	return nil
}

// Merge fusiona los campos sobre el documento (set con MergeAll).
func (r *CompanyRepo) Merge(ctx context.Context, id string, fields entity.CompanyFields) error {
	if len(fields) == 0 {
		return nil
	}
	_, err := r.client.Collection(collectionCompanies).Doc(id).Set(ctx, encodeFields(fields), firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("merge company: %w", err)
	}
	return nil
}

// ListExpiredPro devuelve los ids de empresas pro con expiryDate igual o anterior a now.
// Las fechas se guardan como ISO de ancho fijo, así que la comparación de cadenas es válida.
func (r *CompanyRepo) ListExpiredPro(ctx context.Context, now time.Time) ([]string, error) {
	iter := r.client.Collection(collectionCompanies).
		Where(entity.FieldSubscription, "==", entity.SubscriptionPro).
		Where(entity.FieldExpiryDate, "<=", formatISO(now)).
		Documents(ctx)
	defer iter.Stop()

	var ids []string
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list expired companies: %w", err)
		}
		ids = append(ids, snap.Ref.ID)
	}
	return ids, nil
}
