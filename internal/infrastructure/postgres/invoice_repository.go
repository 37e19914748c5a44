package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/internal/domain/repository"
)

// Asegura que InvoiceRepo implementa repository.InvoiceRepository.
var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación del puerto InvoiceRepository.
type InvoiceRepo struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository construye el adaptador de facturas.
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepo {
	return &InvoiceRepo{pool: pool}
}

// ListByCompany devuelve las facturas de la empresa ordenadas por fecha de emisión.
func (r *InvoiceRepo) ListByCompany(ctx context.Context, companyID string) ([]entity.Invoice, error) {
	query := `
		SELECT id, company_id, number, COALESCE(client_name, ''), total, status, issued_at, due_date, created_at
		FROM invoices
		WHERE company_id = $1
		ORDER BY issued_at, id`
	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var list []entity.Invoice
	for rows.Next() {
		var (
			inv     entity.Invoice
			dueDate *time.Time
		)
		if err := rows.Scan(&inv.ID, &inv.CompanyID, &inv.Number, &inv.ClientName, &inv.Total,
			&inv.Status, &inv.IssuedAt, &dueDate, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		inv.DueDate = derefTime(dueDate)
		list = append(list, inv)
	}
	return list, rows.Err()
}

// Create inserta la factura. Genera el id si viene vacío.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	var clientName *string
	if inv.ClientName != "" {
		clientName = &inv.ClientName
	}
	query := `
		INSERT INTO invoices (id, company_id, number, client_name, total, status, issued_at, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, query,
		inv.ID, inv.CompanyID, inv.Number, clientName, inv.Total, inv.Status,
		inv.IssuedAt, nullTime(inv.DueDate), inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}
