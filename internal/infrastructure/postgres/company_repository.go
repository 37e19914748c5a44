package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/internal/domain/repository"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema crea las tablas si no existen.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// companyColumns campo del documento → columna de companies.
var companyColumns = map[string]string{
	entity.FieldName:                   "name",
	entity.FieldICE:                    "ice",
	entity.FieldIF:                     "if_number",
	entity.FieldRC:                     "rc",
	entity.FieldCNSS:                   "cnss",
	entity.FieldPatente:                "patente",
	entity.FieldAddress:                "address",
	entity.FieldPhone:                  "phone",
	entity.FieldEmail:                  "email",
	entity.FieldWebsite:                "website",
	entity.FieldLogo:                   "logo",
	entity.FieldSignature:              "signature",
	entity.FieldInvoiceNumberingFormat: "invoice_numbering_format",
	entity.FieldInvoicePrefix:          "invoice_prefix",
	entity.FieldInvoiceCounter:         "invoice_counter",
	entity.FieldLastInvoiceYear:        "last_invoice_year",
	entity.FieldDefaultTemplate:        "default_template",
	entity.FieldOwnerEmail:             "owner_email",
	entity.FieldOwnerName:              "owner_name",
	entity.FieldEmailVerified:          "email_verified",
	entity.FieldSubscription:           "subscription",
	entity.FieldSubscriptionDate:       "subscription_date",
	entity.FieldExpiryDate:             "expiry_date",
	entity.FieldCreatedAt:              "created_at",
	entity.FieldUpdatedAt:              "updated_at",
}

const companySelect = `
	SELECT id, name, ice, if_number, rc, cnss, patente, address, phone, email, website,
	       logo, signature, invoice_numbering_format, invoice_prefix, invoice_counter,
	       last_invoice_year, default_template, owner_email, owner_name, email_verified,
	       subscription, subscription_date, expiry_date, created_at, updated_at
	FROM companies`

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepo {
	return &CompanyRepo{pool: pool}
}

// Get obtiene una empresa por id. Devuelve (nil, nil) si no existe.
func (r *CompanyRepo) Get(ctx context.Context, id string) (*entity.Company, error) {
	var (
		c                    entity.Company
		subDate, expiryDate *time.Time
	)
	err := r.pool.QueryRow(ctx, companySelect+` WHERE id = $1`, id).Scan(
		&c.ID, &c.Name, &c.ICE, &c.IF, &c.RC, &c.CNSS, &c.Patente, &c.Address, &c.Phone,
		&c.Email, &c.Website, &c.Logo, &c.Signature, &c.InvoiceNumberingFormat,
		&c.InvoicePrefix, &c.InvoiceCounter, &c.LastInvoiceYear, &c.DefaultTemplate,
		&c.OwnerEmail, &c.OwnerName, &c.EmailVerified, &c.Subscription,
		&subDate, &expiryDate, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	c.SubscriptionDate = derefTime(subDate)
	c.ExpiryDate = derefTime(expiryDate)
	return &c, nil
}

// Create inserta la empresa o sobrescribe todas sus columnas si ya existe.
func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	query := `
		INSERT INTO companies (id, name, ice, if_number, rc, cnss, patente, address, phone, email,
			website, logo, signature, invoice_numbering_format, invoice_prefix, invoice_counter,
			last_invoice_year, default_template, owner_email, owner_name, email_verified,
			subscription, subscription_date, expiry_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, ice = EXCLUDED.ice, if_number = EXCLUDED.if_number,
			rc = EXCLUDED.rc, cnss = EXCLUDED.cnss, patente = EXCLUDED.patente,
			address = EXCLUDED.address, phone = EXCLUDED.phone, email = EXCLUDED.email,
			website = EXCLUDED.website, logo = EXCLUDED.logo, signature = EXCLUDED.signature,
			invoice_numbering_format = EXCLUDED.invoice_numbering_format,
			invoice_prefix = EXCLUDED.invoice_prefix, invoice_counter = EXCLUDED.invoice_counter,
			last_invoice_year = EXCLUDED.last_invoice_year,
			default_template = EXCLUDED.default_template, owner_email = EXCLUDED.owner_email,
			owner_name = EXCLUDED.owner_name, email_verified = EXCLUDED.email_verified,
			subscription = EXCLUDED.subscription, subscription_date = EXCLUDED.subscription_date,
			expiry_date = EXCLUDED.expiry_date, created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at`
	_, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.ICE, c.IF, c.RC, c.CNSS, c.Patente, c.Address, c.Phone, c.Email,
		c.Website, c.Logo, c.Signature, c.InvoiceNumberingFormat, c.InvoicePrefix,
		c.InvoiceCounter, c.LastInvoiceYear, c.DefaultTemplate, c.OwnerEmail, c.OwnerName,
		c.EmailVerified, c.Subscription, nullTime(c.SubscriptionDate), nullTime(c.ExpiryDate),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert company: %w", err)
	}
	return nil
}

// Merge actualiza solo las columnas de los campos dados. Los campos desconocidos se ignoran.
func (r *CompanyRepo) Merge(ctx context.Context, id string, fields entity.CompanyFields) error {
	query, args := buildMergeQuery(id, fields)
	if query == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("merge company: %w", err)
	}
	return nil
}

// buildMergeQuery arma el UPDATE con las columnas en orden estable.
func buildMergeQuery(id string, fields entity.CompanyFields) (string, []any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if _, ok := companyColumns[k]; ok {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", nil
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)+1)
	for i, k := range keys {
		sets = append(sets, fmt.Sprintf("%s = $%d", companyColumns[k], i+1))
		v := fields[k]
		if t, ok := v.(time.Time); ok {
			v = nullTime(t)
		}
		args = append(args, v)
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE companies SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	return query, args
}

// ListExpiredPro devuelve los ids de empresas pro con expiry_date igual o anterior a now.
func (r *CompanyRepo) ListExpiredPro(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM companies WHERE subscription = $1 AND expiry_date <= $2 ORDER BY id`,
		entity.SubscriptionPro, now)
	if err != nil {
		return nil, fmt.Errorf("list expired companies: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan company id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
