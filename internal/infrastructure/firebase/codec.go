package firebase

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
)

// Colecciones del documento.
const (
	collectionCompanies    = "entreprises"
	collectionManagedUsers = "managedUsers"
	collectionInvoices     = "invoices"
)

// isoLayout formato ISO-8601 en UTC con milisegundos. Al ser de ancho fijo, la comparación
// lexicográfica entre fechas coincide con la cronológica.
const isoLayout = "2006-01-02T15:04:05.000Z"

func formatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// ── Empresa ───────────────────────────────────────────────────────────────────

// encodeFields convierte un patch de empresa al mapa del documento: fechas como ISO.
func encodeFields(fields entity.CompanyFields) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if t, ok := v.(time.Time); ok {
			out[k] = formatISO(t)
			continue
		}
		out[k] = v
	}
	return out
}

func decodeCompany(id string, data map[string]any) *entity.Company {
	return &entity.Company{
		ID:                     id,
		Name:                   asString(data[entity.FieldName]),
		ICE:                    asString(data[entity.FieldICE]),
		IF:                     asString(data[entity.FieldIF]),
		RC:                     asString(data[entity.FieldRC]),
		CNSS:                   asString(data[entity.FieldCNSS]),
		Patente:                asString(data[entity.FieldPatente]),
		Address:                asString(data[entity.FieldAddress]),
		Phone:                  asString(data[entity.FieldPhone]),
		Email:                  asString(data[entity.FieldEmail]),
		Website:                asString(data[entity.FieldWebsite]),
		Logo:                   asString(data[entity.FieldLogo]),
		Signature:              asString(data[entity.FieldSignature]),
		InvoiceNumberingFormat: asString(data[entity.FieldInvoiceNumberingFormat]),
		InvoicePrefix:          asString(data[entity.FieldInvoicePrefix]),
		InvoiceCounter:         asInt(data[entity.FieldInvoiceCounter]),
		LastInvoiceYear:        asInt(data[entity.FieldLastInvoiceYear]),
		DefaultTemplate:        asString(data[entity.FieldDefaultTemplate]),
		OwnerEmail:             asString(data[entity.FieldOwnerEmail]),
		OwnerName:              asString(data[entity.FieldOwnerName]),
		EmailVerified:          asBool(data[entity.FieldEmailVerified]),
		Subscription:           asString(data[entity.FieldSubscription]),
		SubscriptionDate:       asTime(data[entity.FieldSubscriptionDate]),
		ExpiryDate:             asTime(data[entity.FieldExpiryDate]),
		CreatedAt:              asTime(data[entity.FieldCreatedAt]),
		UpdatedAt:              asTime(data[entity.FieldUpdatedAt]),
	}
}

// ── Usuario gestionado ────────────────────────────────────────────────────────

const (
	fieldMUName         = "name"
	fieldMUEmail        = "email"
	fieldMUPasswordHash = "passwordHash"
	fieldMUStatus       = "status"
	fieldMUPermissions  = "permissions"
	fieldMUEntrepriseID = "entrepriseId"
	fieldMULastLogin    = "lastLogin"
	fieldMUCreatedAt    = "createdAt"
)

func encodeManagedUser(u *entity.ManagedUser) map[string]any {
	perms := make(map[string]any, len(u.Permissions))
	for k, v := range u.Permissions {
		perms[k] = v
	}
	doc := map[string]any{
		fieldMUName:         u.Name,
		fieldMUEmail:        u.Email,
		fieldMUPasswordHash: u.PasswordHash,
		fieldMUStatus:       u.Status,
		fieldMUPermissions:  perms,
		fieldMUEntrepriseID: u.EntrepriseID,
		fieldMUCreatedAt:    formatISO(u.CreatedAt),
	}
	if !u.LastLogin.IsZero() {
		doc[fieldMULastLogin] = formatISO(u.LastLogin)
	}
	return doc
}

func decodeManagedUser(id string, data map[string]any) *entity.ManagedUser {
	u := &entity.ManagedUser{
		ID:           id,
		Name:         asString(data[fieldMUName]),
		Email:        asString(data[fieldMUEmail]),
		PasswordHash: asString(data[fieldMUPasswordHash]),
		Status:       asString(data[fieldMUStatus]),
		EntrepriseID: asString(data[fieldMUEntrepriseID]),
		LastLogin:    asTime(data[fieldMULastLogin]),
		CreatedAt:    asTime(data[fieldMUCreatedAt]),
		Permissions:  entity.Permissions{},
	}
	if perms, ok := data[fieldMUPermissions].(map[string]any); ok {
		for k, v := range perms {
			u.Permissions[k] = asBool(v)
		}
	}
	return u
}

// ── Factura ───────────────────────────────────────────────────────────────────

const (
	fieldInvEntrepriseID = "entrepriseId"
	fieldInvNumber       = "number"
	fieldInvClientName   = "clientName"
	fieldInvTotal        = "total"
	fieldInvStatus       = "status"
	fieldInvDate         = "date"
	fieldInvDueDate      = "dueDate"
	fieldInvCreatedAt    = "createdAt"
)

func encodeInvoice(inv *entity.Invoice) map[string]any {
	doc := map[string]any{
		fieldInvEntrepriseID: inv.CompanyID,
		fieldInvNumber:       inv.Number,
		fieldInvClientName:   inv.ClientName,
		fieldInvTotal:        inv.Total.StringFixed(2),
		fieldInvStatus:       inv.Status,
		fieldInvDate:         formatISO(inv.IssuedAt),
		fieldInvCreatedAt:    formatISO(inv.CreatedAt),
	}
	if !inv.DueDate.IsZero() {
		doc[fieldInvDueDate] = formatISO(inv.DueDate)
	}
	return doc
}

// decodeInvoice tolera documentos incompletos: total como texto o número (inválido → 0),
// cliente ausente vacío y estado tal cual.
func decodeInvoice(id string, data map[string]any) entity.Invoice {
	return entity.Invoice{
		ID:         id,
		CompanyID:  asString(data[fieldInvEntrepriseID]),
		Number:     asString(data[fieldInvNumber]),
		ClientName: asString(data[fieldInvClientName]),
		Total:      asDecimal(data[fieldInvTotal]),
		Status:     asString(data[fieldInvStatus]),
		IssuedAt:   asTime(data[fieldInvDate]),
		DueDate:    asTime(data[fieldInvDueDate]),
		CreatedAt:  asTime(data[fieldInvCreatedAt]),
	}
}

// ── Conversión tolerante ──────────────────────────────────────────────────────

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(n))
		return i
	default:
		return 0
	}
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	default:
		return false
	}
}

func asDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(n)
	case int64:
		return decimal.NewFromInt(n)
	case int:
		return decimal.NewFromInt(int64(n))
	default:
		return decimal.Zero
	}
}

// asTime acepta cadenas ISO-8601 (con o sin milisegundos) y timestamps nativos.
func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		if t == "" {
			return time.Time{}
		}
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed.UTC()
		}
		if parsed, err := time.Parse("2006-01-02", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
