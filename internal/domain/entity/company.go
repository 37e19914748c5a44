package entity

import "time"

// Planes de suscripción de una empresa.
const (
	SubscriptionFree = "free"
	SubscriptionPro  = "pro"
)

// DefaultTemplate plantilla de factura asignada a empresas nuevas.
const DefaultTemplate = "template1"

// DefaultCompanyName nombre usado cuando la identidad no aporta ni nombre ni email.
const DefaultCompanyName = "Mon Entreprise"

// Company perfil de la empresa de un propietario (tenant). Se indexa por el uid del propietario
// en el proveedor de identidad. Nunca se elimina.
type Company struct {
	ID string

	// Identificación legal
	Name    string
	ICE     string
	IF      string
	RC      string
	CNSS    string
	Patente string

	// Contacto y marca
	Address   string
	Phone     string
	Email     string
	Website   string
	Logo      string
	Signature string

	// Numeración de facturas
	InvoiceNumberingFormat string
	InvoicePrefix          string
	InvoiceCounter         int
	LastInvoiceYear        int
	DefaultTemplate        string

	// Propietario
	OwnerEmail    string
	OwnerName     string
	EmailVerified bool

	// Suscripción
	Subscription     string // free | pro
	SubscriptionDate time.Time
	ExpiryDate       time.Time // zero = sin fecha

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPro indica si la empresa está en el plan de pago.
func (c *Company) IsPro() bool {
	return c != nil && c.Subscription == SubscriptionPro
}

// Campos persistidos de Company (nombres del documento, compartidos por todos los almacenes).
const (
	FieldName                   = "name"
	FieldICE                    = "ice"
	FieldIF                     = "if"
	FieldRC                     = "rc"
	FieldCNSS                   = "cnss"
	FieldPatente                = "patente"
	FieldAddress                = "address"
	FieldPhone                  = "phone"
	FieldEmail                  = "email"
	FieldWebsite                = "website"
	FieldLogo                   = "logo"
	FieldSignature              = "signature"
	FieldInvoiceNumberingFormat = "invoiceNumberingFormat"
	FieldInvoicePrefix          = "invoicePrefix"
	FieldInvoiceCounter         = "invoiceCounter"
	FieldLastInvoiceYear        = "lastInvoiceYear"
	FieldDefaultTemplate        = "defaultTemplate"
	FieldOwnerEmail             = "ownerEmail"
	FieldOwnerName              = "ownerName"
	FieldEmailVerified          = "emailVerified"
	FieldSubscription           = "subscription"
	FieldSubscriptionDate       = "subscriptionDate"
	FieldExpiryDate             = "expiryDate"
	FieldCreatedAt              = "createdAt"
	FieldUpdatedAt              = "updatedAt"
)

// CompanyFields actualización parcial (merge) de una empresa: nombre de campo → valor.
// Las fechas van como time.Time; cada almacén las serializa a su formato.
type CompanyFields map[string]any

// Apply fusiona los campos sobre la proyección en memoria (merge superficial).
// Los campos desconocidos se ignoran.
func (f CompanyFields) Apply(c *Company) {
	for k, v := range f {
		switch k {
		case FieldName:
			setString(&c.Name, v)
		case FieldICE:
			setString(&c.ICE, v)
		case FieldIF:
			setString(&c.IF, v)
		case FieldRC:
			setString(&c.RC, v)
		case FieldCNSS:
			setString(&c.CNSS, v)
		case FieldPatente:
			setString(&c.Patente, v)
		case FieldAddress:
			setString(&c.Address, v)
		case FieldPhone:
			setString(&c.Phone, v)
		case FieldEmail:
			setString(&c.Email, v)
		case FieldWebsite:
			setString(&c.Website, v)
		case FieldLogo:
			setString(&c.Logo, v)
		case FieldSignature:
			setString(&c.Signature, v)
		case FieldInvoiceNumberingFormat:
			setString(&c.InvoiceNumberingFormat, v)
		case FieldInvoicePrefix:
			setString(&c.InvoicePrefix, v)
		case FieldInvoiceCounter:
			setInt(&c.InvoiceCounter, v)
		case FieldLastInvoiceYear:
			setInt(&c.LastInvoiceYear, v)
		case FieldDefaultTemplate:
			setString(&c.DefaultTemplate, v)
		case FieldOwnerEmail:
			setString(&c.OwnerEmail, v)
		case FieldOwnerName:
			setString(&c.OwnerName, v)
		case FieldEmailVerified:
			if b, ok := v.(bool); ok {
				c.EmailVerified = b
			}
		case FieldSubscription:
			setString(&c.Subscription, v)
		case FieldSubscriptionDate:
			setTime(&c.SubscriptionDate, v)
		case FieldExpiryDate:
			setTime(&c.ExpiryDate, v)
		case FieldCreatedAt:
			setTime(&c.CreatedAt, v)
		case FieldUpdatedAt:
			setTime(&c.UpdatedAt, v)
		}
	}
}

// Fields vuelca la empresa completa como mapa de campos (para Create/overwrite).
func (c *Company) Fields() CompanyFields {
	f := CompanyFields{
		FieldName:                   c.Name,
		FieldICE:                    c.ICE,
		FieldIF:                     c.IF,
		FieldRC:                     c.RC,
		FieldCNSS:                   c.CNSS,
		FieldPatente:                c.Patente,
		FieldAddress:                c.Address,
		FieldPhone:                  c.Phone,
		FieldEmail:                  c.Email,
		FieldWebsite:                c.Website,
		FieldLogo:                   c.Logo,
		FieldSignature:              c.Signature,
		FieldInvoiceNumberingFormat: c.InvoiceNumberingFormat,
		FieldInvoicePrefix:          c.InvoicePrefix,
		FieldInvoiceCounter:         c.InvoiceCounter,
		FieldLastInvoiceYear:        c.LastInvoiceYear,
		FieldDefaultTemplate:        c.DefaultTemplate,
		FieldOwnerEmail:             c.OwnerEmail,
		FieldOwnerName:              c.OwnerName,
		FieldEmailVerified:          c.EmailVerified,
		FieldSubscription:           c.Subscription,
		FieldSubscriptionDate:       c.SubscriptionDate,
		FieldCreatedAt:              c.CreatedAt,
		FieldUpdatedAt:              c.UpdatedAt,
	}
	if !c.ExpiryDate.IsZero() {
		f[FieldExpiryDate] = c.ExpiryDate
	}
	return f
}

func setString(dst *string, v any) {
	if s, ok := v.(string); ok {
		*dst = s
	}
}

func setInt(dst *int, v any) {
	switch n := v.(type) {
	case int:
		*dst = n
	case int64:
		*dst = int(n)
	case float64:
		*dst = int(n)
	}
}

func setTime(dst *time.Time, v any) {
	if t, ok := v.(time.Time); ok {
		*dst = t
	}
}
