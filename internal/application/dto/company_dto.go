package dto

import (
	"time"

	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
)

// CompanyProfileRequest datos de empresa enviados en el registro.
type CompanyProfileRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	ICE     string `json:"ice" validate:"omitempty,max=30"`
	IF      string `json:"if" validate:"omitempty,max=30"`
	RC      string `json:"rc" validate:"omitempty,max=30"`
	CNSS    string `json:"cnss" validate:"omitempty,max=30"`
	Patente string `json:"patente" validate:"omitempty,max=30"`
	Address string `json:"address" validate:"omitempty,max=300"`
	Phone   string `json:"phone" validate:"omitempty,max=30"`
	Email   string `json:"email" validate:"omitempty,email"`
	Website string `json:"website" validate:"omitempty,max=200"`
}

// ToEntity convierte el perfil en una empresa sin id ni suscripción.
func (r CompanyProfileRequest) ToEntity() entity.Company {
	return entity.Company{
		Name:    r.Name,
		ICE:     r.ICE,
		IF:      r.IF,
		RC:      r.RC,
		CNSS:    r.CNSS,
		Patente: r.Patente,
		Address: r.Address,
		Phone:   r.Phone,
		Email:   r.Email,
		Website: r.Website,
	}
}

// UpdateCompanySettingsRequest entrada de PATCH /api/company/settings (campos opcionales).
// Solo se fusionan los campos presentes.
type UpdateCompanySettingsRequest struct {
	Name                   *string `json:"name" validate:"omitempty,min=1,max=200"`
	ICE                    *string `json:"ice" validate:"omitempty,max=30"`
	IF                     *string `json:"if" validate:"omitempty,max=30"`
	RC                     *string `json:"rc" validate:"omitempty,max=30"`
	CNSS                   *string `json:"cnss" validate:"omitempty,max=30"`
	Patente                *string `json:"patente" validate:"omitempty,max=30"`
	Address                *string `json:"address" validate:"omitempty,max=300"`
	Phone                  *string `json:"phone" validate:"omitempty,max=30"`
	Email                  *string `json:"email" validate:"omitempty,email"`
	Website                *string `json:"website" validate:"omitempty,max=200"`
	Logo                   *string `json:"logo"`
	Signature              *string `json:"signature"`
	InvoiceNumberingFormat *string `json:"invoice_numbering_format" validate:"omitempty,max=50"`
	InvoicePrefix          *string `json:"invoice_prefix" validate:"omitempty,max=20"`
	InvoiceCounter         *int    `json:"invoice_counter" validate:"omitempty,min=0"`
	LastInvoiceYear        *int    `json:"last_invoice_year" validate:"omitempty,min=1900,max=9999"`
	DefaultTemplate        *string `json:"default_template" validate:"omitempty,max=50"`
}

// ToFields devuelve el patch con los campos presentes.
func (r UpdateCompanySettingsRequest) ToFields() entity.CompanyFields {
	f := entity.CompanyFields{}
	str := func(key string, v *string) {
		if v != nil {
			f[key] = *v
		}
	}
	str(entity.FieldName, r.Name)
	str(entity.FieldICE, r.ICE)
	str(entity.FieldIF, r.IF)
	str(entity.FieldRC, r.RC)
	str(entity.FieldCNSS, r.CNSS)
	str(entity.FieldPatente, r.Patente)
	str(entity.FieldAddress, r.Address)
	str(entity.FieldPhone, r.Phone)
	str(entity.FieldEmail, r.Email)
	str(entity.FieldWebsite, r.Website)
	str(entity.FieldLogo, r.Logo)
	str(entity.FieldSignature, r.Signature)
	str(entity.FieldInvoiceNumberingFormat, r.InvoiceNumberingFormat)
	str(entity.FieldInvoicePrefix, r.InvoicePrefix)
	str(entity.FieldDefaultTemplate, r.DefaultTemplate)
	if r.InvoiceCounter != nil {
		f[entity.FieldInvoiceCounter] = *r.InvoiceCounter
	}
	if r.LastInvoiceYear != nil {
		f[entity.FieldLastInvoiceYear] = *r.LastInvoiceYear
	}
	return f
}

// CompanyResponse proyección de la empresa expuesta al cliente.
type CompanyResponse struct {
	ID                     string     `json:"id,omitempty"`
	Name                   string     `json:"name"`
	ICE                    string     `json:"ice"`
	IF                     string     `json:"if"`
	RC                     string     `json:"rc"`
	CNSS                   string     `json:"cnss"`
	Patente                string     `json:"patente"`
	Address                string     `json:"address"`
	Phone                  string     `json:"phone"`
	Email                  string     `json:"email"`
	Website                string     `json:"website"`
	Logo                   string     `json:"logo"`
	Signature              string     `json:"signature"`
	InvoiceNumberingFormat string     `json:"invoice_numbering_format"`
	InvoicePrefix          string     `json:"invoice_prefix"`
	InvoiceCounter         int        `json:"invoice_counter"`
	LastInvoiceYear        int        `json:"last_invoice_year"`
	DefaultTemplate        string     `json:"default_template"`
	OwnerEmail             string     `json:"owner_email,omitempty"`
	OwnerName              string     `json:"owner_name,omitempty"`
	Subscription           string     `json:"subscription"`
	SubscriptionDate       *time.Time `json:"subscription_date,omitempty"`
	ExpiryDate             *time.Time `json:"expiry_date,omitempty"`
}

// NewCompanyResponse proyecta la empresa. Las fechas cero se omiten.
func NewCompanyResponse(c *entity.Company) CompanyResponse {
	return CompanyResponse{
		ID:                     c.ID,
		Name:                   c.Name,
		ICE:                    c.ICE,
		IF:                     c.IF,
		RC:                     c.RC,
		CNSS:                   c.CNSS,
		Patente:                c.Patente,
		Address:                c.Address,
		Phone:                  c.Phone,
		Email:                  c.Email,
		Website:                c.Website,
		Logo:                   c.Logo,
		Signature:              c.Signature,
		InvoiceNumberingFormat: c.InvoiceNumberingFormat,
		InvoicePrefix:          c.InvoicePrefix,
		InvoiceCounter:         c.InvoiceCounter,
		LastInvoiceYear:        c.LastInvoiceYear,
		DefaultTemplate:        c.DefaultTemplate,
		OwnerEmail:             c.OwnerEmail,
		OwnerName:              c.OwnerName,
		Subscription:           c.Subscription,
		SubscriptionDate:       timePtr(c.SubscriptionDate),
		ExpiryDate:             timePtr(c.ExpiryDate),
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
