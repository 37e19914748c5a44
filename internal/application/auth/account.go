package auth

import (
	"context"
	"fmt"

	"github.com/Facture-2/Facture5-V2/internal/domain"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/internal/domain/subscription"
)

// SettingsFields campos de empresa modificables desde ajustes. Plan y fechas de suscripción
// solo cambian con Upgrade o con la expiración.
var SettingsFields = map[string]bool{
	entity.FieldName:                   true,
	entity.FieldICE:                    true,
	entity.FieldIF:                     true,
	entity.FieldRC:                     true,
	entity.FieldCNSS:                   true,
	entity.FieldPatente:                true,
	entity.FieldAddress:                true,
	entity.FieldPhone:                  true,
	entity.FieldEmail:                  true,
	entity.FieldWebsite:                true,
	entity.FieldLogo:                   true,
	entity.FieldSignature:              true,
	entity.FieldInvoiceNumberingFormat: true,
	entity.FieldInvoicePrefix:          true,
	entity.FieldInvoiceCounter:         true,
	entity.FieldLastInvoiceYear:        true,
	entity.FieldDefaultTemplate:        true,
}

// Upgrade activa el plan pro durante 30 días desde ahora. Solo el propietario puede hacerlo.
func (s *Service) Upgrade(ctx context.Context, sess *entity.Session) (*entity.Session, error) {
	if sess == nil {
		return nil, domain.ErrUnauthorized
	}
	if sess.Kind != entity.AccountOwner {
		return nil, domain.ErrForbidden
	}

	now := s.now()
	fields := subscription.UpgradeFields(now)
	if err := s.companies.Merge(ctx, sess.CompanyID, fields); err != nil {
		return nil, domain.Persistence("upgrade", err)
	}
	fields.Apply(&sess.Company)
	sess.Status = subscription.Evaluate(&sess.Company, now)
	sess.ExpiryNotice = nil

	s.log.Info().Str("company_id", sess.CompanyID).Time("expiry", sess.Company.ExpiryDate).Msg("upgrade a pro")
	return sess, s.save(ctx, sess)
}

// UpdateSettings fusiona los campos dados en la empresa almacenada y en la proyección de la sesión.
// No valida los valores; solo rechaza campos que no son de ajustes.
func (s *Service) UpdateSettings(ctx context.Context, sess *entity.Session, patch entity.CompanyFields) (*entity.Session, error) {
	if sess == nil {
		return nil, domain.ErrUnauthorized
	}
	if sess.Kind == entity.AccountPrivileged || sess.CompanyID == "" {
		return nil, domain.ErrForbidden
	}
	for k := range patch {
		if !SettingsFields[k] {
			return nil, fmt.Errorf("%w: campo %q no modificable", domain.ErrInvalidInput, k)
		}
	}

	fields := make(entity.CompanyFields, len(patch)+1)
	for k, v := range patch {
		fields[k] = v
	}
	fields[entity.FieldUpdatedAt] = s.now()

	if err := s.companies.Merge(ctx, sess.CompanyID, fields); err != nil {
		return nil, domain.Persistence("actualizar ajustes", err)
	}
	fields.Apply(&sess.Company)
	return sess, s.save(ctx, sess)
}
