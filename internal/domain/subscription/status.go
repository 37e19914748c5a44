// Package subscription calcula el estado de la suscripción de una empresa y los cambios
// de plan (upgrade manual, paso automático a free al expirar). Funciones puras: la hora
// actual siempre llega como parámetro.
package subscription

import (
	"math"
	"time"

	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
)

// ExpiringSoonDays umbral (en días) a partir del cual se avisa de la expiración próxima.
const ExpiringSoonDays = 5

// ProPeriod duración de un upgrade a pro.
const ProPeriod = 30 * 24 * time.Hour

const day = 24 * time.Hour

// Evaluate calcula el estado de suscripción de la empresa en el instante now.
//
// Empresas que no son pro (o pro sin fecha de expiración) devuelven el estado vacío.
// DaysRemaining = ceil((expiry - now) / 1 día), nunca negativo.
func Evaluate(company *entity.Company, now time.Time) entity.SubscriptionStatus {
	if !company.IsPro() || company.ExpiryDate.IsZero() {
		return entity.SubscriptionStatus{}
	}

	days := int(math.Ceil(float64(company.ExpiryDate.Sub(now)) / float64(day)))
	expired := days <= 0
	soon := days > 0 && days <= ExpiringSoonDays

	return entity.SubscriptionStatus{
		IsExpired:              expired,
		IsExpiringSoon:         soon,
		DaysRemaining:          max(days, 0),
		ShouldBlockUsers:       expired,
		ShouldShowNotification: soon && !expired,
	}
}

// NeedsDowngrade indica si la empresa debe pasar a free.
func NeedsDowngrade(company *entity.Company, now time.Time) bool {
	return Evaluate(company, now).IsExpired
}

// DowngradeFields campos a escribir al expirar: plan free y fechas reiniciadas a now.
func DowngradeFields(now time.Time) entity.CompanyFields {
	return entity.CompanyFields{
		entity.FieldSubscription:     entity.SubscriptionFree,
		entity.FieldSubscriptionDate: now,
		entity.FieldExpiryDate:       now,
		entity.FieldUpdatedAt:        now,
	}
}

// UpgradeFields campos a escribir en un upgrade: pro durante ProPeriod desde now.
func UpgradeFields(now time.Time) entity.CompanyFields {
	return entity.CompanyFields{
		entity.FieldSubscription:     entity.SubscriptionPro,
		entity.FieldSubscriptionDate: now,
		entity.FieldExpiryDate:       now.Add(ProPeriod),
		entity.FieldUpdatedAt:        now,
	}
}

// NewFreeTier aplica los valores por defecto de una empresa recién creada.
func NewFreeTier(c *entity.Company, now time.Time) {
	c.Subscription = entity.SubscriptionFree
	c.SubscriptionDate = now
	c.ExpiryDate = now
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.DefaultTemplate == "" {
		c.DefaultTemplate = entity.DefaultTemplate
	}
}
