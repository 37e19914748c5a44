package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// KPIs indicadores financieros del período.
type KPIs struct {
	TotalInvoiced  decimal.Decimal `json:"total_invoiced"`
	Collected      decimal.Decimal `json:"collected"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	OverdueAmount  decimal.Decimal `json:"overdue_amount"`
	InvoiceCount   int             `json:"invoice_count"`
	AverageInvoice decimal.Decimal `json:"average_invoice"`
	CollectionRate decimal.Decimal `json:"collection_rate"` // porcentaje 0-100
}

// ComputeKPIs calcula los indicadores sobre las facturas dadas.
func ComputeKPIs(invoices []entity.Invoice) KPIs {
	k := KPIs{
		TotalInvoiced:  decimal.Zero,
		Collected:      decimal.Zero,
		Outstanding:    decimal.Zero,
		OverdueAmount:  decimal.Zero,
		AverageInvoice: decimal.Zero,
		CollectionRate: decimal.Zero,
	}
	for _, inv := range invoices {
		k.InvoiceCount++
		k.TotalInvoiced = k.TotalInvoiced.Add(inv.Total)
		switch NormalizeStatus(inv.Status) {
		case entity.InvoicePaid:
			k.Collected = k.Collected.Add(inv.Total)
		case entity.InvoiceOverdue:
			k.OverdueAmount = k.OverdueAmount.Add(inv.Total)
			k.Outstanding = k.Outstanding.Add(inv.Total)
		default:
			k.Outstanding = k.Outstanding.Add(inv.Total)
		}
	}
	if k.InvoiceCount > 0 {
		k.AverageInvoice = k.TotalInvoiced.Div(decimal.NewFromInt(int64(k.InvoiceCount))).Round(2)
	}
	if k.TotalInvoiced.IsPositive() {
		k.CollectionRate = k.Collected.Mul(hundred).Div(k.TotalInvoiced).Round(2)
	}
	return k
}

// Tipos y severidades de alerta.
const (
	AlertOverdueInvoices      = "overdue_invoices"
	AlertPastDue              = "past_due"
	AlertSubscriptionExpiring = "subscription_expiring"
	AlertSubscriptionExpired  = "subscription_expired"

	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Alert alerta financiera del panel.
type Alert struct {
	Kind     string          `json:"kind"`
	Severity string          `json:"severity"`
	Message  string          `json:"message"`
	Count    int             `json:"count,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

// BuildAlerts genera las alertas: facturas vencidas, pendientes con fecha límite pasada y
// estado de la suscripción.
func BuildAlerts(invoices []entity.Invoice, status entity.SubscriptionStatus, now time.Time) []Alert {
	alerts := make([]Alert, 0)

	var overdueCount, pastDueCount int
	overdueAmount, pastDueAmount := decimal.Zero, decimal.Zero
	for _, inv := range invoices {
		switch NormalizeStatus(inv.Status) {
		case entity.InvoiceOverdue:
			overdueCount++
			overdueAmount = overdueAmount.Add(inv.Total)
		case entity.InvoicePending:
			if !inv.DueDate.IsZero() && inv.DueDate.Before(now) {
				pastDueCount++
				pastDueAmount = pastDueAmount.Add(inv.Total)
			}
		}
	}

	if overdueCount > 0 {
		alerts = append(alerts, Alert{
			Kind:     AlertOverdueInvoices,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("%d factura(s) vencida(s) por cobrar", overdueCount),
			Count:    overdueCount,
			Amount:   overdueAmount,
		})
	}
	if pastDueCount > 0 {
		alerts = append(alerts, Alert{
			Kind:     AlertPastDue,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%d factura(s) pendiente(s) con fecha límite superada", pastDueCount),
			Count:    pastDueCount,
			Amount:   pastDueAmount,
		})
	}

	switch {
	case status.IsExpired:
		alerts = append(alerts, Alert{
			Kind:     AlertSubscriptionExpired,
			Severity: SeverityCritical,
			Message:  "la suscripción pro ha expirado",
			Amount:   decimal.Zero,
		})
	case status.ShouldShowNotification:
		alerts = append(alerts, Alert{
			Kind:     AlertSubscriptionExpiring,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("la suscripción pro expira en %d día(s)", status.DaysRemaining),
			Count:    status.DaysRemaining,
			Amount:   decimal.Zero,
		})
	}
	return alerts
}
