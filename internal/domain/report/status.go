package report

import "github.com/Facture-2/Facture5-V2/internal/domain/entity"

// PaymentStatusCounts número de facturas por estado. Los tres contadores siempre están presentes.
type PaymentStatusCounts struct {
	Paid    int `json:"paid"`
	Pending int `json:"pending"`
	Overdue int `json:"overdue"`
}

// Total suma de los tres contadores.
func (c PaymentStatusCounts) Total() int {
	return c.Paid + c.Pending + c.Overdue
}

// NormalizeStatus reduce un estado libre a paid | pending | overdue.
// Vacío o desconocido (incluidas variantes en mayúsculas) cuenta como pending.
func NormalizeStatus(status string) string {
	switch status {
	case entity.InvoicePaid:
		return entity.InvoicePaid
	case entity.InvoiceOverdue:
		return entity.InvoiceOverdue
	default:
		return entity.InvoicePending
	}
}

// SummarizePaymentStatus cuenta las facturas por estado de pago.
func SummarizePaymentStatus(invoices []entity.Invoice) PaymentStatusCounts {
	var out PaymentStatusCounts
	for _, inv := range invoices {
		switch NormalizeStatus(inv.Status) {
		case entity.InvoicePaid:
			out.Paid++
		case entity.InvoiceOverdue:
			out.Overdue++
		default:
			out.Pending++
		}
	}
	return out
}
