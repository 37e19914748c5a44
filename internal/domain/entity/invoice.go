package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pago de una factura.
const (
	InvoicePaid    = "paid"
	InvoicePending = "pending"
	InvoiceOverdue = "overdue"
)

// Invoice registro de factura tal como lo consumen los reportes.
// ClientName vacío y Status desconocido se resuelven en la agregación, no aquí.
type Invoice struct {
	ID         string
	CompanyID  string
	Number     string
	ClientName string
	Total      decimal.Decimal
	Status     string
	IssuedAt   time.Time
	DueDate    time.Time
	CreatedAt  time.Time
}
