package dto

import (
	"time"

	"github.com/Facture-2/Facture5-V2/internal/domain/report"
)

// ReportOverviewRequest parámetros de GET /api/reports/overview y /api/reports/export.pdf.
// Un período desconocido se interpreta como month.
type ReportOverviewRequest struct {
	Period string `query:"period"` // week | month | quarter | year
}

// ReportWindowDTO ventana temporal del reporte [start, end).
type ReportWindowDTO struct {
	Period      string    `json:"period"`
	Granularity string    `json:"granularity"` // day | month
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// ReportOverviewDTO respuesta de GET /api/reports/overview.
//
// KPIs y series se calculan sobre las facturas emitidas en la ventana; top clientes,
// estado de pago y alertas sobre todas las facturas de la empresa.
type ReportOverviewDTO struct {
	CompanyName   string                     `json:"company_name"`
	Window        ReportWindowDTO            `json:"window"`
	KPIs          report.KPIs                `json:"kpis"`
	TopClients    []report.ClientSummary     `json:"top_clients"`
	PaymentStatus report.PaymentStatusCounts `json:"payment_status"`
	Revenue       []report.SeriesPoint       `json:"revenue"`
	Cashflow      []report.CashflowPoint     `json:"cashflow"`
	Alerts        []report.Alert             `json:"alerts"`
	GeneratedAt   time.Time                  `json:"generated_at"`
}
