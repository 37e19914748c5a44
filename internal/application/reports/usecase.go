// Package reports contiene los casos de uso del panel de reportes financieros:
// resumen (KPIs, series, top clientes, estado de pago, alertas) y exportación a PDF.
package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Facture-2/Facture5-V2/internal/application/dto"
	"github.com/Facture-2/Facture5-V2/internal/domain"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/internal/domain/report"
	"github.com/Facture-2/Facture5-V2/internal/domain/repository"
)

// PDFGenerator puerto de salida para la exportación del reporte.
type PDFGenerator interface {
	GenerateReportPDF(ctx context.Context, company *entity.Company, overview *dto.ReportOverviewDTO) ([]byte, error)
}

// UseCase casos de uso de reportes. Fuente de datos: InvoiceRepository (solo lectura).
type UseCase struct {
	invoices  repository.InvoiceRepository
	generator PDFGenerator
	now       func() time.Time
}

// NewUseCase construye el caso de uso. generator puede ser nil si no se exporta PDF.
func NewUseCase(invoices repository.InvoiceRepository, generator PDFGenerator) *UseCase {
	return &UseCase{invoices: invoices, generator: generator, now: time.Now}
}

// WithClock sustituye el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Overview construye el resumen del período para la empresa de la sesión.
//
// Retorna domain.ErrForbidden si la sesión no pertenece a ninguna empresa (operador) y
// domain.ErrPersistence si falla la lectura de facturas.
func (uc *UseCase) Overview(ctx context.Context, sess *entity.Session, period string) (*dto.ReportOverviewDTO, error) {
	if sess == nil {
		return nil, domain.ErrUnauthorized
	}
	if sess.CompanyID == "" {
		return nil, domain.ErrForbidden
	}

	invoices, err := uc.invoices.ListByCompany(ctx, sess.CompanyID)
	if err != nil {
		return nil, domain.Persistence("listar facturas", err)
	}

	now := uc.now()
	p := report.ParsePeriod(period)
	start, end := p.Window(now)
	inWindow := report.FilterByWindow(invoices, start, end)

	return &dto.ReportOverviewDTO{
		CompanyName: sess.Company.Name,
		Window: dto.ReportWindowDTO{
			Period:      string(p),
			Granularity: string(p.Granularity()),
			Start:       start,
			End:         end,
		},
		KPIs:          report.ComputeKPIs(inWindow),
		TopClients:    report.SummarizeClients(invoices),
		PaymentStatus: report.SummarizePaymentStatus(invoices),
		Revenue:       report.RevenueSeries(inWindow, p, now),
		Cashflow:      report.CashflowSeries(inWindow, p, now),
		Alerts:        report.BuildAlerts(invoices, sess.Status, now),
		GeneratedAt:   now,
	}, nil
}

// ExportPDF genera el PDF del resumen. Devuelve los bytes y el nombre de archivo sugerido.
func (uc *UseCase) ExportPDF(ctx context.Context, sess *entity.Session, period string) (pdfBytes []byte, filename string, err error) {
	if uc.generator == nil {
		return nil, "", fmt.Errorf("reports: exportación PDF no configurada")
	}
	overview, err := uc.Overview(ctx, sess, period)
	if err != nil {
		return nil, "", err
	}

	pdfBytes, err = uc.generator.GenerateReportPDF(ctx, &sess.Company, overview)
	if err != nil {
		return nil, "", fmt.Errorf("reports: generación PDF: %w", err)
	}

	filename = fmt.Sprintf("rapport_%s_%s.pdf", overview.Window.Period, overview.GeneratedAt.Format("20060102"))
	if slug := slugify(sess.Company.Name); slug != "" {
		filename = slug + "_" + filename
	}
	return pdfBytes, filename, nil
}

// slugify reduce el nombre a [a-z0-9-] para usarlo en el nombre de archivo.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
