// Package pdf genera la exportación en PDF del panel de reportes financieros.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + ICE       │  Período + Fecha de emisión  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  KPIs: Facturado | Cobrado | Pendiente | Vencido | Tasa     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ESTADO DE PAGO: pagadas / pendientes / vencidas            │
//	│  TOP CLIENTES: Cliente | Facturas | Total | Pagado | Debe   │
//	│  INGRESOS: Período | Facturado | Cobrado | Facturas         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ALERTAS                                                    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Facture-2/Facture5-V2/internal/application/dto"
	"github.com/Facture-2/Facture5-V2/internal/application/reports"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/internal/domain/report"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorDanger  = &props.Color{Red: 176, Green: 32, Blue: 32}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ reports.PDFGenerator = (*MarotoReportGenerator)(nil)

// MarotoReportGenerator implementa reports.PDFGenerator usando Maroto v2.
type MarotoReportGenerator struct {
	printer  *message.Printer
	currency string
}

// NewMarotoReportGenerator construye el generador. Los importes se formatean con el
// idioma dado (por defecto francés) seguidos de currency.
func NewMarotoReportGenerator(lang language.Tag, currency string) *MarotoReportGenerator {
	if lang == language.Und {
		lang = language.French
	}
	return &MarotoReportGenerator{printer: message.NewPrinter(lang), currency: currency}
}

// GenerateReportPDF genera el PDF del resumen y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateReportPDF(
	_ context.Context,
	company *entity.Company,
	overview *dto.ReportOverviewDTO,
) ([]byte, error) {
	if company == nil || overview == nil {
		return nil, fmt.Errorf("pdf: empresa y resumen son obligatorios")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Rapport financier", true).
		WithAuthor(company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(company, overview))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.kpiRow(overview.KPIs))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("ESTADO DE PAGO"))
	m.AddRows(statusRow(overview.PaymentStatus))

	m.AddRows(sectionTitle("TOP CLIENTES"))
	m.AddRows(tableHeaderRow([]headerCell{
		{"Cliente", 4, align.Left}, {"Facturas", 2, align.Center},
		{"Total", 2, align.Right}, {"Pagado", 2, align.Right}, {"Por cobrar", 2, align.Right},
	}))
	m.AddRows(g.clientRows(overview.TopClients)...)

	m.AddRows(sectionTitle("INGRESOS"))
	m.AddRows(tableHeaderRow([]headerCell{
		{"Período", 4, align.Left}, {"Facturado", 3, align.Right},
		{"Cobrado", 3, align.Right}, {"Facturas", 2, align.Center},
	}))
	m.AddRows(g.revenueRows(overview.Revenue)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(g.alertRows(overview.Alerts)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa + ICE (izq) y período + fecha (der).
func headerRow(company *entity.Company, overview *dto.ReportOverviewDTO) core.Row {
	window := fmt.Sprintf("%s → %s",
		overview.Window.Start.Format("02/01/2006"),
		overview.Window.End.AddDate(0, 0, -1).Format("02/01/2006"))

	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(company.Name, "—"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("ICE: "+nonEmpty(company.ICE, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("RAPPORT FINANCIER · "+overview.Window.Period, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(window, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 7,
			}),
			text.New("Emitido: "+overview.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// kpiRow: cinco indicadores en columnas.
func (g *MarotoReportGenerator) kpiRow(k report.KPIs) core.Row {
	cell := func(label, value string, size int) core.Col {
		return col.New(size).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1, Align: align.Center}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6, Align: align.Center}),
		)
	}
	return row.New(14).Add(
		cell("Facturado", g.money(k.TotalInvoiced), 3),
		cell("Cobrado", g.money(k.Collected), 2),
		cell("Pendiente", g.money(k.Outstanding), 2),
		cell("Vencido", g.money(k.OverdueAmount), 3),
		cell("Tasa de cobro", k.CollectionRate.StringFixed(1)+"%", 2),
	)
}

func statusRow(s report.PaymentStatusCounts) core.Row {
	count := func(label string, n int) core.Col {
		return col.New(4).Add(text.New(fmt.Sprintf("%s: %d", label, n), props.Text{
			Size: 9, Align: align.Center, Top: 1,
		}))
	}
	return row.New(7).Add(
		count("Pagadas", s.Paid),
		count("Pendientes", s.Pending),
		count("Vencidas", s.Overdue),
	)
}

func (g *MarotoReportGenerator) clientRows(clients []report.ClientSummary) []core.Row {
	if len(clients) == 0 {
		return []core.Row{emptyRow("Sin facturas")}
	}
	rows := make([]core.Row, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, row.New(7).Add(
			col.New(4).Add(text.New(c.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(fmt.Sprint(c.InvoiceCount), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(g.money(c.TotalAmount), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(g.money(c.PaidAmount), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(g.money(c.UnpaidAmount), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func (g *MarotoReportGenerator) revenueRows(points []report.SeriesPoint) []core.Row {
	rows := make([]core.Row, 0, len(points))
	for _, p := range points {
		if p.Count == 0 {
			continue
		}
		rows = append(rows, row.New(6).Add(
			col.New(4).Add(text.New(p.Key, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(g.money(p.Invoiced), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(g.money(p.Collected), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(fmt.Sprint(p.Count), props.Text{Size: 8, Align: align.Center, Top: 1})),
		))
	}
	if len(rows) == 0 {
		return []core.Row{emptyRow("Sin ingresos en el período")}
	}
	return rows
}

func (g *MarotoReportGenerator) alertRows(alerts []report.Alert) []core.Row {
	rows := []core.Row{sectionTitle("ALERTAS")}
	if len(alerts) == 0 {
		return append(rows, emptyRow("Sin alertas"))
	}
	for _, a := range alerts {
		color := colorGray
		if a.Severity == report.SeverityCritical {
			color = colorDanger
		}
		msg := a.Message
		if a.Amount.IsPositive() {
			msg += " (" + g.money(a.Amount) + ")"
		}
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("• "+msg, props.Text{Size: 8, Top: 1, Left: 2, Color: color}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

type headerCell struct {
	label string
	size  int
	align align.Type
}

// tableHeaderRow: cabecera de tabla.
func tableHeaderRow(cells []headerCell) core.Row {
	cols := make([]core.Col, 0, len(cells))
	for _, c := range cells {
		cols = append(cols, col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: c.align,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(cols...)
}

func sectionTitle(title string) core.Row {
	return row.New(8).Add(col.New(12).Add(text.New(title, props.Text{
		Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 3,
	})))
}

func emptyRow(msg string) core.Row {
	return row.New(6).Add(col.New(12).Add(text.New(msg, props.Text{
		Size: 8, Color: colorGray, Top: 1, Left: 1,
	})))
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// money formatea un importe con separadores del idioma y dos decimales.
// Ej (fr): 1250000.5 → "1 250 000,50 MAD"
func (g *MarotoReportGenerator) money(d decimal.Decimal) string {
	s := g.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
	if g.currency == "" {
		return s
	}
	return s + " " + g.currency
}
