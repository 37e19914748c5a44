package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
)

// Period selector de período del panel de reportes.
type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// ParsePeriod interpreta el parámetro de consulta; cualquier valor desconocido es month.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return Period(s)
	default:
		return PeriodMonth
	}
}

// Granularity tamaño de cada bucket de la serie.
type Granularity string

const (
	Daily   Granularity = "day"
	Monthly Granularity = "month"
)

// Granularity devuelve buckets diarios para week/month y mensuales para quarter/year.
func (p Period) Granularity() Granularity {
	switch p {
	case PeriodQuarter, PeriodYear:
		return Monthly
	default:
		return Daily
	}
}

// Window devuelve el intervalo [start, end) del período relativo a now:
//
//	week    últimos 7 días, incluido hoy
//	month   mes natural en curso
//	quarter últimos 3 meses naturales, incluido el actual
//	year    últimos 12 meses naturales, incluido el actual
func (p Period) Window(now time.Time) (time.Time, time.Time) {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	switch p {
	case PeriodWeek:
		return today.AddDate(0, 0, -6), today.AddDate(0, 0, 1)
	case PeriodQuarter:
		return monthStart.AddDate(0, -2, 0), monthStart.AddDate(0, 1, 0)
	case PeriodYear:
		return monthStart.AddDate(0, -11, 0), monthStart.AddDate(0, 1, 0)
	default:
		return monthStart, monthStart.AddDate(0, 1, 0)
	}
}

// FilterByWindow devuelve las facturas emitidas en [start, end).
func FilterByWindow(invoices []entity.Invoice, start, end time.Time) []entity.Invoice {
	out := make([]entity.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if !inv.IssuedAt.Before(start) && inv.IssuedAt.Before(end) {
			out = append(out, inv)
		}
	}
	return out
}

// SeriesPoint punto de la serie de ingresos.
type SeriesPoint struct {
	Key       string          `json:"key"` // 2006-01-02 (diario) o 2006-01 (mensual)
	Start     time.Time       `json:"start"`
	Invoiced  decimal.Decimal `json:"invoiced"`
	Collected decimal.Decimal `json:"collected"`
	Count     int             `json:"count"`
}

// CashflowPoint punto de la serie de flujo de caja.
type CashflowPoint struct {
	Key         string          `json:"key"`
	Start       time.Time       `json:"start"`
	Inflow      decimal.Decimal `json:"inflow"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Net         decimal.Decimal `json:"net"`
}

type bucket struct {
	key   string
	start time.Time
}

// buckets genera todos los buckets del período, en orden, sin huecos.
func buckets(p Period, now time.Time) []bucket {
	start, end := p.Window(now)
	var out []bucket
	for t := start; t.Before(end); {
		out = append(out, bucket{key: bucketKey(p.Granularity(), t), start: t})
		if p.Granularity() == Monthly {
			t = t.AddDate(0, 1, 0)
		} else {
			t = t.AddDate(0, 0, 1)
		}
	}
	return out
}

func bucketKey(g Granularity, t time.Time) string {
	if g == Monthly {
		return t.Format("2006-01")
	}
	return t.Format("2006-01-02")
}

// RevenueSeries suma lo facturado y lo cobrado por bucket del período.
// Los buckets sin facturas aparecen con ceros.
func RevenueSeries(invoices []entity.Invoice, p Period, now time.Time) []SeriesPoint {
	bs := buckets(p, now)
	out := make([]SeriesPoint, len(bs))
	index := make(map[string]int, len(bs))
	for i, b := range bs {
		out[i] = SeriesPoint{Key: b.key, Start: b.start, Invoiced: decimal.Zero, Collected: decimal.Zero}
		index[b.key] = i
	}

	start, end := p.Window(now)
	for _, inv := range FilterByWindow(invoices, start, end) {
		i, ok := index[bucketKey(p.Granularity(), inv.IssuedAt.In(now.Location()))]
		if !ok {
			continue
		}
		out[i].Invoiced = out[i].Invoiced.Add(inv.Total)
		out[i].Count++
		if NormalizeStatus(inv.Status) == entity.InvoicePaid {
			out[i].Collected = out[i].Collected.Add(inv.Total)
		}
	}
	return out
}

// CashflowSeries separa por bucket lo cobrado (paid) de lo pendiente (pending + overdue).
func CashflowSeries(invoices []entity.Invoice, p Period, now time.Time) []CashflowPoint {
	bs := buckets(p, now)
	out := make([]CashflowPoint, len(bs))
	index := make(map[string]int, len(bs))
	for i, b := range bs {
		out[i] = CashflowPoint{Key: b.key, Start: b.start, Inflow: decimal.Zero, Outstanding: decimal.Zero, Net: decimal.Zero}
		index[b.key] = i
	}

	start, end := p.Window(now)
	for _, inv := range FilterByWindow(invoices, start, end) {
		i, ok := index[bucketKey(p.Granularity(), inv.IssuedAt.In(now.Location()))]
		if !ok {
			continue
		}
		if NormalizeStatus(inv.Status) == entity.InvoicePaid {
			out[i].Inflow = out[i].Inflow.Add(inv.Total)
		} else {
			out[i].Outstanding = out[i].Outstanding.Add(inv.Total)
		}
	}
	for i := range out {
		out[i].Net = out[i].Inflow.Sub(out[i].Outstanding)
	}
	return out
}
