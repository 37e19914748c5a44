package report_test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/internal/domain/report"
)

var now = time.Date(2026, 3, 18, 15, 30, 0, 0, time.UTC)

func inv(client string, total int64, status string, issued time.Time) entity.Invoice {
	return entity.Invoice{ClientName: client, Total: decimal.NewFromInt(total), Status: status, IssuedAt: issued}
}

// ── SummarizeClients ──────────────────────────────────────────────────────────

func TestSummarizeClients_AgrupaYSeparaPagado(t *testing.T) {
	out := report.SummarizeClients([]entity.Invoice{
		inv("A", 100, "paid", now),
		inv("A", 50, "pending", now),
		inv("B", 200, "paid", now),
	})

	require.Len(t, out, 2)
	assert.Equal(t, "B", out[0].Name)
	assert.True(t, out[0].TotalAmount.Equal(decimal.NewFromInt(200)))
	assert.True(t, out[0].PaidAmount.Equal(decimal.NewFromInt(200)))
	assert.True(t, out[0].UnpaidAmount.IsZero())
	assert.Equal(t, 1, out[0].InvoiceCount)

	assert.Equal(t, "A", out[1].Name)
	assert.True(t, out[1].TotalAmount.Equal(decimal.NewFromInt(150)))
	assert.True(t, out[1].PaidAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, out[1].UnpaidAmount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 2, out[1].InvoiceCount)
}

// Sobre entradas aleatorias: pagado + pendiente == total, el conteo coincide con las facturas
// del cliente, como máximo 10 resultados y orden no creciente por total.
func TestSummarizeClients_PropiedadesConEntradaAleatoria(t *testing.T) {
	rng := rand.New(rand.NewSource(20260318))
	names := []string{"Atlas", "Rif", "Souss", "Tanger Med", "", "Oasis", "Medina", "Zagora",
		"Ifrane", "Dakhla", "Essaouira", "Fès Cuir", "Agadir Pêche"}
	statuses := []string{"paid", "pending", "overdue", "", "cancelled"}

	for round := 0; round < 50; round++ {
		n := rng.Intn(80)
		invoices := make([]entity.Invoice, 0, n)
		counts := map[string]int{}
		totals := map[string]decimal.Decimal{}
		for i := 0; i < n; i++ {
			in := entity.Invoice{
				ClientName: names[rng.Intn(len(names))],
				Total:      decimal.New(rng.Int63n(500000), -2),
				Status:     statuses[rng.Intn(len(statuses))],
				IssuedAt:   now,
			}
			invoices = append(invoices, in)
			key := report.ClientName(in)
			counts[key]++
			totals[key] = totals[key].Add(in.Total)
		}

		out := report.SummarizeClients(invoices)
		require.LessOrEqual(t, len(out), report.TopClientsLimit)
		if len(counts) >= report.TopClientsLimit {
			assert.Len(t, out, report.TopClientsLimit)
		} else {
			assert.Len(t, out, len(counts))
		}
		for i, c := range out {
			assert.True(t, c.PaidAmount.Add(c.UnpaidAmount).Equal(c.TotalAmount), "ronda %d cliente %s", round, c.Name)
			assert.True(t, c.TotalAmount.Equal(totals[c.Name]), "ronda %d cliente %s", round, c.Name)
			assert.Equal(t, counts[c.Name], c.InvoiceCount, "ronda %d cliente %s", round, c.Name)
			if i > 0 {
				assert.False(t, c.TotalAmount.GreaterThan(out[i-1].TotalAmount), "ronda %d: orden no creciente", round)
			}
		}
	}
}

func TestSummarizeClients_SinNombre_UnknownClient(t *testing.T) {
	out := report.SummarizeClients([]entity.Invoice{
		inv("", 10, "overdue", now),
		inv("   ", 5, "paid", now),
	})

	require.Len(t, out, 1)
	assert.Equal(t, report.UnknownClient, out[0].Name)
	assert.Equal(t, 2, out[0].InvoiceCount)
	assert.True(t, out[0].UnpaidAmount.Equal(decimal.NewFromInt(10)))
}

func TestSummarizeClients_TopDiezOrdenEstable(t *testing.T) {
	var invoices []entity.Invoice
	for i := 0; i < 12; i++ {
		invoices = append(invoices, inv(fmt.Sprintf("C%02d", i), 100, "paid", now))
	}
	invoices = append(invoices, inv("Grande", 500, "pending", now))

	out := report.SummarizeClients(invoices)

	require.Len(t, out, report.TopClientsLimit)
	assert.Equal(t, "Grande", out[0].Name)
	for i := 1; i < len(out); i++ {
		assert.Equal(t, fmt.Sprintf("C%02d", i-1), out[i].Name, "empates conservan el orden de aparición")
	}
}

func TestSummarizeClients_TotalInvalidoCuentaComoCero(t *testing.T) {
	out := report.SummarizeClients([]entity.Invoice{
		{ClientName: "X", Status: "paid", IssuedAt: now},
	})
	require.Len(t, out, 1)
	assert.True(t, out[0].TotalAmount.IsZero())
	assert.Equal(t, 1, out[0].InvoiceCount)
}

func TestSummarizeClients_Vacio(t *testing.T) {
	out := report.SummarizeClients(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

// ── SummarizePaymentStatus ────────────────────────────────────────────────────

func TestSummarizePaymentStatus_DesconocidoEsPending(t *testing.T) {
	out := report.SummarizePaymentStatus([]entity.Invoice{
		inv("A", 1, "paid", now),
		inv("A", 1, "draft", now),
		inv("A", 1, "", now),
		inv("A", 1, "overdue", now),
	})
	assert.Equal(t, report.PaymentStatusCounts{Paid: 1, Pending: 2, Overdue: 1}, out)
	assert.Equal(t, 4, out.Total())
}

func TestSummarizePaymentStatus_VacioTodoCero(t *testing.T) {
	assert.Equal(t, report.PaymentStatusCounts{}, report.SummarizePaymentStatus(nil))
}

// ── Series ────────────────────────────────────────────────────────────────────

func TestParsePeriod_DesconocidoEsMonth(t *testing.T) {
	assert.Equal(t, report.PeriodWeek, report.ParsePeriod("week"))
	assert.Equal(t, report.PeriodMonth, report.ParsePeriod("decade"))
	assert.Equal(t, report.PeriodMonth, report.ParsePeriod(""))
}

func TestRevenueSeries_SemanaSieteBucketsDiarios(t *testing.T) {
	series := report.RevenueSeries([]entity.Invoice{
		inv("A", 100, "paid", now),
		inv("B", 40, "pending", now.Add(-time.Hour)),
		inv("C", 70, "paid", now.AddDate(0, 0, -6)),
		inv("D", 999, "paid", now.AddDate(0, 0, -7)), // fuera de la ventana
	}, report.PeriodWeek, now)

	require.Len(t, series, 7)
	assert.Equal(t, "2026-03-12", series[0].Key)
	assert.Equal(t, "2026-03-18", series[6].Key)

	assert.True(t, series[0].Invoiced.Equal(decimal.NewFromInt(70)))
	assert.True(t, series[6].Invoiced.Equal(decimal.NewFromInt(140)))
	assert.True(t, series[6].Collected.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 2, series[6].Count)
	assert.True(t, series[3].Invoiced.IsZero(), "días sin facturas aparecen en cero")
}

func TestRevenueSeries_MesUnBucketPorDia(t *testing.T) {
	series := report.RevenueSeries(nil, report.PeriodMonth, now)
	assert.Len(t, series, 31)
	assert.Equal(t, "2026-03-01", series[0].Key)
}

func TestCashflowSeries_AnioBucketsMensuales(t *testing.T) {
	series := report.CashflowSeries([]entity.Invoice{
		inv("A", 300, "paid", time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)),
		inv("B", 120, "overdue", time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)),
		inv("C", 80, "pending", time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)),
	}, report.PeriodYear, now)

	require.Len(t, series, 12)
	assert.Equal(t, "2025-04", series[0].Key)
	assert.Equal(t, "2026-03", series[11].Key)

	assert.True(t, series[0].Outstanding.Equal(decimal.NewFromInt(80)))
	assert.True(t, series[0].Net.Equal(decimal.NewFromInt(-80)))

	jan := series[9]
	assert.Equal(t, "2026-01", jan.Key)
	assert.True(t, jan.Inflow.Equal(decimal.NewFromInt(300)))
	assert.True(t, jan.Outstanding.Equal(decimal.NewFromInt(120)))
	assert.True(t, jan.Net.Equal(decimal.NewFromInt(180)))
}

func TestWindow_Trimestre(t *testing.T) {
	start, end := report.PeriodQuarter.Window(now)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), end)
	assert.Equal(t, report.Monthly, report.PeriodQuarter.Granularity())
}

// ── KPIs y alertas ────────────────────────────────────────────────────────────

func TestComputeKPIs(t *testing.T) {
	k := report.ComputeKPIs([]entity.Invoice{
		inv("A", 300, "paid", now),
		inv("B", 100, "overdue", now),
		inv("C", 100, "pending", now),
	})

	assert.Equal(t, 3, k.InvoiceCount)
	assert.True(t, k.TotalInvoiced.Equal(decimal.NewFromInt(500)))
	assert.True(t, k.Collected.Equal(decimal.NewFromInt(300)))
	assert.True(t, k.Outstanding.Equal(decimal.NewFromInt(200)))
	assert.True(t, k.OverdueAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "166.67", k.AverageInvoice.StringFixed(2))
	assert.Equal(t, "60.00", k.CollectionRate.StringFixed(2))
}

func TestComputeKPIs_SinFacturas(t *testing.T) {
	k := report.ComputeKPIs(nil)
	assert.Zero(t, k.InvoiceCount)
	assert.True(t, k.CollectionRate.IsZero())
	assert.True(t, k.AverageInvoice.IsZero())
}

func TestBuildAlerts(t *testing.T) {
	pastDue := inv("B", 40, "pending", now.AddDate(0, 0, -20))
	pastDue.DueDate = now.AddDate(0, 0, -5)

	alerts := report.BuildAlerts([]entity.Invoice{
		inv("A", 100, "overdue", now),
		pastDue,
		inv("C", 10, "pending", now),
	}, entity.SubscriptionStatus{IsExpiringSoon: true, ShouldShowNotification: true, DaysRemaining: 2}, now)

	require.Len(t, alerts, 3)
	assert.Equal(t, report.AlertOverdueInvoices, alerts[0].Kind)
	assert.Equal(t, 1, alerts[0].Count)
	assert.Equal(t, report.AlertPastDue, alerts[1].Kind)
	assert.True(t, alerts[1].Amount.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, report.AlertSubscriptionExpiring, alerts[2].Kind)
	assert.Equal(t, 2, alerts[2].Count)
}

func TestBuildAlerts_SinNada(t *testing.T) {
	assert.Empty(t, report.BuildAlerts(nil, entity.SubscriptionStatus{}, now))
}
