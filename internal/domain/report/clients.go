// Package report agrega facturas en los resúmenes del panel de reportes: ranking de clientes,
// conteo por estado de pago, KPIs, series temporales y alertas. Todo es cálculo en memoria
// sobre una instantánea de facturas; nada se persiste.
package report

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
)

// UnknownClient nombre usado para facturas sin cliente.
const UnknownClient = "Unknown Client"

// TopClientsLimit número máximo de clientes devueltos por SummarizeClients.
const TopClientsLimit = 10

// ClientSummary acumulado por cliente (derivado, nunca persistido).
type ClientSummary struct {
	Name         string          `json:"name"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	UnpaidAmount decimal.Decimal `json:"unpaid_amount"`
	InvoiceCount int             `json:"invoice_count"`
}

// ClientName nombre de cliente con el valor por defecto aplicado.
func ClientName(inv entity.Invoice) string {
	if strings.TrimSpace(inv.ClientName) == "" {
		return UnknownClient
	}
	return inv.ClientName
}

// SummarizeClients agrupa por nombre de cliente y devuelve los 10 primeros por importe total.
//
// El orden es estable: a igual total se conserva el orden de primera aparición. Las facturas
// pagadas suman a PaidAmount; cualquier otro estado suma a UnpaidAmount.
func SummarizeClients(invoices []entity.Invoice) []ClientSummary {
	index := make(map[string]int)
	out := make([]ClientSummary, 0)

	for _, inv := range invoices {
		name := ClientName(inv)
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, ClientSummary{Name: name})
		}
		s := &out[i]
		s.TotalAmount = s.TotalAmount.Add(inv.Total)
		s.InvoiceCount++
		if NormalizeStatus(inv.Status) == entity.InvoicePaid {
			s.PaidAmount = s.PaidAmount.Add(inv.Total)
		} else {
			s.UnpaidAmount = s.UnpaidAmount.Add(inv.Total)
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].TotalAmount.GreaterThan(out[b].TotalAmount)
	})
	if len(out) > TopClientsLimit {
		out = out[:TopClientsLimit]
	}
	return out
}
