package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/internal/domain/subscription"
)

const dateLayout = "2006-01-02"

// decodeReader convierte a UTF-8 los CSV exportados desde hojas de cálculo en Windows.
func decodeReader(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.ReplaceAll(encoding, "_", "-")) {
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder())
	case "iso-8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return r
	}
}

// readRecords lee el CSV y descarta la cabecera. Acepta ',' o ';' como separador.
func readRecords(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.TrimPrefix(string(raw), "\ufeff")
	cr := csv.NewReader(strings.NewReader(text))
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	if first, _, _ := strings.Cut(text, "\n"); strings.Count(first, ";") > strings.Count(first, ",") {
		cr.Comma = ';'
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

// parseUsers lee name,email,password,permissions y hashea la contraseña con bcrypt.
func parseUsers(r io.Reader, companyID string, now time.Time) ([]entity.ManagedUser, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	users := make([]entity.ManagedUser, 0, len(records))
	var errs []error
	for i, rec := range records {
		line := i + 2
		if len(rec) < 3 {
			errs = append(errs, fmt.Errorf("línea %d: se esperaban al menos 3 columnas", line))
			continue
		}
		email := strings.ToLower(strings.TrimSpace(rec[1]))
		password := strings.TrimSpace(rec[2])
		if email == "" || password == "" {
			errs = append(errs, fmt.Errorf("línea %d: email y password son requeridos", line))
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			errs = append(errs, fmt.Errorf("línea %d: %w", line, err))
			continue
		}
		perms := entity.Permissions{}
		if len(rec) > 3 {
			for _, p := range strings.Split(rec[3], ";") {
				if p = strings.TrimSpace(strings.ToLower(p)); p != "" {
					perms[p] = true
				}
			}
		}
		users = append(users, entity.ManagedUser{
			Name:         strings.TrimSpace(rec[0]),
			Email:        email,
			PasswordHash: string(hash),
			Status:       entity.ManagedUserActive,
			Permissions:  perms,
			EntrepriseID: companyID,
			CreatedAt:    now,
		})
	}
	return users, errors.Join(errs...)
}

// parseInvoices lee number,client_name,total,status,issued_at,due_date.
// Un estado desconocido se conserva tal cual: los reportes lo cuentan como pendiente.
func parseInvoices(r io.Reader, companyID string, now time.Time) ([]entity.Invoice, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	invoices := make([]entity.Invoice, 0, len(records))
	var errs []error
	for i, rec := range records {
		line := i + 2
		if len(rec) < 5 {
			errs = append(errs, fmt.Errorf("línea %d: se esperaban al menos 5 columnas", line))
			continue
		}
		total, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(rec[2]), ",", "."))
		if err != nil {
			errs = append(errs, fmt.Errorf("línea %d: total %q inválido", line, rec[2]))
			continue
		}
		issued, err := time.Parse(dateLayout, strings.TrimSpace(rec[4]))
		if err != nil {
			errs = append(errs, fmt.Errorf("línea %d: issued_at %q inválido", line, rec[4]))
			continue
		}
		inv := entity.Invoice{
			CompanyID:  companyID,
			Number:     strings.TrimSpace(rec[0]),
			ClientName: strings.TrimSpace(rec[1]),
			Total:      total,
			Status:     strings.ToLower(strings.TrimSpace(rec[3])),
			IssuedAt:   issued,
			CreatedAt:  now,
		}
		if len(rec) > 5 && strings.TrimSpace(rec[5]) != "" {
			due, err := time.Parse(dateLayout, strings.TrimSpace(rec[5]))
			if err != nil {
				errs = append(errs, fmt.Errorf("línea %d: due_date %q inválido", line, rec[5]))
				continue
			}
			inv.DueDate = due
		}
		invoices = append(invoices, inv)
	}
	return invoices, errors.Join(errs...)
}

// newProCompany empresa mínima en plan pro por 30 días.
func newProCompany(id, name string, now time.Time) *entity.Company {
	c := &entity.Company{
		ID:              id,
		Name:            name,
		DefaultTemplate: entity.DefaultTemplate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	subscription.UpgradeFields(now).Apply(c)
	return c
}
