// seed carga usuarios gestionados y facturas de una empresa desde CSV en el almacén
// configurado (STORE_DRIVER). Los usuarios gestionados no tienen alta desde la API.
//
// Uso:
//
//	go run ./cmd/seed -company <uid> [-users usuarios.csv] [-invoices facturas.csv] \
//	    [-encoding windows-1252] [-create "Nombre empresa"]
//
// usuarios.csv: name,email,password,permissions (permisos separados por ';')
// facturas.csv: number,client_name,total,status,issued_at,due_date (fechas YYYY-MM-DD)
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Facture-2/Facture5-V2/internal/bootstrap"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/pkg/config"
	"github.com/Facture-2/Facture5-V2/pkg/logger"
)

func main() {
	companyID := flag.String("company", "", "uid de la empresa (propietario)")
	usersPath := flag.String("users", "", "CSV de usuarios gestionados")
	invoicesPath := flag.String("invoices", "", "CSV de facturas")
	encoding := flag.String("encoding", "utf-8", "codificación de los CSV: utf-8, windows-1252, iso-8859-1")
	createName := flag.String("create", "", "crear la empresa en plan pro si no existe")
	flag.Parse()

	if *companyID == "" {
		fmt.Fprintln(os.Stderr, "-company es requerido")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})

	ctx := context.Background()
	stores, err := bootstrap.OpenStores(ctx, cfg, log.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacén")
	}
	defer stores.Close()

	now := time.Now().UTC()
	if *createName != "" {
		existing, err := stores.Companies.Get(ctx, *companyID)
		if err != nil {
			log.Fatal().Err(err).Msg("leer empresa")
		}
		if existing == nil {
			if err := stores.Companies.Create(ctx, newProCompany(*companyID, *createName, now)); err != nil {
				log.Fatal().Err(err).Msg("crear empresa")
			}
			log.Info().Str("company_id", *companyID).Msg("empresa creada en plan pro")
		}
	}

	if *usersPath != "" {
		users, err := readFile(*usersPath, *encoding, func(r io.Reader) ([]entity.ManagedUser, error) {
			return parseUsers(r, *companyID, now)
		})
		if err != nil {
			log.Fatal().Err(err).Str("file", *usersPath).Msg("leer usuarios")
		}
		for i := range users {
			if err := stores.Users.Create(ctx, &users[i]); err != nil {
				log.Error().Err(err).Str("email", users[i].Email).Msg("crear usuario gestionado")
			}
		}
		log.Info().Int("count", len(users)).Msg("usuarios gestionados cargados")
	}

	if *invoicesPath != "" {
		invoices, err := readFile(*invoicesPath, *encoding, func(r io.Reader) ([]entity.Invoice, error) {
			return parseInvoices(r, *companyID, now)
		})
		if err != nil {
			log.Fatal().Err(err).Str("file", *invoicesPath).Msg("leer facturas")
		}
		for i := range invoices {
			if err := stores.Invoices.Create(ctx, &invoices[i]); err != nil {
				log.Error().Err(err).Str("number", invoices[i].Number).Msg("crear factura")
			}
		}
		log.Info().Int("count", len(invoices)).Msg("facturas cargadas")
	}
}

// readFile abre el CSV y lo entrega ya convertido a UTF-8.
func readFile[T any](path, encoding string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(decodeReader(f, encoding))
}
