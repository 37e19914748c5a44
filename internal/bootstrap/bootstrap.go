// Package bootstrap arma las dependencias compartidas por la API, el worker y el seed:
// almacén elegido por STORE_DRIVER, sesiones en Redis, proveedor de identidad y servicio
// de sesión.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Facture-2/Facture5-V2/internal/application/auth"
	"github.com/Facture-2/Facture5-V2/internal/domain/repository"
	"github.com/Facture-2/Facture5-V2/internal/infrastructure/firebase"
	"github.com/Facture-2/Facture5-V2/internal/infrastructure/postgres"
	"github.com/Facture-2/Facture5-V2/internal/infrastructure/redisstore"
	"github.com/Facture-2/Facture5-V2/pkg/config"
)

// Stores repositorios del driver configurado.
type Stores struct {
	Companies repository.CompanyRepository
	Users     repository.ManagedUserRepository
	Invoices  repository.InvoiceRepository

	// Firebase queda inicializado con cualquier driver: el proveedor de identidad lo necesita.
	Firebase *firebase.Clients

	closers []func() error
}

// Close libera conexiones en orden inverso a su apertura.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FirebaseConfig traduce la configuración de la aplicación al adaptador.
func FirebaseConfig(cfg *config.Config) firebase.Config {
	return firebase.Config{
		ProjectID:       cfg.Firebase.ProjectID,
		CredentialsFile: cfg.Firebase.CredentialsFile,
		APIKey:          cfg.Firebase.APIKey,
		RedirectURI:     cfg.Firebase.RedirectURI,
	}
}

// OpenStores abre Firebase y, según STORE_DRIVER, los repositorios sobre Firestore o PostgreSQL.
// Con postgres aplica el esquema.
func OpenStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	fb, err := firebase.NewClients(ctx, FirebaseConfig(cfg))
	if err != nil {
		return nil, err
	}
	s := &Stores{Firebase: fb, closers: []func() error{fb.Close}}

	switch cfg.Store.Driver {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		s.closers = append(s.closers, func() error { pool.Close(); return nil })
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			_ = s.Close()
			return nil, err
		}
		s.Companies = postgres.NewCompanyRepository(pool)
		s.Users = postgres.NewManagedUserRepository(pool)
		s.Invoices = postgres.NewInvoiceRepository(pool)
	default:
		s.Companies = firebase.NewCompanyRepository(fb.Firestore)
		s.Users = firebase.NewManagedUserRepository(fb.Firestore)
		s.Invoices = firebase.NewInvoiceRepository(fb.Firestore)
	}

	log.Info().Str("driver", cfg.Store.Driver).Msg("almacén inicializado")
	return s, nil
}

// OpenRedis conecta con Redis (sesiones y cola de trabajos).
func OpenRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	return redisstore.NewClient(ctx, redisstore.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// AuthConfig traduce la configuración de la aplicación al servicio de sesión.
func AuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		JWT: auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		},
		Operator: auth.OperatorAccount{
			Email:        cfg.Operator.Email,
			PasswordHash: cfg.Operator.PasswordHash,
			Name:         cfg.Operator.Name,
		},
		RefreshInterval: cfg.Session.RefreshInterval,
	}
}

// NewAuthService construye el servicio de sesión sobre los almacenes abiertos.
func NewAuthService(
	ctx context.Context,
	cfg *config.Config,
	stores *Stores,
	sessions auth.SessionStore,
	log zerolog.Logger,
	opts ...auth.Option,
) (*auth.Service, error) {
	provider, err := firebase.NewIdentityProvider(ctx, stores.Firebase.Auth, FirebaseConfig(cfg))
	if err != nil {
		return nil, err
	}
	return auth.NewService(stores.Companies, stores.Users, provider, sessions, AuthConfig(cfg), log, opts...), nil
}
