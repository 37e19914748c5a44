package postgres_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Facture-2/Facture5-V2/internal/domain"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/internal/domain/subscription"
	"github.com/Facture-2/Facture5-V2/internal/infrastructure/postgres"
	"github.com/Facture-2/Facture5-V2/pkg/config"
)

// Requiere una base de datos: TEST_DATABASE_URL=postgres://... go test ./...
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.EnsureSchema(ctx, pool))
	return pool
}

func TestPostgres_EmpresaMergeYExpiradas(t *testing.T) {
	pool := testPool(t)
	repo := postgres.NewCompanyRepository(pool)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	id := "it-" + uuid.NewString()
	require.NoError(t, repo.Create(ctx, &entity.Company{
		ID: id, Name: "Atlas", Subscription: entity.SubscriptionPro,
		SubscriptionDate: now.AddDate(0, 0, -31), ExpiryDate: now.Add(-time.Hour),
		CreatedAt: now, UpdatedAt: now,
	}))

	ids, err := repo.ListExpiredPro(ctx, now)
	require.NoError(t, err)
	assert.Contains(t, ids, id)

	require.NoError(t, repo.Merge(ctx, id, subscription.DowngradeFields(now)))
	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Atlas", got.Name)
	assert.Equal(t, entity.SubscriptionFree, got.Subscription)

	ids, err = repo.ListExpiredPro(ctx, now)
	require.NoError(t, err)
	assert.NotContains(t, ids, id)

	// Vence exactamente ahora: cuenta como expirada.
	edge := "it-" + uuid.NewString()
	require.NoError(t, repo.Create(ctx, &entity.Company{ID: edge, Subscription: entity.SubscriptionPro,
		SubscriptionDate: now.AddDate(0, 0, -30), ExpiryDate: now, CreatedAt: now, UpdatedAt: now}))
	ids, err = repo.ListExpiredPro(ctx, now)
	require.NoError(t, err)
	assert.Contains(t, ids, edge)

	missing, err := repo.Get(ctx, "no-"+id)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostgres_UsuariosYFacturas(t *testing.T) {
	pool := testPool(t)
	companies := postgres.NewCompanyRepository(pool)
	users := postgres.NewManagedUserRepository(pool)
	invoices := postgres.NewInvoiceRepository(pool)
	ctx := context.Background()
	now := time.Now().UTC()

	company := "it-" + uuid.NewString()
	require.NoError(t, companies.Create(ctx, &entity.Company{ID: company, Name: "Atlas",
		Subscription: entity.SubscriptionFree, CreatedAt: now, UpdatedAt: now}))

	email := company + "@atlas.test"
	user := &entity.ManagedUser{Email: email, PasswordHash: "$2a$10$x", Status: entity.ManagedUserActive,
		Permissions: entity.Permissions{entity.PermReports: true}, EntrepriseID: company, CreatedAt: now}
	require.NoError(t, users.Create(ctx, user))
	assert.ErrorIs(t, users.Create(ctx, &entity.ManagedUser{Email: email, PasswordHash: "x",
		Status: entity.ManagedUserActive, EntrepriseID: company, CreatedAt: now}), domain.ErrEmailAlreadyExists)

	other := "it-" + uuid.NewString()
	require.NoError(t, companies.Create(ctx, &entity.Company{ID: other, Name: "Rif",
		Subscription: entity.SubscriptionFree, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, users.Create(ctx, &entity.ManagedUser{Email: strings.ToUpper(email), PasswordHash: "$2a$10$y",
		Status: entity.ManagedUserActive, EntrepriseID: other, CreatedAt: now.Add(time.Second)}))

	found, err := users.ListActiveByEmail(ctx, strings.ToUpper(email))
	require.NoError(t, err)
	require.Len(t, found, 2, "mismo email en dos empresas")
	assert.Equal(t, company, found[0].EntrepriseID)
	assert.Equal(t, other, found[1].EntrepriseID)
	assert.Equal(t, email, found[1].Email, "se guarda en minúsculas")
	assert.True(t, found[0].Permissions.Allows(entity.PermReports))
	require.NoError(t, users.TouchLastLogin(ctx, found[0].ID, now))

	none, err := users.ListActiveByEmail(ctx, "nadie@"+company)
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, invoices.Create(ctx, &entity.Invoice{CompanyID: company,
		Total: decimal.RequireFromString("100.50"), Status: entity.InvoicePaid, IssuedAt: now}))
	list, err := invoices.ListByCompany(ctx, company)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].ClientName)
	assert.True(t, list[0].Total.Equal(decimal.RequireFromString("100.50")))
	assert.True(t, list[0].DueDate.IsZero())
}
