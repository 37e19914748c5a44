package firebase_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Facture-2/Facture5-V2/internal/domain"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/internal/domain/subscription"
	"github.com/Facture-2/Facture5-V2/internal/infrastructure/firebase"
)

// Requiere el emulador: FIRESTORE_EMULATOR_HOST=localhost:8080 go test ./...
func emulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST no definido")
	}
	client, err := firestore.NewClient(context.Background(), "demo-facture")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestFirestore_EmpresaMergeYExpiradas(t *testing.T) {
	client := emulatorClient(t)
	repo := firebase.NewCompanyRepository(client)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	id := "it-" + uuid.NewString()
	c := &entity.Company{ID: id, Name: "Atlas", Subscription: entity.SubscriptionPro,
		SubscriptionDate: now.AddDate(0, 0, -31), ExpiryDate: now.Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, c))

	ids, err := repo.ListExpiredPro(ctx, now)
	require.NoError(t, err)
	assert.Contains(t, ids, id)

	require.NoError(t, repo.Merge(ctx, id, subscription.DowngradeFields(now)))
	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Atlas", got.Name, "merge conserva los demás campos")
	assert.Equal(t, entity.SubscriptionFree, got.Subscription)
	assert.True(t, got.ExpiryDate.Equal(now))

	ids, err = repo.ListExpiredPro(ctx, now)
	require.NoError(t, err)
	assert.NotContains(t, ids, id)

	// Vence exactamente ahora: cuenta como expirada.
	edge := "it-" + uuid.NewString()
	require.NoError(t, repo.Create(ctx, &entity.Company{ID: edge, Subscription: entity.SubscriptionPro,
		SubscriptionDate: now.AddDate(0, 0, -30), ExpiryDate: now}))
	ids, err = repo.ListExpiredPro(ctx, now)
	require.NoError(t, err)
	assert.Contains(t, ids, edge)

	missing, err := repo.Get(ctx, "no-"+id)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFirestore_UsuariosYFacturas(t *testing.T) {
	client := emulatorClient(t)
	users := firebase.NewManagedUserRepository(client)
	invoices := firebase.NewInvoiceRepository(client)
	ctx := context.Background()

	company := "it-" + uuid.NewString()
	email := company + "@atlas.test"
	require.NoError(t, users.Create(ctx, &entity.ManagedUser{
		Email: email, PasswordHash: "$2a$10$x", Status: entity.ManagedUserActive,
		Permissions: entity.Permissions{entity.PermReports: true}, EntrepriseID: company,
		CreatedAt: time.Now(),
	}))

	require.NoError(t, users.Create(ctx, &entity.ManagedUser{
		Email: strings.ToUpper(email), PasswordHash: "$2a$10$y", Status: entity.ManagedUserActive,
		EntrepriseID: "otra-" + company, CreatedAt: time.Now(),
	}))
	assert.ErrorIs(t, users.Create(ctx, &entity.ManagedUser{Email: email, PasswordHash: "x",
		Status: entity.ManagedUserActive, EntrepriseID: company}), domain.ErrEmailAlreadyExists)

	found, err := users.ListActiveByEmail(ctx, strings.ToUpper(email))
	require.NoError(t, err)
	require.Len(t, found, 2, "mismo email en dos empresas")
	for _, u := range found {
		assert.Equal(t, email, u.Email)
	}
	require.NoError(t, users.TouchLastLogin(ctx, found[0].ID, time.Now()))

	none, err := users.ListActiveByEmail(ctx, "nadie@"+company)
	assert.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, invoices.Create(ctx, &entity.Invoice{CompanyID: company, ClientName: "A",
		Total: decimal.NewFromInt(100), Status: entity.InvoicePaid, IssuedAt: time.Now()}))
	list, err := invoices.ListByCompany(ctx, company)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Total.Equal(decimal.NewFromInt(100)))
}
