package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Facture-2/Facture5-V2/internal/application/auth"
	"github.com/Facture-2/Facture5-V2/internal/application/reports"
	"github.com/Facture-2/Facture5-V2/internal/domain"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	apphttp "github.com/Facture-2/Facture5-V2/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret  = "test-secret-key-for-unit-tests"
	testIssuer     = "facture-test"
	operatorEmail  = "ops@facture.test"
	operatorPass   = "operador-123"
	managedEmail   = "staff@atlas.test"
	managedPass    = "staff-123"
	ownerUID       = "uid-owner"
	testCompanyID  = "uid-owner"
	providerURL    = "https://accounts.example.test/o/oauth2/auth?x=1"
	providerSessID = "redir-1"
	noProfileEmail = "nuevo@perfil.test"
	noProfilePass  = "nuevo-123"
)

var testNow = time.Date(2026, 3, 18, 10, 0, 0, 0, time.UTC)

type memCompanies struct {
	mu   sync.Mutex
	data map[string]entity.Company
}

func (m *memCompanies) Get(_ context.Context, id string) (*entity.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.data[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memCompanies) Create(_ context.Context, c *entity.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[c.ID] = *c
	return nil
}

func (m *memCompanies) Merge(_ context.Context, id string, fields entity.CompanyFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.data[id]
	c.ID = id
	fields.Apply(&c)
	m.data[id] = c
	return nil
}

func (m *memCompanies) ListExpiredPro(_ context.Context, now time.Time) ([]string, error) {
	return nil, nil
}

type memUsers struct {
	users []entity.ManagedUser
}

func (m *memUsers) ListActiveByEmail(_ context.Context, email string) ([]entity.ManagedUser, error) {
	var out []entity.ManagedUser
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) && u.Status == entity.ManagedUserActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) TouchLastLogin(context.Context, string, time.Time) error { return nil }
func (m *memUsers) Create(_ context.Context, u *entity.ManagedUser) error {
	m.users = append(m.users, *u)
	return nil
}

type memSessions struct {
	mu   sync.Mutex
	data map[string]entity.Session
}

func (m *memSessions) Save(_ context.Context, s *entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.ID] = *s
	return nil
}

func (m *memSessions) Get(_ context.Context, id string) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

// stubProvider proveedor que solo reconoce la contraseña de una cuenta sin perfil de empresa
// y siempre inicia la redirección.
type stubProvider struct{}

func (stubProvider) SignInWithPassword(_ context.Context, email, password string) (*entity.Identity, error) {
	if email == noProfileEmail && password == noProfilePass {
		return &entity.Identity{UID: "uid-sin-perfil", Email: email, IDToken: "tok-sin-perfil"}, nil
	}
	return nil, domain.ErrInvalidCredentials
}
func (stubProvider) VerifyIDToken(_ context.Context, tok string) (*entity.Identity, error) {
	if tok == "owner-token" {
		return &entity.Identity{UID: ownerUID, Email: "owner@atlas.test", EmailVerified: true, IDToken: tok}, nil
	}
	return nil, domain.ErrInvalidCredentials
}
func (stubProvider) BeginRedirect(context.Context) (*auth.RedirectStart, error) {
	return &auth.RedirectStart{URL: providerURL, SessionID: providerSessID}, nil
}
func (stubProvider) CompleteRedirect(context.Context, auth.RedirectCompletion) (*entity.Identity, error) {
	return nil, domain.Provider("verifyAssertion", io.ErrUnexpectedEOF)
}
func (stubProvider) CreateAccount(context.Context, string, string) (*entity.Identity, error) {
	return nil, domain.ErrEmailAlreadyExists
}
func (stubProvider) SendEmailVerification(context.Context, string) error { return nil }
func (stubProvider) SendPasswordReset(context.Context, string) error     { return nil }
func (stubProvider) SignOut(context.Context, string) error               { return nil }

type memInvoices struct {
	list []entity.Invoice
}

func (m *memInvoices) ListByCompany(_ context.Context, companyID string) ([]entity.Invoice, error) {
	var out []entity.Invoice
	for _, inv := range m.list {
		if inv.CompanyID == companyID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *memInvoices) Create(_ context.Context, inv *entity.Invoice) error {
	m.list = append(m.list, *inv)
	return nil
}

type testEnv struct {
	app       *fiber.App
	svc       *auth.Service
	companies *memCompanies
	sessions  *memSessions
}

// newTestEnv arma la app completa con empresa pro vigente, operador y un usuario gestionado
// con permiso de reportes pero sin ajustes.
func newTestEnv(t *testing.T, rate *apphttp.RateLimiter) *testEnv {
	t.Helper()
	opHash, err := bcrypt.GenerateFromPassword([]byte(operatorPass), bcrypt.MinCost)
	require.NoError(t, err)
	muHash, err := bcrypt.GenerateFromPassword([]byte(managedPass), bcrypt.MinCost)
	require.NoError(t, err)

	companies := &memCompanies{data: map[string]entity.Company{
		testCompanyID: {
			ID: testCompanyID, Name: "Atlas SARL", OwnerEmail: "owner@atlas.test",
			Subscription: entity.SubscriptionPro, SubscriptionDate: testNow.AddDate(0, 0, -10),
			ExpiryDate: testNow.AddDate(0, 0, 20),
		},
	}}
	users := &memUsers{users: []entity.ManagedUser{{
		ID: "mu-1", Name: "Staff", Email: managedEmail, PasswordHash: string(muHash),
		Status: entity.ManagedUserActive, EntrepriseID: testCompanyID,
		Permissions: entity.Permissions{entity.PermReports: true},
	}}}
	sessions := &memSessions{data: map[string]entity.Session{}}

	svc := auth.NewService(companies, users, stubProvider{}, sessions, auth.Config{
		JWT:      auth.JWTConfig{Secret: testJWTSecret, Issuer: testIssuer, ExpMinutes: 60},
		Operator: auth.OperatorAccount{Email: operatorEmail, PasswordHash: string(opHash), Name: "Ops"},
	}, zerolog.Nop(), auth.WithClock(func() time.Time { return testNow }))

	invoices := &memInvoices{}
	uc := reports.NewUseCase(invoices, nil).WithClock(func() time.Time { return testNow })

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthService:    svc,
		Reports:        uc,
		CredentialRate: rate,
		JWTSecret:      testJWTSecret,
		Log:            zerolog.Nop(),
	})
	return &testEnv{app: app, svc: svc, companies: companies, sessions: sessions}
}

// bearerFor guarda la sesión y devuelve el header Authorization.
func (e *testEnv) bearerFor(t *testing.T, sess *entity.Session) string {
	t.Helper()
	require.NoError(t, e.sessions.Save(context.Background(), sess))
	tok, err := e.svc.IssueToken(sess)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (e *testEnv) do(t *testing.T, method, path, authHeader string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp, out
}

func login(t *testing.T, e *testEnv, email, password string) string {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode, "login debe responder 200: %v", body)
	tok, _ := body["token"].(string)
	require.NotEmpty(t, tok)
	return "Bearer " + tok
}
