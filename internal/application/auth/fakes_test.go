package auth_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Facture-2/Facture5-V2/internal/application/auth"
	"github.com/Facture-2/Facture5-V2/internal/domain"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria de los puertos
// ──────────────────────────────────────────────────────────────────────────────

type fakeCompanies struct {
	mu       sync.Mutex
	data     map[string]*entity.Company
	merges   []entity.CompanyFields
	getErr   error
	mergeErr error
}

func newFakeCompanies() *fakeCompanies {
	return &fakeCompanies{data: map[string]*entity.Company{}}
}

func (f *fakeCompanies) put(c entity.Company) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[c.ID] = &c
}

func (f *fakeCompanies) Get(_ context.Context, id string) (*entity.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	c, ok := f.data[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCompanies) Create(_ context.Context, c *entity.Company) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.data[c.ID] = &cp
	return nil
}

func (f *fakeCompanies) Merge(_ context.Context, id string, fields entity.CompanyFields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mergeErr != nil {
		return f.mergeErr
	}
	c, ok := f.data[id]
	if !ok {
		c = &entity.Company{ID: id}
		f.data[id] = c
	}
	fields.Apply(c)
	f.merges = append(f.merges, fields)
	return nil
}

func (f *fakeCompanies) ListExpiredPro(_ context.Context, now time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id, c := range f.data {
		if c.IsPro() && !c.ExpiryDate.IsZero() && c.ExpiryDate.Before(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeCompanies) mergeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.merges)
}

type fakeUsers struct {
	list    []*entity.ManagedUser
	touched map[string]time.Time
	findErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{touched: map[string]time.Time{}}
}

func (f *fakeUsers) ListActiveByEmail(_ context.Context, email string) ([]entity.ManagedUser, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []entity.ManagedUser
	for _, u := range f.list {
		if strings.EqualFold(u.Email, email) && u.Status == entity.ManagedUserActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	f.touched[id] = at
	return nil
}

func (f *fakeUsers) Create(_ context.Context, u *entity.ManagedUser) error {
	f.list = append(f.list, u)
	return nil
}

type providerAccount struct {
	password string
	identity entity.Identity
}

type fakeProvider struct {
	accounts      map[string]providerAccount
	tokens        map[string]entity.Identity
	signInErr     error
	verifyErr     error
	verifications []string
	resets        []string
	signedOut     []string
	nextUID       string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{accounts: map[string]providerAccount{}, tokens: map[string]entity.Identity{}}
}

func (f *fakeProvider) SignInWithPassword(_ context.Context, email, password string) (*entity.Identity, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	acc, ok := f.accounts[email]
	if !ok || acc.password != password {
		return nil, domain.ErrInvalidCredentials
	}
	id := acc.identity
	return &id, nil
}

func (f *fakeProvider) VerifyIDToken(_ context.Context, idToken string) (*entity.Identity, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	id, ok := f.tokens[idToken]
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	return &id, nil
}

func (f *fakeProvider) BeginRedirect(context.Context) (*auth.RedirectStart, error) {
	return &auth.RedirectStart{URL: "https://accounts.example.test/o/oauth2/auth?x=1", SessionID: "redir-1"}, nil
}

func (f *fakeProvider) CompleteRedirect(_ context.Context, in auth.RedirectCompletion) (*entity.Identity, error) {
	if in.SessionID != "redir-1" {
		return nil, domain.Provider("redirect", errors.New("sesión de redirección desconocida"))
	}
	id := entity.Identity{UID: "uid-redirect", Email: "redirect@example.test", IDToken: "tok-redirect"}
	return &id, nil
}

func (f *fakeProvider) CreateAccount(_ context.Context, email, password string) (*entity.Identity, error) {
	if _, exists := f.accounts[email]; exists {
		return nil, domain.ErrEmailAlreadyExists
	}
	id := entity.Identity{UID: f.nextUID, Email: email, IDToken: "tok-" + f.nextUID}
	f.accounts[email] = providerAccount{password: password, identity: id}
	return &id, nil
}

func (f *fakeProvider) SendEmailVerification(_ context.Context, idToken string) error {
	f.verifications = append(f.verifications, idToken)
	return nil
}

func (f *fakeProvider) SendPasswordReset(_ context.Context, email string) error {
	f.resets = append(f.resets, email)
	return nil
}

func (f *fakeProvider) SignOut(_ context.Context, uid string) error {
	f.signedOut = append(f.signedOut, uid)
	return nil
}

type fakeSessions struct {
	mu   sync.Mutex
	data map[string]entity.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{data: map[string]entity.Session{}}
}

func (f *fakeSessions) Save(_ context.Context, s *entity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[s.ID] = *s
	return nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (*entity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.data[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, id)
	return nil
}

type countingObserver struct {
	attempts   map[string]int
	downgrades int
}

func (o *countingObserver) LoginAttempt(method, outcome string) {
	if o.attempts == nil {
		o.attempts = map[string]int{}
	}
	o.attempts[method+":"+outcome]++
}

func (o *countingObserver) SubscriptionDowngraded() { o.downgrades++ }

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	operatorEmail    = "ops@facture.test"
	operatorPassword = "operator-secret"
	ownerUID         = "uid-owner"
	ownerEmail       = "owner@atlas.test"
	ownerPassword    = "owner-pass"
	managedEmail     = "staff@atlas.test"
	managedPassword  = "staff-pass"
)

type fixture struct {
	now       time.Time
	companies *fakeCompanies
	users     *fakeUsers
	provider  *fakeProvider
	sessions  *fakeSessions
	observer  *countingObserver
	svc       *auth.Service
}

func hash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		now:       time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		companies: newFakeCompanies(),
		users:     newFakeUsers(),
		provider:  newFakeProvider(),
		sessions:  newFakeSessions(),
		observer:  &countingObserver{},
	}
	f.svc = auth.NewService(f.companies, f.users, f.provider, f.sessions, auth.Config{
		JWT:             auth.JWTConfig{Secret: "test-secret", ExpMinutes: 60, Issuer: "test"},
		Operator:        auth.OperatorAccount{Email: operatorEmail, PasswordHash: hash(t, operatorPassword), Name: "Facture Ops"},
		RefreshInterval: 5 * time.Minute,
	}, zerolog.Nop(), auth.WithClock(func() time.Time { return f.now }), auth.WithObserver(f.observer))

	f.provider.accounts[ownerEmail] = providerAccount{
		password: ownerPassword,
		identity: entity.Identity{UID: ownerUID, Email: ownerEmail, IDToken: "tok-owner", EmailVerified: true},
	}
	f.provider.tokens["tok-owner"] = entity.Identity{UID: ownerUID, Email: ownerEmail, IDToken: "tok-owner"}
	return f
}

// withCompany registra la empresa del propietario con el plan y la expiración dados.
func (f *fixture) withCompany(plan string, expiry time.Time) {
	f.companies.put(entity.Company{
		ID:               ownerUID,
		Name:             "Atlas SARL",
		OwnerEmail:       ownerEmail,
		OwnerName:        "Amina",
		Subscription:     plan,
		SubscriptionDate: f.now.AddDate(0, 0, -25),
		ExpiryDate:       expiry,
	})
}

// withManagedUser registra un usuario gestionado activo de la empresa del propietario.
func (f *fixture) withManagedUser(t *testing.T) {
	f.users.list = append(f.users.list, &entity.ManagedUser{
		ID:           "mu-1",
		Name:         "Youssef",
		Email:        managedEmail,
		PasswordHash: hash(t, managedPassword),
		Status:       entity.ManagedUserActive,
		Permissions:  entity.Permissions{entity.PermInvoices: true, entity.PermReports: true},
		EntrepriseID: ownerUID,
	})
}
