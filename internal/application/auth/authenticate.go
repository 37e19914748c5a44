package auth

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Facture-2/Facture5-V2/internal/domain"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/internal/domain/repository"
	"github.com/Facture-2/Facture5-V2/internal/domain/subscription"
)

// OperatorAccountID id fijo de la sesión del operador.
const OperatorAccountID = "operator"

// Account cuenta reconocida por una estrategia de autenticación.
type Account struct {
	Kind     entity.AccountKind
	Operator *OperatorAccount
	Managed  *entity.ManagedUser
	Identity *entity.Identity
}

// matcher estrategia de autenticación. Devuelve (nil, nil) cuando las credenciales no
// corresponden a su tipo de cuenta para que se pruebe la siguiente.
type matcher interface {
	name() string
	match(ctx context.Context, email, password string) (*Account, error)
}

// Authenticate prueba en orden operador, usuario gestionado y proveedor de identidad.
//
// Cualquier fallo distinto de domain.ErrAccountBlocked se registra y se devuelve como
// domain.ErrInvalidCredentials. Si el proveedor acepta las credenciales pero no existe
// perfil de empresa, devuelve (nil, nil): identidad verificada sin sesión.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entity.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		s.observer.LoginAttempt("password", OutcomeInvalid)
		return nil, domain.ErrInvalidCredentials
	}

	for _, m := range s.matchers {
		acc, err := m.match(ctx, email, password)
		if err != nil {
			s.log.Warn().Err(err).Str("email", email).Str("matcher", m.name()).Msg("autenticación rechazada")
			s.observer.LoginAttempt("password", OutcomeInvalid)
			return nil, domain.ErrInvalidCredentials
		}
		if acc == nil {
			continue
		}

		sess, err := s.open(ctx, acc)
		switch {
		case err == nil && sess == nil:
			s.observer.LoginAttempt("password", OutcomePending)
			return nil, nil
		case err == nil:
			s.observer.LoginAttempt("password", OutcomeSuccess)
			return sess, nil
		case isAny(err, domain.ErrAccountBlocked):
			s.observer.LoginAttempt("password", OutcomeBlocked)
			return nil, domain.ErrAccountBlocked
		default:
			s.log.Error().Err(err).Str("email", email).Str("matcher", m.name()).Msg("apertura de sesión")
			s.observer.LoginAttempt("password", OutcomeError)
			return nil, domain.ErrInvalidCredentials
		}
	}

	s.observer.LoginAttempt("password", OutcomeInvalid)
	return nil, domain.ErrInvalidCredentials
}

// open construye y persiste la sesión de la cuenta reconocida.
func (s *Service) open(ctx context.Context, acc *Account) (*entity.Session, error) {
	switch acc.Kind {
	case entity.AccountPrivileged:
		return s.openOperator(ctx, acc.Operator)
	case entity.AccountManaged:
		return s.openManaged(ctx, acc.Managed)
	default:
		return s.ResolveSession(ctx, acc.Identity)
	}
}

func (s *Service) openOperator(ctx context.Context, op *OperatorAccount) (*entity.Session, error) {
	sess := s.newSession(entity.AccountPrivileged)
	sess.AccountID = OperatorAccountID
	sess.Email = op.Email
	sess.Name = op.Name
	sess.Role = entity.RoleAdmin
	sess.IsAdmin = true
	sess.Permissions = entity.FullPermissions()
	sess.Company = entity.Company{
		Name:            op.Name,
		Email:           op.Email,
		Subscription:    entity.SubscriptionPro,
		DefaultTemplate: entity.DefaultTemplate,
	}
	return sess, s.save(ctx, sess)
}

func (s *Service) openManaged(ctx context.Context, u *entity.ManagedUser) (*entity.Session, error) {
	company, err := s.companies.Get(ctx, u.EntrepriseID)
	if err != nil {
		return nil, domain.Persistence("empresa del usuario gestionado", err)
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}

	now := s.now()
	status := subscription.Evaluate(company, now)
	if stateFor(entity.AccountManaged, company, status) == entity.SessionBlocked {
		return nil, domain.ErrAccountBlocked
	}
	if err := s.users.TouchLastLogin(ctx, u.ID, now); err != nil {
		return nil, domain.Persistence("último acceso", err)
	}

	sess := s.newSession(entity.AccountManaged)
	sess.AccountID = u.ID
	sess.CompanyID = u.EntrepriseID
	sess.Email = u.Email
	sess.Name = u.Name
	sess.Role = entity.RoleUser
	sess.Permissions = u.Permissions
	sess.Company = project(company)
	sess.Status = status
	return sess, s.save(ctx, sess)
}

// ── Estrategias ───────────────────────────────────────────────────────────────

// operatorMatcher cuenta privilegiada configurada; deshabilitada si no hay hash.
type operatorMatcher struct {
	account OperatorAccount
}

func (operatorMatcher) name() string { return "operator" }

func (m operatorMatcher) match(_ context.Context, email, password string) (*Account, error) {
	if m.account.Email == "" || m.account.PasswordHash == "" {
		return nil, nil
	}
	if !strings.EqualFold(email, m.account.Email) {
		return nil, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(m.account.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	op := m.account
	return &Account{Kind: entity.AccountPrivileged, Operator: &op}, nil
}

// managedMatcher usuarios gestionados activos con credencial bcrypt.
type managedMatcher struct {
	users repository.ManagedUserRepository
	log   zerolog.Logger
}

func (managedMatcher) name() string { return "managed" }

func (m managedMatcher) match(ctx context.Context, email, password string) (*Account, error) {
	users, err := m.users.ListActiveByEmail(ctx, email)
	if err != nil {
		// Un fallo de la consulta equivale a "no es usuario gestionado".
		m.log.Error().Err(err).Str("email", email).Msg("consulta de usuario gestionado")
		return nil, nil
	}
	// Gana el primer registro cuya credencial coincide.
	for i := range users {
		u := users[i]
		if u.PasswordHash == "" {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil {
			return &Account{Kind: entity.AccountManaged, Managed: &u}, nil
		}
	}
	return nil, nil
}

// providerMatcher verificación de contraseña en el proveedor de identidad.
type providerMatcher struct {
	provider IdentityProvider
	log      zerolog.Logger
}

func (providerMatcher) name() string { return "provider" }

func (m providerMatcher) match(ctx context.Context, email, password string) (*Account, error) {
	identity, err := m.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &Account{Kind: entity.AccountOwner, Identity: identity}, nil
}
