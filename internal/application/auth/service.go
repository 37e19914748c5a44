// Package auth contiene el ciclo de vida de la sesión: autenticación (operador, usuarios
// gestionados, proveedor de identidad), proyección de la empresa, estado de suscripción,
// paso automático a free al expirar, upgrade y ajustes de empresa.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Facture-2/Facture5-V2/internal/domain"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/internal/domain/repository"
	"github.com/Facture-2/Facture5-V2/internal/domain/subscription"
	"github.com/Facture-2/Facture5-V2/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// OperatorAccount cuenta privilegiada configurada por entorno. PasswordHash es bcrypt.
type OperatorAccount struct {
	Email        string
	PasswordHash string
	Name         string
}

// Config parámetros del servicio.
type Config struct {
	JWT             JWTConfig
	Operator        OperatorAccount
	RefreshInterval time.Duration
}

// Service casos de uso de sesión y suscripción.
type Service struct {
	companies repository.CompanyRepository
	users     repository.ManagedUserRepository
	provider  IdentityProvider
	sessions  SessionStore
	cfg       Config
	log       zerolog.Logger
	now       func() time.Time
	observer  Observer
	matchers  []matcher
}

// Option personaliza el Service.
type Option func(*Service)

// WithClock sustituye el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithObserver registra el receptor de métricas.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewService construye el servicio de sesión.
func NewService(
	companies repository.CompanyRepository,
	users repository.ManagedUserRepository,
	provider IdentityProvider,
	sessions SessionStore,
	cfg Config,
	log zerolog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		companies: companies,
		users:     users,
		provider:  provider,
		sessions:  sessions,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
		observer:  nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.matchers = []matcher{
		operatorMatcher{account: cfg.Operator},
		managedMatcher{users: users, log: log},
		providerMatcher{provider: provider, log: log},
	}
	return s
}

// IssueToken firma el token que referencia la sesión.
func (s *Service) IssueToken(sess *entity.Session) (string, error) {
	return jwt.Generate(s.cfg.JWT.Secret, s.cfg.JWT.Issuer, jwt.SessionToken{
		SessionID: sess.ID,
		AccountID: sess.AccountID,
		CompanyID: sess.CompanyID,
		Kind:      string(sess.Kind),
	}, s.cfg.JWT.ExpMinutes)
}

// Load obtiene la sesión del almacén y la refresca si superó el intervalo de refresco.
// Devuelve (nil, nil) si la sesión no existe.
func (s *Service) Load(ctx context.Context, sessionID string) (*entity.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, domain.Persistence("cargar sesión", err)
	}
	if sess == nil {
		return nil, nil
	}
	if s.cfg.RefreshInterval > 0 && s.now().Sub(sess.RefreshedAt) >= s.cfg.RefreshInterval {
		return s.Refresh(ctx, sess)
	}
	return sess, nil
}

// Refresh recarga la empresa y recalcula el estado de suscripción de la sesión.
//
// Sesiones de propietario: ejecutan la comprobación de expiración (paso a free).
// Sesiones gestionadas: pasan a blocked si la empresa expiró o dejó de ser pro.
// La sesión del operador no depende de ninguna empresa.
func (s *Service) Refresh(ctx context.Context, sess *entity.Session) (*entity.Session, error) {
	now := s.now()
	if sess.Kind == entity.AccountPrivileged {
		sess.RefreshedAt = now
		return sess, s.save(ctx, sess)
	}

	company, err := s.companies.Get(ctx, sess.CompanyID)
	if err != nil {
		return nil, domain.Persistence("refrescar sesión", err)
	}
	if company == nil {
		_ = s.sessions.Delete(ctx, sess.ID)
		return nil, domain.ErrUnauthorized
	}

	if sess.Kind == entity.AccountOwner {
		notice, err := s.expireIfNeeded(ctx, company)
		if err != nil {
			s.log.Error().Err(err).Str("company_id", company.ID).Msg("comprobación de expiración")
		}
		if notice != nil {
			sess.ExpiryNotice = notice
		}
	}

	sess.Company = project(company)
	sess.Status = subscription.Evaluate(company, now)
	sess.State = stateFor(sess.Kind, company, sess.Status)
	sess.RefreshedAt = now
	return sess, s.save(ctx, sess)
}

// CheckExpiry comprobación manual o periódica de la expiración de una empresa.
// Idempotente: una empresa ya degradada no vuelve a escribirse.
func (s *Service) CheckExpiry(ctx context.Context, companyID string) (*entity.ExpiryNotice, error) {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return nil, domain.Persistence("comprobar expiración", err)
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return s.expireIfNeeded(ctx, company)
}

// Logout destruye la sesión. Para cuentas del proveedor también cierra la sesión allí.
// Los errores se registran y nunca se devuelven.
func (s *Service) Logout(ctx context.Context, sess *entity.Session) {
	if sess == nil {
		return
	}
	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		s.log.Error().Err(err).Str("session_id", sess.ID).Msg("logout: borrar sesión")
	}
	if sess.Kind == entity.AccountOwner && sess.Provider != nil {
		if err := s.provider.SignOut(ctx, sess.Provider.UID); err != nil {
			s.log.Error().Err(err).Str("uid", sess.Provider.UID).Msg("logout: proveedor")
		}
	}
}

// DismissExpiryNotice descarta el aviso de expiración de un solo uso.
func (s *Service) DismissExpiryNotice(ctx context.Context, sess *entity.Session) (*entity.Session, error) {
	if sess.ExpiryNotice == nil {
		return sess, nil
	}
	sess.ExpiryNotice = nil
	return sess, s.save(ctx, sess)
}

// ── Internos ──────────────────────────────────────────────────────────────────

// expireIfNeeded escribe el paso a free cuando la suscripción pro expiró.
// La escritura deja la empresa en free, así que se ejecuta como mucho una vez por expiración.
func (s *Service) expireIfNeeded(ctx context.Context, company *entity.Company) (*entity.ExpiryNotice, error) {
	now := s.now()
	if !subscription.NeedsDowngrade(company, now) {
		return nil, nil
	}
	expiredAt := company.ExpiryDate
	fields := subscription.DowngradeFields(now)
	if err := s.companies.Merge(ctx, company.ID, fields); err != nil {
		return nil, domain.Persistence("paso a free", err)
	}
	fields.Apply(company)
	s.observer.SubscriptionDowngraded()
	s.log.Info().
		Str("company_id", company.ID).
		Time("expired_at", expiredAt).
		Msg("suscripción pro expirada, empresa pasada a free")
	return &entity.ExpiryNotice{ExpiredAt: expiredAt, DowngradedAt: now}, nil
}

func (s *Service) save(ctx context.Context, sess *entity.Session) error {
	if err := s.sessions.Save(ctx, sess); err != nil {
		return domain.Persistence("guardar sesión", err)
	}
	return nil
}

func (s *Service) newSession(kind entity.AccountKind) *entity.Session {
	now := s.now()
	return &entity.Session{
		ID:          uuid.NewString(),
		Kind:        kind,
		State:       entity.SessionAuthenticated,
		CreatedAt:   now,
		RefreshedAt: now,
	}
}

// stateFor calcula el estado: solo las sesiones gestionadas pueden quedar bloqueadas.
func stateFor(kind entity.AccountKind, company *entity.Company, st entity.SubscriptionStatus) entity.SessionState {
	if kind == entity.AccountManaged && (st.ShouldBlockUsers || !company.IsPro()) {
		return entity.SessionBlocked
	}
	return entity.SessionAuthenticated
}

// project copia la empresa aplicando los valores por defecto de la proyección.
func project(c *entity.Company) entity.Company {
	p := *c
	if p.DefaultTemplate == "" {
		p.DefaultTemplate = entity.DefaultTemplate
	}
	if p.Subscription == "" {
		p.Subscription = entity.SubscriptionFree
	}
	return p
}

// localPart devuelve la parte anterior a la @ de un email.
func localPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func isAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
