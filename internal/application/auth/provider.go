package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/Facture-2/Facture5-V2/internal/domain"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/internal/domain/subscription"
)

// DefaultOwnerName nombre del propietario cuando la identidad no aporta ninguno.
const DefaultOwnerName = "Utilisateur"

// ProviderSignIn resultado del popup del proveedor en el cliente.
type ProviderSignIn struct {
	IDToken      string
	PopupBlocked bool
}

// ProviderResult resultado de un inicio de sesión con proveedor.
// Pending indica que se inició el flujo por redirección: no es un fallo.
type ProviderResult struct {
	Session         *entity.Session
	Pending         bool
	RedirectURL     string
	RedirectSession string
}

// ResolveSession punto de entrada del cambio de estado del proveedor: carga la empresa del
// propietario y construye la sesión. Si la suscripción expiró, la pasa a free y adjunta el
// aviso de un solo uso. Devuelve (nil, nil) si no existe perfil de empresa.
func (s *Service) ResolveSession(ctx context.Context, identity *entity.Identity) (*entity.Session, error) {
	if identity == nil || identity.UID == "" {
		return nil, domain.ErrUnauthorized
	}
	company, err := s.companies.Get(ctx, identity.UID)
	if err != nil {
		return nil, domain.Persistence("resolver sesión", err)
	}
	if company == nil {
		s.log.Info().Str("uid", identity.UID).Msg("identidad sin perfil de empresa")
		return nil, nil
	}

	notice, err := s.expireIfNeeded(ctx, company)
	if err != nil {
		s.log.Error().Err(err).Str("company_id", company.ID).Msg("comprobación de expiración")
	}

	sess := s.newSession(entity.AccountOwner)
	sess.AccountID = identity.UID
	sess.CompanyID = identity.UID
	sess.Email = identity.Email
	sess.Name = firstNonEmpty(company.OwnerName, localPart(identity.Email), DefaultOwnerName)
	sess.Role = entity.RoleAdmin
	sess.IsAdmin = true
	sess.Permissions = entity.FullPermissions()
	sess.Company = project(company)
	sess.Status = subscription.Evaluate(company, s.now())
	sess.Provider = identity
	sess.ExpiryNotice = notice
	return sess, s.save(ctx, sess)
}

// ResolveToken verifica un ID token del proveedor y resuelve la sesión.
func (s *Service) ResolveToken(ctx context.Context, idToken string) (*entity.Session, error) {
	identity, err := s.provider.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return s.ResolveSession(ctx, identity)
}

// AuthenticateWithProvider inicio de sesión interactivo con el proveedor. En el primer acceso
// crea una empresa free por defecto. Si el popup fue bloqueado inicia el flujo por redirección
// y devuelve Pending.
func (s *Service) AuthenticateWithProvider(ctx context.Context, in ProviderSignIn) (*ProviderResult, error) {
	if in.PopupBlocked {
		return s.beginRedirect(ctx)
	}
	if strings.TrimSpace(in.IDToken) == "" {
		return nil, domain.ErrInvalidInput
	}

	identity, err := s.provider.VerifyIDToken(ctx, in.IDToken)
	if errors.Is(err, domain.ErrPopupBlocked) {
		return s.beginRedirect(ctx)
	}
	if err != nil {
		s.observer.LoginAttempt("provider", OutcomeError)
		return nil, asProviderError("verificar token", err)
	}
	return s.providerSession(ctx, identity)
}

// CompleteProviderRedirect termina el flujo por redirección iniciado por AuthenticateWithProvider.
func (s *Service) CompleteProviderRedirect(ctx context.Context, in RedirectCompletion) (*ProviderResult, error) {
	identity, err := s.provider.CompleteRedirect(ctx, in)
	if err != nil {
		s.observer.LoginAttempt("provider", OutcomeError)
		return nil, asProviderError("completar redirección", err)
	}
	return s.providerSession(ctx, identity)
}

func (s *Service) beginRedirect(ctx context.Context) (*ProviderResult, error) {
	start, err := s.provider.BeginRedirect(ctx)
	if err != nil {
		s.observer.LoginAttempt("provider", OutcomeError)
		return nil, asProviderError("iniciar redirección", err)
	}
	s.observer.LoginAttempt("provider", OutcomePending)
	return &ProviderResult{Pending: true, RedirectURL: start.URL, RedirectSession: start.SessionID}, nil
}

func (s *Service) providerSession(ctx context.Context, identity *entity.Identity) (*ProviderResult, error) {
	if err := s.ensureDefaultCompany(ctx, identity); err != nil {
		s.observer.LoginAttempt("provider", OutcomeError)
		return nil, err
	}
	sess, err := s.ResolveSession(ctx, identity)
	if err != nil {
		s.observer.LoginAttempt("provider", OutcomeError)
		return nil, err
	}
	s.observer.LoginAttempt("provider", OutcomeSuccess)
	return &ProviderResult{Session: sess}, nil
}

// ensureDefaultCompany crea la empresa free por defecto en el primer acceso con proveedor.
func (s *Service) ensureDefaultCompany(ctx context.Context, identity *entity.Identity) error {
	existing, err := s.companies.Get(ctx, identity.UID)
	if err != nil {
		return domain.Persistence("empresa por defecto", err)
	}
	if existing != nil {
		return nil
	}

	local := ""
	if identity.Email != "" {
		local = localPart(identity.Email)
	}
	c := &entity.Company{
		ID:            identity.UID,
		Name:          firstNonEmpty(identity.DisplayName, local, entity.DefaultCompanyName),
		Email:         identity.Email,
		Logo:          identity.PhotoURL,
		OwnerEmail:    identity.Email,
		OwnerName:     firstNonEmpty(identity.DisplayName, local, DefaultOwnerName),
		EmailVerified: identity.EmailVerified,
	}
	subscription.NewFreeTier(c, s.now())
	if err := s.companies.Create(ctx, c); err != nil {
		return domain.Persistence("crear empresa por defecto", err)
	}
	s.log.Info().Str("company_id", c.ID).Msg("empresa por defecto creada")
	return nil
}

// ── Registro y correo ─────────────────────────────────────────────────────────

// Register crea la cuenta en el proveedor, envía el email de verificación y guarda la empresa
// en plan free. Los errores se propagan al llamador.
func (s *Service) Register(ctx context.Context, email, password string, company entity.Company) (*entity.Session, error) {
	identity, err := s.provider.CreateAccount(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.provider.SendEmailVerification(ctx, identity.IDToken); err != nil {
		return nil, err
	}

	company.ID = identity.UID
	company.OwnerEmail = email
	company.OwnerName = localPart(email)
	company.EmailVerified = false
	subscription.NewFreeTier(&company, s.now())
	if err := s.companies.Create(ctx, &company); err != nil {
		return nil, domain.Persistence("registrar empresa", err)
	}
	return s.ResolveSession(ctx, identity)
}

// RegisterWithProvider registra la empresa de una identidad del proveedor, sobrescribiendo
// cualquier perfil previo.
func (s *Service) RegisterWithProvider(ctx context.Context, idToken string, company entity.Company) (*entity.Session, error) {
	identity, err := s.provider.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, asProviderError("verificar token", err)
	}

	company.ID = identity.UID
	company.OwnerEmail = identity.Email
	company.OwnerName = firstNonEmpty(identity.DisplayName, localPart(identity.Email), DefaultOwnerName)
	company.EmailVerified = identity.EmailVerified
	subscription.NewFreeTier(&company, s.now())
	if err := s.companies.Create(ctx, &company); err != nil {
		return nil, domain.Persistence("registrar empresa", err)
	}
	return s.ResolveSession(ctx, identity)
}

// SendEmailVerification reenvía el email de verificación de la identidad de la sesión.
// idToken opcional sustituye al guardado en la sesión (caduca a la hora).
func (s *Service) SendEmailVerification(ctx context.Context, sess *entity.Session, idToken string) error {
	if idToken == "" && sess != nil && sess.Provider != nil {
		idToken = sess.Provider.IDToken
	}
	if idToken == "" {
		return domain.ErrUnauthorized
	}
	return s.provider.SendEmailVerification(ctx, idToken)
}

// SendPasswordReset envía el email de restablecimiento de contraseña.
func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return domain.ErrInvalidInput
	}
	return s.provider.SendPasswordReset(ctx, strings.TrimSpace(email))
}

// asProviderError garantiza que el error se clasifique como fallo del proveedor.
func asProviderError(op string, err error) error {
	if isAny(err, domain.ErrProviderError, domain.ErrInvalidCredentials) {
		return err
	}
	return domain.Provider(op, err)
}
