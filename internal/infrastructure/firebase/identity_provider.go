package firebase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"firebase.google.com/go/auth"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	appauth "github.com/Facture-2/Facture5-V2/internal/application/auth"
	"github.com/Facture-2/Facture5-V2/internal/domain"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
)

// Proveedor federado del flujo por redirección.
const (
	redirectProviderID = "google.com"
	redirectScopes     = "openid email profile"
)

// Códigos de error de Identity Toolkit que significan credenciales rechazadas.
var credentialErrorCodes = []string{
	"INVALID_PASSWORD",
	"EMAIL_NOT_FOUND",
	"INVALID_LOGIN_CREDENTIALS",
	"INVALID_EMAIL",
	"USER_DISABLED",
	"INVALID_ID_TOKEN",
}

var _ appauth.IdentityProvider = (*IdentityProvider)(nil)

// IdentityProvider implementa auth.IdentityProvider: Admin SDK para verificar tokens,
// leer usuarios y revocar sesiones; Identity Toolkit (REST) para las operaciones que en
// el cliente hace el SDK web (contraseña, alta, emails, redirección OAuth).
type IdentityProvider struct {
	auth        *auth.Client
	toolkit     *identitytoolkit.RelyingpartyService
	redirectURI string
}

// NewIdentityProvider construye el adaptador.
func NewIdentityProvider(ctx context.Context, authClient *auth.Client, cfg Config) (*IdentityProvider, error) {
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("firebase: identity toolkit: %w", err)
	}
	return &IdentityProvider{auth: authClient, toolkit: svc.Relyingparty, redirectURI: cfg.RedirectURI}, nil
}

// SignInWithPassword verifica email y contraseña.
func (p *IdentityProvider) SignInWithPassword(ctx context.Context, email, password string) (*entity.Identity, error) {
	resp, err := p.toolkit.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, classify("verifyPassword", err)
	}

	identity := &entity.Identity{
		UID:         resp.LocalId,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		PhotoURL:    resp.PhotoUrl,
		IDToken:     resp.IdToken,
	}
	p.enrich(ctx, identity)
	return identity, nil
}

// VerifyIDToken valida el ID token emitido por el SDK del cliente.
func (p *IdentityProvider) VerifyIDToken(ctx context.Context, idToken string) (*entity.Identity, error) {
	tok, err := p.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCredentials, err)
	}

	identity := &entity.Identity{UID: tok.UID, IDToken: idToken}
	if email, ok := tok.Claims["email"].(string); ok {
		identity.Email = email
	}
	if verified, ok := tok.Claims["email_verified"].(bool); ok {
		identity.EmailVerified = verified
	}
	p.enrich(ctx, identity)
	return identity, nil
}

// BeginRedirect obtiene la URL de autorización del proveedor federado.
func (p *IdentityProvider) BeginRedirect(ctx context.Context) (*appauth.RedirectStart, error) {
	resp, err := p.toolkit.CreateAuthUri(&identitytoolkit.IdentitytoolkitRelyingpartyCreateAuthUriRequest{
		ProviderId:      redirectProviderID,
		ContinueUri:     p.redirectURI,
		OauthScope:      redirectScopes,
		CustomParameter: map[string]string{"prompt": "select_account"},
	}).Context(ctx).Do()
	if err != nil {
		return nil, classify("createAuthUri", err)
	}
	if resp.AuthUri == "" {
		return nil, domain.Provider("createAuthUri", errors.New("respuesta sin authUri"))
	}
	return &appauth.RedirectStart{URL: resp.AuthUri, SessionID: resp.SessionId}, nil
}

// CompleteRedirect intercambia el resultado de la redirección por una identidad.
func (p *IdentityProvider) CompleteRedirect(ctx context.Context, in appauth.RedirectCompletion) (*entity.Identity, error) {
	resp, err := p.toolkit.VerifyAssertion(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyAssertionRequest{
		RequestUri:        in.RequestURI,
		PostBody:          in.PostBody,
		SessionId:         in.SessionID,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, classify("verifyAssertion", err)
	}
	if resp.ErrorMessage != "" {
		return nil, domain.Provider("verifyAssertion", errors.New(resp.ErrorMessage))
	}
	return &entity.Identity{
		UID:           resp.LocalId,
		Email:         resp.Email,
		DisplayName:   firstNonEmpty(resp.DisplayName, resp.FullName),
		PhotoURL:      resp.PhotoUrl,
		EmailVerified: resp.EmailVerified,
		IDToken:       resp.IdToken,
	}, nil
}

// CreateAccount da de alta la cuenta y abre sesión para obtener un ID token.
func (p *IdentityProvider) CreateAccount(ctx context.Context, email, password string) (*entity.Identity, error) {
	if _, err := p.toolkit.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do(); err != nil {
		return nil, classify("signupNewUser", err)
	}
	return p.SignInWithPassword(ctx, email, password)
}

// SendEmailVerification envía el email de verificación al titular del ID token.
func (p *IdentityProvider) SendEmailVerification(ctx context.Context, idToken string) error {
	_, err := p.toolkit.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "VERIFY_EMAIL",
		IdToken:     idToken,
	}).Context(ctx).Do()
	if err != nil {
		return classify("sendEmailVerification", err)
	}
	return nil
}

// SendPasswordReset envía el email de restablecimiento.
func (p *IdentityProvider) SendPasswordReset(ctx context.Context, email string) error {
	_, err := p.toolkit.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "PASSWORD_RESET",
		Email:       email,
	}).Context(ctx).Do()
	if err != nil {
		return classify("sendPasswordReset", err)
	}
	return nil
}

// SignOut revoca los refresh tokens del usuario.
func (p *IdentityProvider) SignOut(ctx context.Context, uid string) error {
	if err := p.auth.RevokeRefreshTokens(ctx, uid); err != nil {
		return domain.Provider("revokeRefreshTokens", err)
	}
	return nil
}

// enrich completa la identidad con el registro del usuario. Un fallo de lectura no invalida
// una identidad ya verificada.
func (p *IdentityProvider) enrich(ctx context.Context, identity *entity.Identity) {
	u, err := p.auth.GetUser(ctx, identity.UID)
	if err != nil || u == nil || u.UserInfo == nil {
		return
	}
	identity.Email = firstNonEmpty(identity.Email, u.Email)
	identity.DisplayName = firstNonEmpty(identity.DisplayName, u.DisplayName)
	identity.PhotoURL = firstNonEmpty(identity.PhotoURL, u.PhotoURL)
	identity.EmailVerified = u.EmailVerified
}

// classify traduce los errores de Identity Toolkit a los errores del dominio.
func classify(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if hasCode(msg, "EMAIL_EXISTS") {
			return domain.ErrEmailAlreadyExists
		}
		if hasCode(msg, credentialErrorCodes...) {
			return fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, msg)
		}
	}
	return domain.Provider(op, err)
}

// hasCode indica si el mensaje empieza por alguno de los códigos ("CODE" o "CODE : detalle").
func hasCode(msg string, codes ...string) bool {
	for _, c := range codes {
		if msg == c || strings.HasPrefix(msg, c+" ") || strings.HasPrefix(msg, c+":") {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
