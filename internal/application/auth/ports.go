package auth

import (
	"context"

	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
)

// IdentityProvider puerto hacia el proveedor de identidad externo (Firebase Auth).
//
// Las implementaciones envuelven sus fallos con domain.ErrProviderError; un rechazo de
// credenciales se devuelve como domain.ErrInvalidCredentials y un email ya registrado
// como domain.ErrEmailAlreadyExists.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*entity.Identity, error)
	VerifyIDToken(ctx context.Context, idToken string) (*entity.Identity, error)
	BeginRedirect(ctx context.Context) (*RedirectStart, error)
	CompleteRedirect(ctx context.Context, in RedirectCompletion) (*entity.Identity, error)
	CreateAccount(ctx context.Context, email, password string) (*entity.Identity, error)
	SendEmailVerification(ctx context.Context, idToken string) error
	SendPasswordReset(ctx context.Context, email string) error
	SignOut(ctx context.Context, uid string) error
}

// RedirectStart datos para iniciar el flujo por redirección.
type RedirectStart struct {
	URL       string
	SessionID string
}

// RedirectCompletion datos recibidos al volver del proveedor.
type RedirectCompletion struct {
	RequestURI string // URL completa de retorno con el resultado del proveedor
	PostBody   string // cuerpo del POST de retorno, si el proveedor usa form_post
	SessionID  string // SessionID devuelto por BeginRedirect
}

// SessionStore almacén de sesiones del servidor (Redis).
type SessionStore interface {
	Save(ctx context.Context, session *entity.Session) error
	// Get devuelve (nil, nil) si la sesión no existe o expiró.
	Get(ctx context.Context, id string) (*entity.Session, error)
	Delete(ctx context.Context, id string) error
}

// Observer recibe eventos de autenticación para métricas.
type Observer interface {
	LoginAttempt(method, outcome string)
	SubscriptionDowngraded()
}

type nopObserver struct{}

func (nopObserver) LoginAttempt(string, string) {}
func (nopObserver) SubscriptionDowngraded()     {}

// Resultados de intento de login reportados al Observer.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeBlocked = "blocked"
	OutcomePending = "pending"
	OutcomeError   = "error"
)
