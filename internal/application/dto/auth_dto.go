package dto

import (
	"time"

	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
)

// LoginRequest entrada de POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest entrada de POST /api/auth/register: credenciales y datos iniciales de la empresa.
type RegisterRequest struct {
	Email    string                `json:"email" validate:"required,email"`
	Password string                `json:"password" validate:"required,min=6"`
	Company  CompanyProfileRequest `json:"company" validate:"required"`
}

// RegisterWithProviderRequest entrada de POST /api/auth/register/provider.
type RegisterWithProviderRequest struct {
	IDToken string                `json:"id_token" validate:"required"`
	Company CompanyProfileRequest `json:"company" validate:"required"`
}

// ProviderSignInRequest entrada de POST /api/auth/provider. Con popup_blocked=true el
// id_token se ignora y se inicia el flujo por redirección.
type ProviderSignInRequest struct {
	IDToken      string `json:"id_token" validate:"required_without=PopupBlocked"`
	PopupBlocked bool   `json:"popup_blocked"`
}

// ProviderCallbackRequest entrada de POST /api/auth/provider/callback.
type ProviderCallbackRequest struct {
	RequestURI      string `json:"request_uri" validate:"required,url"`
	PostBody        string `json:"post_body"`
	RedirectSession string `json:"redirect_session" validate:"required"`
}

// ResolveSessionRequest entrada de POST /api/auth/session (cambio de estado del proveedor).
type ResolveSessionRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// PasswordResetRequest entrada de POST /api/auth/password-reset.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyEmailRequest entrada opcional de POST /api/session/verify-email; un id_token fresco
// sustituye al guardado en la sesión.
type VerifyEmailRequest struct {
	IDToken string `json:"id_token"`
}

// AuthResponse salida de los endpoints de autenticación.
//
// Pending=true con redirect_url: flujo por redirección en curso (no es un error).
// Pending=true sin redirect_url: identidad verificada sin perfil de empresa.
type AuthResponse struct {
	Token           string           `json:"token,omitempty"`
	Session         *SessionResponse `json:"session,omitempty"`
	Pending         bool             `json:"pending,omitempty"`
	RedirectURL     string           `json:"redirect_url,omitempty"`
	RedirectSession string           `json:"redirect_session,omitempty"`
}

// SessionResponse sesión expuesta al cliente.
type SessionResponse struct {
	ID            string                    `json:"id"`
	Kind          string                    `json:"kind"`
	State         string                    `json:"state"`
	AccountID     string                    `json:"account_id"`
	Email         string                    `json:"email"`
	Name          string                    `json:"name"`
	Role          string                    `json:"role"`
	IsAdmin       bool                      `json:"is_admin"`
	EmailVerified bool                      `json:"email_verified"`
	Permissions   map[string]bool           `json:"permissions"`
	Company       CompanyResponse           `json:"company"`
	Subscription  entity.SubscriptionStatus `json:"subscription_status"`
	ExpiryNotice  *entity.ExpiryNotice      `json:"expiry_notice,omitempty"`
}

// NewSessionResponse proyecta la sesión del servidor a la respuesta HTTP.
func NewSessionResponse(s *entity.Session) *SessionResponse {
	if s == nil {
		return nil
	}
	perms := make(map[string]bool, len(entity.AllPermissions))
	for _, p := range entity.AllPermissions {
		perms[p] = s.Can(p)
	}
	verified := s.Company.EmailVerified
	if s.Provider != nil {
		verified = s.Provider.EmailVerified
	}
	return &SessionResponse{
		ID:            s.ID,
		Kind:          string(s.Kind),
		State:         string(s.State),
		AccountID:     s.AccountID,
		Email:         s.Email,
		Name:          s.Name,
		Role:          s.Role,
		IsAdmin:       s.IsAdmin,
		Permissions:   perms,
		Company:       NewCompanyResponse(&s.Company),
		Subscription:  s.Status,
		ExpiryNotice:  s.ExpiryNotice,
		EmailVerified: verified,
	}
}

// SubscriptionCheckResponse salida de POST /api/subscription/check.
type SubscriptionCheckResponse struct {
	Downgraded bool                      `json:"downgraded"`
	ExpiredAt  *time.Time                `json:"expired_at,omitempty"`
	Status     entity.SubscriptionStatus `json:"subscription_status"`
	Session    *SessionResponse          `json:"session"`
}
