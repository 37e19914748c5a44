package entity

import "time"

// AccountKind tipo de cuenta resuelta en la autenticación.
type AccountKind string

const (
	AccountPrivileged AccountKind = "privileged"
	AccountOwner      AccountKind = "owner"
	AccountManaged    AccountKind = "managed"
)

// SessionState estado de una sesión autenticada.
type SessionState string

const (
	SessionAuthenticated SessionState = "authenticated"
	SessionBlocked       SessionState = "blocked"
)

// Roles expuestos al cliente.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Identity identidad devuelta por el proveedor (Firebase Auth).
type Identity struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name,omitempty"`
	PhotoURL      string `json:"photo_url,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	IDToken       string `json:"id_token,omitempty"`
}

// SubscriptionStatus estado derivado de la suscripción. Nunca se persiste.
type SubscriptionStatus struct {
	IsExpired              bool `json:"is_expired"`
	IsExpiringSoon         bool `json:"is_expiring_soon"`
	DaysRemaining          int  `json:"days_remaining"`
	ShouldBlockUsers       bool `json:"should_block_users"`
	ShouldShowNotification bool `json:"should_show_notification"`
}

// ExpiryNotice aviso de un solo uso que se muestra tras el paso automático a free.
type ExpiryNotice struct {
	ExpiredAt    time.Time `json:"expired_at"`
	DowngradedAt time.Time `json:"downgraded_at"`
}

// Session sesión del servidor. Se crea al autenticar y se destruye en logout.
type Session struct {
	ID          string       `json:"id"`
	Kind        AccountKind  `json:"kind"`
	State       SessionState `json:"state"`
	AccountID   string       `json:"account_id"`
	CompanyID   string       `json:"company_id,omitempty"`
	Email       string       `json:"email"`
	Name        string       `json:"name"`
	Role        string       `json:"role"`
	IsAdmin     bool         `json:"is_admin"`
	Permissions Permissions  `json:"permissions"`

	Company  Company            `json:"company"`
	Status   SubscriptionStatus `json:"status"`
	Provider *Identity          `json:"provider,omitempty"`

	ExpiryNotice *ExpiryNotice `json:"expiry_notice,omitempty"`

	CreatedAt   time.Time `json:"created_at"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// Blocked indica si la sesión está bloqueada por la suscripción.
func (s *Session) Blocked() bool {
	return s != nil && s.State == SessionBlocked
}

// Can indica si la sesión tiene el permiso indicado. Propietario y operador tienen todos.
func (s *Session) Can(permission string) bool {
	if s == nil {
		return false
	}
	if s.Kind != AccountManaged {
		return true
	}
	return s.Permissions.Allows(permission)
}
