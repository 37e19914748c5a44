package entity

import "time"

// Estados de un usuario gestionado.
const (
	ManagedUserActive   = "active"
	ManagedUserInactive = "inactive"
)

// Permisos con nombre que puede tener un usuario gestionado.
const (
	PermDashboard          = "dashboard"
	PermInvoices           = "invoices"
	PermQuotes             = "quotes"
	PermClients            = "clients"
	PermProducts           = "products"
	PermSuppliers          = "suppliers"
	PermStockManagement    = "stockManagement"
	PermSupplierManagement = "supplierManagement"
	PermHRManagement       = "hrManagement"
	PermReports            = "reports"
	PermSettings           = "settings"
	PermProjectManagement  = "projectManagement"
)

// AllPermissions lista de permisos conocidos, en el orden en que se muestran.
var AllPermissions = []string{
	PermDashboard, PermInvoices, PermQuotes, PermClients, PermProducts, PermSuppliers,
	PermStockManagement, PermSupplierManagement, PermHRManagement, PermReports,
	PermSettings, PermProjectManagement,
}

// Permissions conjunto de permisos con nombre (booleanos).
type Permissions map[string]bool

// Allows indica si el permiso está concedido.
func (p Permissions) Allows(name string) bool {
	return p[name]
}

// FullPermissions concede todos los permisos (propietario y operador).
func FullPermissions() Permissions {
	p := make(Permissions, len(AllPermissions))
	for _, name := range AllPermissions {
		p[name] = true
	}
	return p
}

// ManagedUser usuario delegado creado por el propietario de una empresa.
// Para la sesión es de solo lectura salvo LastLogin.
type ManagedUser struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcrypt
	Status       string // active | inactive
	Permissions  Permissions
	EntrepriseID string
	LastLogin    time.Time
	CreatedAt    time.Time
}
