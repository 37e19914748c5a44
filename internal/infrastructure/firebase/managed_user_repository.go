package firebase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/Facture-2/Facture5-V2/internal/domain"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/internal/domain/repository"
)

var _ repository.ManagedUserRepository = (*ManagedUserRepo)(nil)

// ManagedUserRepo usuarios gestionados en la colección managedUsers.
type ManagedUserRepo struct {
	client *firestore.Client
}

// NewManagedUserRepository construye el adaptador.
func NewManagedUserRepository(client *firestore.Client) *ManagedUserRepo {
	return &ManagedUserRepo{client: client}
}

// ListActiveByEmail consulta por (email, status = active) en todas las empresas. La contraseña
// no forma parte de la consulta: el hash se compara en la capa de aplicación. Los emails se
// escriben en minúsculas; la variante tal cual cubre documentos anteriores a esa normalización.
func (r *ManagedUserRepo) ListActiveByEmail(ctx context.Context, email string) ([]entity.ManagedUser, error) {
	iter := r.client.Collection(collectionManagedUsers).
		Where(fieldMUEmail, "in", emailVariants(email)).
		Where(fieldMUStatus, "==", entity.ManagedUserActive).
		Documents(ctx)
	defer iter.Stop()

	var out []entity.ManagedUser
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list managed users: %w", err)
		}
		out = append(out, *decodeManagedUser(snap.Ref.ID, snap.Data()))
	}
	return out, nil
}

// TouchLastLogin actualiza lastLogin del usuario.
func (r *ManagedUserRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.client.Collection(collectionManagedUsers).Doc(id).Update(ctx, []firestore.Update{
		{Path: fieldMULastLogin, Value: formatISO(at)},
	})
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

// Create escribe el usuario con el email en minúsculas; genera el id si viene vacío.
// Rechaza un email ya registrado en la misma empresa.
func (r *ManagedUserRepo) Create(ctx context.Context, u *entity.ManagedUser) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = normalizeEmail(u.Email)
	existing, err := r.ListActiveByEmail(ctx, u.Email)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.EntrepriseID == u.EntrepriseID && e.ID != u.ID {
			return domain.ErrEmailAlreadyExists
		}
	}
	if _, err := r.client.Collection(collectionManagedUsers).Doc(u.ID).Set(ctx, encodeManagedUser(u)); err != nil {
		return fmt.Errorf("create managed user: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// emailVariants valores del filtro "in": el email normalizado y, si difiere, el recibido.
func emailVariants(email string) []string {
	trimmed := strings.TrimSpace(email)
	lower := strings.ToLower(trimmed)
	if lower == trimmed {
		return []string{lower}
	}
	return []string{lower, trimmed}
}
