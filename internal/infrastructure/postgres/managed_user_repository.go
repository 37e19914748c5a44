package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Facture-2/Facture5-V2/internal/domain"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/internal/domain/repository"
)

// Asegura que ManagedUserRepo implementa repository.ManagedUserRepository.
var _ repository.ManagedUserRepository = (*ManagedUserRepo)(nil)

// ManagedUserRepo implementación del puerto ManagedUserRepository.
type ManagedUserRepo struct {
	pool *pgxpool.Pool
}

// NewManagedUserRepository construye el adaptador de usuarios gestionados.
func NewManagedUserRepository(pool *pgxpool.Pool) *ManagedUserRepo {
	return &ManagedUserRepo{pool: pool}
}

// ListActiveByEmail devuelve los usuarios activos con ese email en cualquier empresa.
func (r *ManagedUserRepo) ListActiveByEmail(ctx context.Context, email string) ([]entity.ManagedUser, error) {
	query := `
		SELECT id, name, email, password_hash, status, permissions, entreprise_id, last_login, created_at
		FROM managed_users
		WHERE lower(email) = lower($1) AND status = $2
		ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, query, strings.TrimSpace(email), entity.ManagedUserActive)
	if err != nil {
		return nil, fmt.Errorf("list managed users: %w", err)
	}
	defer rows.Close()

	var out []entity.ManagedUser
	for rows.Next() {
		var (
			u         entity.ManagedUser
			permsRaw  []byte
			lastLogin *time.Time
		)
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Status, &permsRaw, &u.EntrepriseID,
			&lastLogin, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan managed user: %w", err)
		}
		u.Permissions = entity.Permissions{}
		if len(permsRaw) > 0 {
			if err := json.Unmarshal(permsRaw, &u.Permissions); err != nil {
				return nil, fmt.Errorf("decode permissions: %w", err)
			}
		}
		u.LastLogin = derefTime(lastLogin)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list managed users: %w", err)
	}
	return out, nil
}

// TouchLastLogin registra la fecha del último acceso.
func (r *ManagedUserRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE managed_users SET last_login = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Create inserta el usuario con el email en minúsculas. Genera el id si viene vacío.
// El email es único por empresa.
func (r *ManagedUserRepo) Create(ctx context.Context, u *entity.ManagedUser) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	perms := u.Permissions
	if perms == nil {
		perms = entity.Permissions{}
	}
	permsRaw, err := json.Marshal(perms)
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}
	query := `
		INSERT INTO managed_users (id, name, email, password_hash, status, permissions, entreprise_id, last_login, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.pool.Exec(ctx, query,
		u.ID, u.Name, strings.ToLower(strings.TrimSpace(u.Email)), u.PasswordHash, u.Status, permsRaw, u.EntrepriseID,
		nullTime(u.LastLogin), u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert managed user: %w", err)
	}
	return nil
}
