// Package redisstore implementa el almacén de sesiones del servidor sobre Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Facture-2/Facture5-V2/internal/application/auth"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
)

const keyPrefix = "session:"

// Options conexión a Redis.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient crea el cliente y verifica la conexión con un PING.
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redisstore: ping: %w", err)
	}
	return client, nil
}

// SessionStore implementa auth.SessionStore. Cada sesión es un JSON bajo session:<id>
// con expiración deslizante: cada Save renueva el TTL.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ auth.SessionStore = (*SessionStore)(nil)

// NewSessionStore construye el almacén.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

// Save serializa y guarda la sesión.
func (s *SessionStore) Save(ctx context.Context, session *entity.Session) error {
	if session == nil || session.ID == "" {
		return errors.New("redisstore: sesión sin id")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redisstore: serializar sesión: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+session.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redisstore: guardar sesión: %w", err)
	}
	return nil
}

// Get devuelve (nil, nil) si la sesión no existe o expiró.
func (s *SessionStore) Get(ctx context.Context, id string) (*entity.Session, error) {
	if id == "" {
		return nil, nil
	}
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redisstore: leer sesión: %w", err)
	}

	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("redisstore: sesión corrupta: %w", err)
	}
	return &session, nil
}

// Delete elimina la sesión; borrar una sesión inexistente no es error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redisstore: borrar sesión: %w", err)
	}
	return nil
}
