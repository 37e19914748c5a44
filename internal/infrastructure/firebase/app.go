// Package firebase implementa los adaptadores sobre Firebase: proveedor de identidad
// (Admin SDK + Identity Toolkit) y repositorios sobre Firestore.
package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebasesdk "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Config conexión al proyecto de Firebase.
type Config struct {
	ProjectID       string
	CredentialsFile string // vacío: credenciales por defecto de la aplicación
	APIKey          string // clave web para Identity Toolkit
	RedirectURI     string // continueUri del flujo por redirección
}

// Clients clientes compartidos del proyecto.
type Clients struct {
	Auth      *auth.Client
	Firestore *firestore.Client
}

// NewClients inicializa la app de Firebase y sus clientes de Auth y Firestore.
func NewClients(ctx context.Context, cfg Config) (*Clients, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebasesdk.NewApp(ctx, &firebasesdk.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase: inicializar app: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: cliente auth: %w", err)
	}
	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: cliente firestore: %w", err)
	}
	return &Clients{Auth: authClient, Firestore: fs}, nil
}

// Close libera las conexiones de Firestore.
func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
