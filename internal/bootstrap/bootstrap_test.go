package bootstrap_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Facture-2/Facture5-V2/internal/bootstrap"
	"github.com/Facture-2/Facture5-V2/pkg/config"
)

func TestAuthConfig_TraduceConfiguracion(t *testing.T) {
	cfg := &config.Config{
		JWT:      config.JWTConfig{Secret: "s", Expiration: 90, Issuer: "facture"},
		Operator: config.OperatorConfig{Email: "ops@facture.test", PasswordHash: "$2a$10$x", Name: "Ops"},
		Session:  config.SessionConfig{RefreshInterval: 2 * time.Minute},
	}

	got := bootstrap.AuthConfig(cfg)

	assert.Equal(t, "s", got.JWT.Secret)
	assert.Equal(t, 90, got.JWT.ExpMinutes)
	assert.Equal(t, "facture", got.JWT.Issuer)
	assert.Equal(t, "ops@facture.test", got.Operator.Email)
	assert.Equal(t, "$2a$10$x", got.Operator.PasswordHash)
	assert.Equal(t, 2*time.Minute, got.RefreshInterval)
}

func TestFirebaseConfig_TraduceConfiguracion(t *testing.T) {
	cfg := &config.Config{Firebase: config.FirebaseConfig{
		ProjectID: "demo", CredentialsFile: "sa.json", APIKey: "key", RedirectURI: "http://localhost/cb",
	}}

	got := bootstrap.FirebaseConfig(cfg)

	assert.Equal(t, "demo", got.ProjectID)
	assert.Equal(t, "sa.json", got.CredentialsFile)
	assert.Equal(t, "key", got.APIKey)
	assert.Equal(t, "http://localhost/cb", got.RedirectURI)
}
