package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/Facture-2/Facture5-V2/pkg/jwt"
)

const (
	testSecret = "test-secret-key-for-unit-tests"
	testIssuer = "facture-api-test"
)

func sampleToken() pkgjwt.SessionToken {
	return pkgjwt.SessionToken{
		SessionID: "sess-1",
		AccountID: "uid-1",
		CompanyID: "uid-1",
		Kind:      "owner",
	}
}

func TestJWT_GenerateAndParse_ConservaSesion(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testIssuer, sampleToken(), 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	out, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", out.SessionID)
	assert.Equal(t, "uid-1", out.AccountID)
	assert.Equal(t, "uid-1", out.CompanyID)
	assert.Equal(t, "owner", out.Kind)
	assert.False(t, out.ExpiresAt.IsZero())
}

func TestJWT_TokenExpirado_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testIssuer, sampleToken(), -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestJWT_SecretIncorrecto_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testIssuer, sampleToken(), 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err)
}

func TestJWT_SinSessionID_NoGenera(t *testing.T) {
	_, err := pkgjwt.Generate(testSecret, testIssuer, pkgjwt.SessionToken{AccountID: "x"}, 60)
	assert.Error(t, err)
}
