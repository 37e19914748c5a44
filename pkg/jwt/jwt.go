package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims incluye los claims estándar JWT más la referencia a la sesión del servidor.
// El token solo identifica la sesión; el estado vive en el session store.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
	AccountID string `json:"account_id"`
	CompanyID string `json:"company_id,omitempty"`
	Kind      string `json:"kind"` // privileged | owner | managed
}

// SessionToken datos extraídos de un token válido.
type SessionToken struct {
	SessionID string
	AccountID string
	CompanyID string
	Kind      string
	ExpiresAt time.Time
}

// Generate genera un token JWT firmado que referencia la sesión indicada.
func Generate(secret, issuer string, tok SessionToken, expMinutes int) (string, error) {
	if secret == "" {
		return "", errors.New("jwt: secret vacío")
	}
	if tok.SessionID == "" {
		return "", errors.New("jwt: session id vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   tok.AccountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		SessionID: tok.SessionID,
		AccountID: tok.AccountID,
		CompanyID: tok.CompanyID,
		Kind:      tok.Kind,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve los datos de sesión.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func Parse(secret, tokenString string) (*SessionToken, error) {
	if secret == "" {
		return nil, errors.New("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, errors.New("claims inválidos")
	}
	out := &SessionToken{
		SessionID: claims.SessionID,
		AccountID: claims.AccountID,
		CompanyID: claims.CompanyID,
		Kind:      claims.Kind,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
