// Package token issues and validates tablegate auth tokens.
//
// Tokens are HS256 JWTs carrying the user id (sub), organization, email,
// and global role. The signing secret comes from TABLEGATE_JWT_SECRET.
package token

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tablegate/tablegate/pkg/model"
)

// SecretEnvVar names the environment variable holding the signing secret.
const SecretEnvVar = "TABLEGATE_JWT_SECRET"

// Claims are the tablegate JWT claims.
type Claims struct {
	OrganizationID string `json:"org,omitempty"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	jwt.RegisteredClaims
}

// SecretFromEnv reads the signing secret from the environment.
func SecretFromEnv() ([]byte, error) {
	secret, ok := os.LookupEnv(SecretEnvVar)
	if !ok || secret == "" {
		return nil, fmt.Errorf("%s environment variable is required", SecretEnvVar)
	}
	return []byte(secret), nil
}

// Issue signs a token for the user with the given lifetime.
func Issue(user *model.User, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if user.OrganizationID != nil {
		claims.OrganizationID = user.OrganizationID.String()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Parse validates a token string and returns its claims.
func Parse(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	return claims, nil
}
