package middleware

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tablegate/tablegate/pkg/identity"
	"github.com/tablegate/tablegate/pkg/permission"
	"github.com/tablegate/tablegate/pkg/token"
)

// Authenticator is middleware that validates bearer tokens and attaches the
// resulting identity to the request context.
type Authenticator struct {
	Secret []byte
}

// NewAuthenticator creates a new token authenticator middleware
func NewAuthenticator(secret []byte) *Authenticator {
	return &Authenticator{Secret: secret}
}

// Middleware returns an HTTP middleware that validates bearer tokens
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		if len(authHeader) == 0 {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Authorization missing"))
			return
		}

		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Malformed authorization header"))
			return
		}

		claims, err := token.Parse(tokenStr, a.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte("Token expired"))
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Invalid token"))
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Malformed subject claim"))
			return
		}

		id := &identity.Identity{
			UserID: userID,
			Email:  claims.Email,
			Role:   permission.Role(claims.Role),
		}
		if claims.OrganizationID != "" {
			if orgID, err := uuid.Parse(claims.OrganizationID); err == nil {
				id.OrganizationID = &orgID
			}
		}
		if claims.IssuedAt != nil {
			id.IssuedAt = claims.IssuedAt.Time
		}
		if claims.ExpiresAt != nil {
			id.ExpiresAt = claims.ExpiresAt.Time
		}

		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			id.WithRemoteIP(net.ParseIP(host))
		}

		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}
