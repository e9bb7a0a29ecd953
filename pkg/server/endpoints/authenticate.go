package endpoints

import (
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tablegate/tablegate/pkg/audit"
	"github.com/tablegate/tablegate/pkg/observability"
	"github.com/tablegate/tablegate/pkg/server"
	"github.com/tablegate/tablegate/pkg/server/store"
	"github.com/tablegate/tablegate/pkg/token"
)

// LoginRequest carries the credentials of a login attempt
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// RegisterAuthEndpoints registers the login endpoint
func RegisterAuthEndpoints(s *server.Server) {
	// POST /api/auth/login - no auth required
	s.Router.HandleFunc("/api/auth/login",
		handleLogin(s.UsersStore, s.TokenSecret, s.TokenTTL, s.Metrics)).Methods("POST")
}

func handleLogin(users store.UsersStore, secret []byte, ttl time.Duration, metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Email == "" || req.Password == "" {
			respondWithError(w, http.StatusBadRequest, "email and password required")
			return
		}

		fail := func(reason string) {
			metrics.RecordLogin(false)
			audit.Log(audit.AuthenticateEvent{
				Email:        req.Email,
				ClientIP:     remoteIP(r),
				Success:      false,
				ErrorMessage: reason,
			})
			// Same response for unknown user and bad password.
			respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		}

		user, err := users.UserByEmail(req.Email)
		if err != nil {
			fail("unknown user")
			return
		}
		if user.PasswordHash == "" {
			fail("no password set")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			fail("bad password")
			return
		}

		signed, err := token.Issue(user, secret, ttl)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to issue token")
			return
		}

		metrics.RecordLogin(true)
		audit.Log(audit.AuthenticateEvent{
			Email:    req.Email,
			ClientIP: remoteIP(r),
			Success:  true,
		})

		respondWithJSON(w, http.StatusOK, LoginResponse{
			Token:     signed,
			ExpiresIn: int64(ttl.Seconds()),
		})
	}
}
