package endpoints

import (
	"net/http"

	"github.com/tablegate/tablegate/pkg/server"
)

// WhoamiResponse represents the response from the /api/whoami endpoint
type WhoamiResponse struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id,omitempty"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	TokenIAT       int64  `json:"token_iat,omitempty"`
}

// RegisterWhoamiEndpoint registers the /api/whoami endpoint
func RegisterWhoamiEndpoint(s *server.Server) {
	whoamiRouter := s.Router.PathPrefix("/api/whoami").Subrouter()
	whoamiRouter.Use(s.JWTMiddleware.Middleware)

	whoamiRouter.HandleFunc("", handleWhoami()).Methods("GET")
}

func handleWhoami() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		response := WhoamiResponse{
			UserID:   id.UserID.String(),
			Email:    id.Email,
			Role:     string(id.Role),
			TokenIAT: id.IssuedAt.Unix(),
		}
		if id.OrganizationID != nil {
			response.OrganizationID = id.OrganizationID.String()
		}

		respondWithJSON(w, http.StatusOK, response)
	}
}
