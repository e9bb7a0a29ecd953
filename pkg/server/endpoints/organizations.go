package endpoints

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/server"
	"github.com/tablegate/tablegate/pkg/server/store"
)

// CreateOrganizationRequest represents a request to create an organization
type CreateOrganizationRequest struct {
	Name string `json:"name"`
}

// OrganizationResponse represents an organization in API responses
type OrganizationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterOrganizationsEndpoints registers the organization management endpoints
func RegisterOrganizationsEndpoints(s *server.Server) {
	orgsRouter := s.Router.PathPrefix("/api/organizations").Subrouter()
	orgsRouter.Use(s.JWTMiddleware.Middleware)

	orgsRouter.HandleFunc("", handleCreateOrganization(s.OrganizationsStore)).Methods("POST")
	orgsRouter.HandleFunc("", handleListOrganizations(s.OrganizationsStore)).Methods("GET")
}

func handleCreateOrganization(orgs store.OrganizationsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireSuperAdmin(w, r); !ok {
			return
		}

		var req CreateOrganizationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			respondWithError(w, http.StatusBadRequest, "name required")
			return
		}

		org := &model.Organization{Name: req.Name}
		if err := orgs.CreateOrganization(org); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		respondWithJSON(w, http.StatusCreated, organizationResponse(org))
	}
}

func handleListOrganizations(orgs store.OrganizationsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireIdentity(w, r); !ok {
			return
		}

		list, err := orgs.ListOrganizations()
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		response := make([]OrganizationResponse, 0, len(list))
		for i := range list {
			response = append(response, organizationResponse(&list[i]))
		}
		respondWithJSON(w, http.StatusOK, response)
	}
}

func organizationResponse(org *model.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:        org.ID.String(),
		Name:      org.Name,
		CreatedAt: org.CreatedAt,
	}
}
