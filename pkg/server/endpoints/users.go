package endpoints

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/permission"
	"github.com/tablegate/tablegate/pkg/server"
	"github.com/tablegate/tablegate/pkg/server/store"
)

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserResponse represents a user in API responses. The password hash never
// leaves the server.
type UserResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id,omitempty"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// RegisterUsersEndpoints registers the user management endpoints
func RegisterUsersEndpoints(s *server.Server) {
	usersRouter := s.Router.PathPrefix("/api/organizations/{org_id}/users").Subrouter()
	usersRouter.Use(s.JWTMiddleware.Middleware)

	usersRouter.HandleFunc("", handleCreateUser(s.UsersStore)).Methods("POST")
	usersRouter.HandleFunc("", handleListUsers(s.UsersStore)).Methods("GET")
}

func handleCreateUser(users store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireSuperAdmin(w, r); !ok {
			return
		}

		orgID, err := uuid.Parse(mux.Vars(r)["org_id"])
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid organization id")
			return
		}

		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Email == "" || req.Name == "" {
			respondWithError(w, http.StatusBadRequest, "name and email required")
			return
		}

		role := permission.RoleMember
		if req.Role != "" {
			role = permission.Role(req.Role)
			if role != permission.RoleMember && role != permission.RoleSuperAdmin {
				respondWithError(w, http.StatusBadRequest, "invalid role")
				return
			}
		}

		user := &model.User{
			OrganizationID: &orgID,
			Name:           req.Name,
			Email:          req.Email,
			Role:           role,
		}
		if req.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				respondWithError(w, http.StatusInternalServerError, err.Error())
				return
			}
			user.PasswordHash = string(hash)
		}

		if err := users.CreateUser(user); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		respondWithJSON(w, http.StatusCreated, userResponse(user))
	}
}

func handleListUsers(users store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireIdentity(w, r); !ok {
			return
		}

		orgID, err := uuid.Parse(mux.Vars(r)["org_id"])
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid organization id")
			return
		}

		list, err := users.ListUsers(orgID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		response := make([]UserResponse, 0, len(list))
		for i := range list {
			response = append(response, userResponse(&list[i]))
		}
		respondWithJSON(w, http.StatusOK, response)
	}
}

func userResponse(user *model.User) UserResponse {
	response := UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
	if user.OrganizationID != nil {
		response.OrganizationID = user.OrganizationID.String()
	}
	return response
}
