package endpoints

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/tablegate/tablegate/pkg/audit"
	"github.com/tablegate/tablegate/pkg/identity"
	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/observability"
	"github.com/tablegate/tablegate/pkg/permission"
	"github.com/tablegate/tablegate/pkg/server"
	"github.com/tablegate/tablegate/pkg/server/store"
)

// CreateConnectionRequest represents a request to save a connection
type CreateConnectionRequest struct {
	Name           string     `json:"name"`
	Host           string     `json:"host"`
	Port           int        `json:"port"`
	Database       string     `json:"database"`
	User           string     `json:"user"`
	Password       string     `json:"password"`
	OrganizationID *uuid.UUID `json:"organization_id"`
}

// ConnectionResponse represents a saved connection in API responses. The
// stored password is never returned, not even encrypted.
type ConnectionResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id,omitempty"`
	OwnerUserID    string    `json:"owner_user_id,omitempty"`
	Name           string    `json:"name"`
	Host           string    `json:"host"`
	Port           int       `json:"port"`
	Database       string    `json:"database"`
	User           string    `json:"user"`
	CreatedAt      time.Time `json:"created_at"`
}

// AccessResponse represents the caller's resolved access
type AccessResponse struct {
	Allowed bool   `json:"allowed"`
	Level   string `json:"level"`
}

// RegisterConnectionsEndpoints registers connection management and the
// access check endpoint
func RegisterConnectionsEndpoints(s *server.Server) {
	connsRouter := s.Router.PathPrefix("/api/connections").Subrouter()
	connsRouter.Use(s.JWTMiddleware.Middleware)

	connsRouter.HandleFunc("", handleCreateConnection(s)).Methods("POST")
	connsRouter.HandleFunc("", handleListConnections(s.ConnectionsStore)).Methods("GET")
	connsRouter.HandleFunc("/{conn_id}", handleDeleteConnection(s)).Methods("DELETE")
	connsRouter.HandleFunc("/{conn_id}/access", handleCheckAccess(s.AuthzStore, s.Metrics)).Methods("GET")
}

func handleCreateConnection(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		var req CreateConnectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Name == "" || req.Host == "" || req.Database == "" || req.User == "" {
			respondWithError(w, http.StatusBadRequest, "name, host, database and user required")
			return
		}
		if req.Port == 0 {
			req.Port = 5432
		}

		encrypted, err := s.Cipher.EncryptString(req.Password)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to encrypt password")
			return
		}

		conn := &model.Connection{
			Name:              req.Name,
			Host:              req.Host,
			Port:              req.Port,
			DatabaseName:      req.Database,
			Username:          req.User,
			EncryptedPassword: encrypted,
			CreatedBy:         &id.UserID,
		}
		// Explicit organization wins; otherwise the caller's organization;
		// otherwise the connection is personal to the caller.
		switch {
		case req.OrganizationID != nil:
			conn.OrganizationID = req.OrganizationID
		case id.OrganizationID != nil:
			conn.OrganizationID = id.OrganizationID
		default:
			owner := id.UserID
			conn.OwnerUserID = &owner
		}

		if err := s.ConnectionsStore.CreateConnection(conn); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		respondWithJSON(w, http.StatusCreated, connectionResponse(conn))
	}
}

func handleListConnections(conns store.ConnectionsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		list, err := conns.ListConnections(identityUser(id))
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		response := make([]ConnectionResponse, 0, len(list))
		for i := range list {
			response = append(response, connectionResponse(&list[i]))
		}
		respondWithJSON(w, http.StatusOK, response)
	}
}

func handleDeleteConnection(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireSuperAdmin(w, r); !ok {
			return
		}

		connID, err := uuid.Parse(mux.Vars(r)["conn_id"])
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid connection id")
			return
		}

		removed, err := s.ConnectionsStore.DeleteConnection(connID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !removed {
			respondWithError(w, http.StatusNotFound, "Connection not found")
			return
		}

		// Drop any live pool so the deleted credentials stop working now.
		s.DataSources.Evict(connID)

		w.WriteHeader(http.StatusNoContent)
	}
}

// handleCheckAccess resolves the caller's access to a connection, or to one
// of its tables when ?table= is given.
func handleCheckAccess(authz store.AuthzStore, metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		connID, err := uuid.Parse(mux.Vars(r)["conn_id"])
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid connection id")
			return
		}

		table := r.URL.Query().Get("table")

		decision, err := authz.ResolveTableAccess(identityUser(id), connID, table)
		if err != nil {
			// Fail closed: an unloadable snapshot reads as denied.
			decision = permission.Deny
		}

		metrics.RecordCheck(decision.Allowed)
		audit.Log(audit.CheckEvent{
			UserID:       id.UserID.String(),
			ClientIP:     remoteIP(r),
			ConnectionID: connID.String(),
			Table:        table,
			Level:        decision.Level.String(),
			Allowed:      decision.Allowed,
		})

		respondWithJSON(w, http.StatusOK, AccessResponse{
			Allowed: decision.Allowed,
			Level:   decision.Level.String(),
		})
	}
}

// identityUser projects the token identity onto the user shape the
// resolver consumes.
func identityUser(id *identity.Identity) *model.User {
	return &model.User{
		ID:             id.UserID,
		OrganizationID: id.OrganizationID,
		Email:          id.Email,
		Role:           id.Role,
	}
}

func connectionResponse(conn *model.Connection) ConnectionResponse {
	response := ConnectionResponse{
		ID:        conn.ID.String(),
		Name:      conn.Name,
		Host:      conn.Host,
		Port:      conn.Port,
		Database:  conn.DatabaseName,
		User:      conn.Username,
		CreatedAt: conn.CreatedAt,
	}
	if conn.OrganizationID != nil {
		response.OrganizationID = conn.OrganizationID.String()
	}
	if conn.OwnerUserID != nil {
		response.OwnerUserID = conn.OwnerUserID.String()
	}
	return response
}
