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
	"github.com/tablegate/tablegate/pkg/permission"
	"github.com/tablegate/tablegate/pkg/server"
)

// GrantUserConnectionRequest grants a user a level on a whole connection
type GrantUserConnectionRequest struct {
	UserID     uuid.UUID `json:"user_id"`
	Permission string    `json:"permission"`
	AllTables  bool      `json:"all_tables"`
}

// GrantUserTableRequest grants a user a level on one table
type GrantUserTableRequest struct {
	Table      string `json:"table_name"`
	Permission string `json:"permission"`
}

// GrantGroupConnectionRequest grants a group a level on a whole connection
type GrantGroupConnectionRequest struct {
	GroupID    uuid.UUID `json:"group_id"`
	Permission string    `json:"permission"`
	AllTables  bool      `json:"all_tables"`
}

// GrantGroupTableRequest grants a group a level on one table
type GrantGroupTableRequest struct {
	Table      string `json:"table_name"`
	Permission string `json:"permission"`
}

// ConnectionGrantResponse represents a connection-level grant
type ConnectionGrantResponse struct {
	ID           string    `json:"id"`
	SubjectID    string    `json:"subject_id"`
	ConnectionID string    `json:"connection_id"`
	Permission   string    `json:"permission"`
	AllTables    bool      `json:"all_tables"`
	GrantedAt    time.Time `json:"granted_at"`
}

// TableGrantResponse represents a table-level grant
type TableGrantResponse struct {
	ID           string    `json:"id"`
	SubjectID    string    `json:"subject_id"`
	ConnectionID string    `json:"connection_id"`
	Table        string    `json:"table_name"`
	Permission   string    `json:"permission"`
	GrantedAt    time.Time `json:"granted_at"`
}

// RegisterPermissionsEndpoints registers the twelve grant administration
// endpoints. Listing needs any authenticated caller; every mutation is
// super-admin only.
func RegisterPermissionsEndpoints(s *server.Server) {
	permsRouter := s.Router.PathPrefix("/api/connections/{conn_id}").Subrouter()
	permsRouter.Use(s.JWTMiddleware.Middleware)

	// User x connection
	permsRouter.HandleFunc("/user-permissions", handleGrantUserConnection(s)).Methods("POST")
	permsRouter.HandleFunc("/user-permissions", handleListUserConnectionGrants(s)).Methods("GET")
	permsRouter.HandleFunc("/user-permissions/{user_id}", handleRevokeUserConnection(s)).Methods("DELETE")

	// User x table
	permsRouter.HandleFunc("/user-permissions/{user_id}/tables", handleGrantUserTable(s)).Methods("POST")
	permsRouter.HandleFunc("/user-permissions/{user_id}/tables", handleListUserTableGrants(s)).Methods("GET")
	permsRouter.HandleFunc("/user-permissions/{user_id}/tables/{table}", handleRevokeUserTable(s)).Methods("DELETE")

	// Group x connection
	permsRouter.HandleFunc("/group-permissions", handleGrantGroupConnection(s)).Methods("POST")
	permsRouter.HandleFunc("/group-permissions", handleListGroupConnectionGrants(s)).Methods("GET")
	permsRouter.HandleFunc("/group-permissions/{group_id}", handleRevokeGroupConnection(s)).Methods("DELETE")

	// Group x table
	permsRouter.HandleFunc("/group-permissions/{group_id}/tables", handleGrantGroupTable(s)).Methods("POST")
	permsRouter.HandleFunc("/group-permissions/{group_id}/tables", handleListGroupTableGrants(s)).Methods("GET")
	permsRouter.HandleFunc("/group-permissions/{group_id}/tables/{table}", handleRevokeGroupTable(s)).Methods("DELETE")
}

// parseLevel validates a permission string from a request body.
func parseLevel(raw string) (permission.AccessLevel, bool) {
	level, err := permission.AccessLevelString(raw)
	if err != nil {
		return permission.LevelNone, false
	}
	return level, true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func auditGrant(s *server.Server, r *http.Request, actor *identity.Identity, kind, subjectID, connID, table, level string, revoked bool) {
	operation := "grant"
	if revoked {
		operation = "revoke"
	}
	s.Metrics.GrantsTotal.WithLabelValues(operation, kind).Inc()
	audit.Log(audit.GrantEvent{
		ActorID:      actor.UserID.String(),
		ClientIP:     remoteIP(r),
		SubjectKind:  kind,
		SubjectID:    subjectID,
		ConnectionID: connID,
		Table:        table,
		Level:        level,
		Revoked:      revoked,
	})
}

func handleGrantUserConnection(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireSuperAdmin(w, r)
		if !ok {
			return
		}
		connID, ok := pathUUID(w, r, "conn_id")
		if !ok {
			return
		}

		var req GrantUserConnectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == uuid.Nil {
			respondWithError(w, http.StatusBadRequest, "user_id required")
			return
		}
		level, ok := parseLevel(req.Permission)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid permission level")
			return
		}

		grant, err := s.GrantsStore.GrantUserConnection(req.UserID, connID, level, req.AllTables)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		auditGrant(s, r, actor, "user", req.UserID.String(), connID.String(), "", level.String(), false)
		respondWithJSON(w, http.StatusCreated, userConnectionGrantResponse(grant))
	}
}

func handleListUserConnectionGrants(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireIdentity(w, r); !ok {
			return
		}
		connID, ok := pathUUID(w, r, "conn_id")
		if !ok {
			return
		}

		grants, err := s.GrantsStore.ListUserConnectionGrants(connID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		response := make([]ConnectionGrantResponse, 0, len(grants))
		for i := range grants {
			response = append(response, userConnectionGrantResponse(&grants[i]))
		}
		respondWithJSON(w, http.StatusOK, response)
	}
}

func handleRevokeUserConnection(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireSuperAdmin(w, r)
		if !ok {
			return
		}
		connID, ok := pathUUID(w, r, "conn_id")
		if !ok {
			return
		}
		userID, ok := pathUUID(w, r, "user_id")
		if !ok {
			return
		}

		removed, err := s.GrantsStore.RevokeUserConnection(userID, connID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !removed {
			respondWithError(w, http.StatusNotFound, "Permission not found")
			return
		}

		auditGrant(s, r, actor, "user", userID.String(), connID.String(), "", "", true)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleGrantUserTable(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireSuperAdmin(w, r)
		if !ok {
			return
		}
		connID, ok := pathUUID(w, r, "conn_id")
		if !ok {
			return
		}
		userID, ok := pathUUID(w, r, "user_id")
		if !ok {
			return
		}

		var req GrantUserTableRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Table == "" {
			respondWithError(w, http.StatusBadRequest, "table_name required")
			return
		}
		level, ok := parseLevel(req.Permission)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid permission level")
			return
		}

		grant, err := s.GrantsStore.GrantUserTable(userID, connID, req.Table, level)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		auditGrant(s, r, actor, "user", userID.String(), connID.String(), req.Table, level.String(), false)
		respondWithJSON(w, http.StatusCreated, userTableGrantResponse(grant))
	}
}

func handleListUserTableGrants(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireIdentity(w, r); !ok {
			return
		}
		connID, ok := pathUUID(w, r, "conn_id")
		if !ok {
			return
		}
		userID, ok := pathUUID(w, r, "user_id")
		if !ok {
			return
		}

		grants, err := s.GrantsStore.ListUserTableGrants(userID, connID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		response := make([]TableGrantResponse, 0, len(grants))
		for i := range grants {
			response = append(response, userTableGrantResponse(&grants[i]))
		}
		respondWithJSON(w, http.StatusOK, response)
	}
}

func handleRevokeUserTable(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireSuperAdmin(w, r)
		if !ok {
			return
		}
		connID, ok := pathUUID(w, r, "conn_id")
		if !ok {
			return
		}
		userID, ok := pathUUID(w, r, "user_id")
		if !ok {
			return
		}
		table := mux.Vars(r)["table"]

		removed, err := s.GrantsStore.RevokeUserTable(userID, connID, table)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !removed {
			respondWithError(w, http.StatusNotFound, "Permission not found")
			return
		}

		auditGrant(s, r, actor, "user", userID.String(), connID.String(), table, "", true)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleGrantGroupConnection(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireSuperAdmin(w, r)
		if !ok {
			return
		}
		connID, ok := pathUUID(w, r, "conn_id")
		if !ok {
			return
		}

		var req GrantGroupConnectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GroupID == uuid.Nil {
			respondWithError(w, http.StatusBadRequest, "group_id required")
			return
		}
		level, ok := parseLevel(req.Permission)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid permission level")
			return
		}

		grant, err := s.GrantsStore.GrantGroupConnection(req.GroupID, connID, level, req.AllTables)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		auditGrant(s, r, actor, "group", req.GroupID.String(), connID.String(), "", level.String(), false)
		respondWithJSON(w, http.StatusCreated, groupConnectionGrantResponse(grant))
	}
}

func handleListGroupConnectionGrants(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireIdentity(w, r); !ok {
			return
		}
		connID, ok := pathUUID(w, r, "conn_id")
		if !ok {
			return
		}

		grants, err := s.GrantsStore.ListGroupConnectionGrants(connID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		response := make([]ConnectionGrantResponse, 0, len(grants))
		for i := range grants {
			response = append(response, groupConnectionGrantResponse(&grants[i]))
		}
		respondWithJSON(w, http.StatusOK, response)
	}
}

func handleRevokeGroupConnection(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireSuperAdmin(w, r)
		if !ok {
			return
		}
		connID, ok := pathUUID(w, r, "conn_id")
		if !ok {
			return
		}
		groupID, ok := pathUUID(w, r, "group_id")
		if !ok {
			return
		}

		removed, err := s.GrantsStore.RevokeGroupConnection(groupID, connID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !removed {
			respondWithError(w, http.StatusNotFound, "Permission not found")
			return
		}

		auditGrant(s, r, actor, "group", groupID.String(), connID.String(), "", "", true)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleGrantGroupTable(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireSuperAdmin(w, r)
		if !ok {
			return
		}
		connID, ok := pathUUID(w, r, "conn_id")
		if !ok {
			return
		}
		groupID, ok := pathUUID(w, r, "group_id")
		if !ok {
			return
		}

		var req GrantGroupTableRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Table == "" {
			respondWithError(w, http.StatusBadRequest, "table_name required")
			return
		}
		level, ok := parseLevel(req.Permission)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid permission level")
			return
		}

		grant, err := s.GrantsStore.GrantGroupTable(groupID, connID, req.Table, level)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		auditGrant(s, r, actor, "group", groupID.String(), connID.String(), req.Table, level.String(), false)
		respondWithJSON(w, http.StatusCreated, groupTableGrantResponse(grant))
	}
}

func handleListGroupTableGrants(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireIdentity(w, r); !ok {
			return
		}
		connID, ok := pathUUID(w, r, "conn_id")
		if !ok {
			return
		}
		groupID, ok := pathUUID(w, r, "group_id")
		if !ok {
			return
		}

		grants, err := s.GrantsStore.ListGroupTableGrants(groupID, connID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		response := make([]TableGrantResponse, 0, len(grants))
		for i := range grants {
			response = append(response, groupTableGrantResponse(&grants[i]))
		}
		respondWithJSON(w, http.StatusOK, response)
	}
}

func handleRevokeGroupTable(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireSuperAdmin(w, r)
		if !ok {
			return
		}
		connID, ok := pathUUID(w, r, "conn_id")
		if !ok {
			return
		}
		groupID, ok := pathUUID(w, r, "group_id")
		if !ok {
			return
		}
		table := mux.Vars(r)["table"]

		removed, err := s.GrantsStore.RevokeGroupTable(groupID, connID, table)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !removed {
			respondWithError(w, http.StatusNotFound, "Permission not found")
			return
		}

		auditGrant(s, r, actor, "group", groupID.String(), connID.String(), table, "", true)
		w.WriteHeader(http.StatusNoContent)
	}
}

func userConnectionGrantResponse(grant *model.UserConnectionGrant) ConnectionGrantResponse {
	return ConnectionGrantResponse{
		ID:           grant.ID.String(),
		SubjectID:    grant.UserID.String(),
		ConnectionID: grant.ConnectionID.String(),
		Permission:   grant.Permission.String(),
		AllTables:    grant.AllTables,
		GrantedAt:    grant.GrantedAt,
	}
}

func userTableGrantResponse(grant *model.UserTableGrant) TableGrantResponse {
	return TableGrantResponse{
		ID:           grant.ID.String(),
		SubjectID:    grant.UserID.String(),
		ConnectionID: grant.ConnectionID.String(),
		Table:        grant.Table,
		Permission:   grant.Permission.String(),
		GrantedAt:    grant.GrantedAt,
	}
}

func groupConnectionGrantResponse(grant *model.GroupConnectionGrant) ConnectionGrantResponse {
	return ConnectionGrantResponse{
		ID:           grant.ID.String(),
		SubjectID:    grant.GroupID.String(),
		ConnectionID: grant.ConnectionID.String(),
		Permission:   grant.Permission.String(),
		AllTables:    grant.AllTables,
		GrantedAt:    grant.GrantedAt,
	}
}

func groupTableGrantResponse(grant *model.GroupTableGrant) TableGrantResponse {
	return TableGrantResponse{
		ID:           grant.ID.String(),
		SubjectID:    grant.GroupID.String(),
		ConnectionID: grant.ConnectionID.String(),
		Table:        grant.Table,
		Permission:   grant.Permission.String(),
		GrantedAt:    grant.GrantedAt,
	}
}
