package endpoints

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/tablegate/tablegate/pkg/audit"
	"github.com/tablegate/tablegate/pkg/datasource"
	"github.com/tablegate/tablegate/pkg/permission"
	"github.com/tablegate/tablegate/pkg/server"
	"github.com/tablegate/tablegate/pkg/server/store"
)

// RegisterDataEndpoints registers the data-plane endpoints that proxy
// queries to saved connections. Every handler resolves the caller's
// access before touching the target database.
func RegisterDataEndpoints(s *server.Server) {
	dataRouter := s.Router.PathPrefix("/api/connections/{conn_id}/tables").Subrouter()
	dataRouter.Use(s.JWTMiddleware.Middleware)

	dataRouter.HandleFunc("", handleListTables(s)).Methods("GET")
	dataRouter.HandleFunc("/{table}/schema", handleTableSchema(s)).Methods("GET")
	dataRouter.HandleFunc("/{table}/rows", handleListRows(s)).Methods("GET")
	dataRouter.HandleFunc("/{table}/rows", handleInsertRow(s)).Methods("POST")
	dataRouter.HandleFunc("/{table}/rows/{pk}", handleGetRow(s)).Methods("GET")
	dataRouter.HandleFunc("/{table}/rows/{pk}", handleUpdateRow(s)).Methods("PUT")
	dataRouter.HandleFunc("/{table}/rows/{pk}", handleDeleteRow(s)).Methods("DELETE")
}

// authorizeData resolves the caller's access to the addressed table and,
// when sufficient, opens a pool to the target database. Resolution
// failures read as denied.
func authorizeData(s *server.Server, w http.ResponseWriter, r *http.Request, write bool) (*datasource.Source, bool) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return nil, false
	}

	connID, err := uuid.Parse(mux.Vars(r)["conn_id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid connection id")
		return nil, false
	}
	table := mux.Vars(r)["table"]

	decision, err := s.AuthzStore.ResolveTableAccess(identityUser(id), connID, table)
	if err != nil {
		decision = permission.Deny
	}
	allowed := decision.CanRead()
	if write {
		allowed = decision.CanWrite()
	}
	s.Metrics.RecordCheck(allowed)
	if !allowed {
		// Denials are the interesting audit trail on the data plane;
		// permitted reads would drown them out.
		audit.Log(audit.CheckEvent{
			UserID:       id.UserID.String(),
			ClientIP:     remoteIP(r),
			ConnectionID: connID.String(),
			Table:        table,
			Level:        decision.Level.String(),
			Allowed:      false,
		})
		respondWithError(w, http.StatusForbidden, "Forbidden")
		return nil, false
	}

	conn, err := s.ConnectionsStore.ConnectionByID(connID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Connection not found")
		} else {
			respondWithError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}

	source, err := s.DataSources.SourceFor(r.Context(), conn)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "failed to reach database")
		return nil, false
	}
	return source, true
}

func handleListTables(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source, ok := authorizeData(s, w, r, false)
		if !ok {
			return
		}

		tables, err := source.ListTables(r.Context())
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondWithJSON(w, http.StatusOK, tables)
	}
}

func handleTableSchema(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source, ok := authorizeData(s, w, r, false)
		if !ok {
			return
		}

		schema, err := source.TableSchema(r.Context(), mux.Vars(r)["table"])
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if len(schema.Columns) == 0 {
			respondWithError(w, http.StatusNotFound, "Table not found")
			return
		}
		respondWithJSON(w, http.StatusOK, schema)
	}
}

func handleListRows(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source, ok := authorizeData(s, w, r, false)
		if !ok {
			return
		}

		query := rowsQueryFromRequest(r, s.Config.APIRowListLimitMax)
		page, err := source.ListRows(r.Context(), mux.Vars(r)["table"], query)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondWithJSON(w, http.StatusOK, page)
	}
}

func handleGetRow(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source, ok := authorizeData(s, w, r, false)
		if !ok {
			return
		}

		vars := mux.Vars(r)
		row, err := source.GetRow(r.Context(), vars["table"], vars["pk"])
		if err != nil {
			respondRowError(w, err)
			return
		}
		respondWithRawJSON(w, http.StatusOK, row)
	}
}

func handleInsertRow(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source, ok := authorizeData(s, w, r, true)
		if !ok {
			return
		}

		var data map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil || len(data) == 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		row, err := source.InsertRow(r.Context(), mux.Vars(r)["table"], data)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithRawJSON(w, http.StatusCreated, row)
	}
}

func handleUpdateRow(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source, ok := authorizeData(s, w, r, true)
		if !ok {
			return
		}

		var data map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil || len(data) == 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		vars := mux.Vars(r)
		row, err := source.UpdateRow(r.Context(), vars["table"], vars["pk"], data)
		if err != nil {
			respondRowError(w, err)
			return
		}
		respondWithRawJSON(w, http.StatusOK, row)
	}
}

func handleDeleteRow(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source, ok := authorizeData(s, w, r, true)
		if !ok {
			return
		}

		vars := mux.Vars(r)
		removed, err := source.DeleteRow(r.Context(), vars["table"], vars["pk"])
		if err != nil {
			respondRowError(w, err)
			return
		}
		if !removed {
			respondWithError(w, http.StatusNotFound, "Row not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// rowsQueryFromRequest reads paging, sorting and filter parameters.
// per_page is clamped to the configured maximum.
func rowsQueryFromRequest(r *http.Request, perPageMax int) datasource.RowsQuery {
	params := r.URL.Query()

	query := datasource.RowsQuery{
		SortBy:    params.Get("sort_by"),
		SortOrder: params.Get("sort_order"),
		Filter:    params.Get("filter"),
	}
	if page, err := strconv.Atoi(params.Get("page")); err == nil && page > 0 {
		query.Page = page
	}
	if perPage, err := strconv.Atoi(params.Get("per_page")); err == nil && perPage > 0 {
		query.PerPage = perPage
	}
	if query.PerPage > perPageMax {
		query.PerPage = perPageMax
	}
	return query
}

func respondRowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		respondWithError(w, http.StatusNotFound, "Row not found")
	case errors.Is(err, datasource.ErrNoPrimaryKey):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondWithRawJSON(w http.ResponseWriter, code int, payload json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(payload)
}
