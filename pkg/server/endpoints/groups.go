package endpoints

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/server"
	"github.com/tablegate/tablegate/pkg/server/store"
)

// CreateGroupRequest represents a request to create a group
type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AddGroupMemberRequest represents a request to add a user to a group
type AddGroupMemberRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// RegisterGroupsEndpoints registers the group management endpoints
func RegisterGroupsEndpoints(s *server.Server) {
	orgGroupsRouter := s.Router.PathPrefix("/api/organizations/{org_id}/groups").Subrouter()
	orgGroupsRouter.Use(s.JWTMiddleware.Middleware)

	orgGroupsRouter.HandleFunc("", handleCreateGroup(s.GroupsStore)).Methods("POST")
	orgGroupsRouter.HandleFunc("", handleListGroups(s.GroupsStore)).Methods("GET")

	membersRouter := s.Router.PathPrefix("/api/groups/{group_id}/members").Subrouter()
	membersRouter.Use(s.JWTMiddleware.Middleware)

	membersRouter.HandleFunc("", handleAddGroupMember(s.GroupsStore)).Methods("POST")
	membersRouter.HandleFunc("", handleListGroupMembers(s.GroupsStore)).Methods("GET")
	membersRouter.HandleFunc("/{user_id}", handleRemoveGroupMember(s.GroupsStore)).Methods("DELETE")
}

func handleCreateGroup(groups store.GroupsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireSuperAdmin(w, r); !ok {
			return
		}

		orgID, err := uuid.Parse(mux.Vars(r)["org_id"])
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid organization id")
			return
		}

		var req CreateGroupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			respondWithError(w, http.StatusBadRequest, "name required")
			return
		}

		group := &model.Group{
			OrganizationID: orgID,
			Name:           req.Name,
			Description:    req.Description,
		}
		if err := groups.CreateGroup(group); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		respondWithJSON(w, http.StatusCreated, groupResponse(group))
	}
}

func handleListGroups(groups store.GroupsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireIdentity(w, r); !ok {
			return
		}

		orgID, err := uuid.Parse(mux.Vars(r)["org_id"])
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid organization id")
			return
		}

		list, err := groups.ListGroups(orgID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		response := make([]GroupResponse, 0, len(list))
		for i := range list {
			response = append(response, groupResponse(&list[i]))
		}
		respondWithJSON(w, http.StatusOK, response)
	}
}

func handleAddGroupMember(groups store.GroupsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireSuperAdmin(w, r); !ok {
			return
		}

		groupID, err := uuid.Parse(mux.Vars(r)["group_id"])
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid group id")
			return
		}

		var req AddGroupMemberRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == uuid.Nil {
			respondWithError(w, http.StatusBadRequest, "user_id required")
			return
		}

		if err := groups.AddMember(groupID, req.UserID); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleListGroupMembers(groups store.GroupsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireIdentity(w, r); !ok {
			return
		}

		groupID, err := uuid.Parse(mux.Vars(r)["group_id"])
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid group id")
			return
		}

		members, err := groups.ListMembers(groupID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		response := make([]UserResponse, 0, len(members))
		for i := range members {
			response = append(response, userResponse(&members[i]))
		}
		respondWithJSON(w, http.StatusOK, response)
	}
}

func handleRemoveGroupMember(groups store.GroupsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireSuperAdmin(w, r); !ok {
			return
		}

		vars := mux.Vars(r)
		groupID, err := uuid.Parse(vars["group_id"])
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid group id")
			return
		}
		userID, err := uuid.Parse(vars["user_id"])
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid user id")
			return
		}

		removed, err := groups.RemoveMember(groupID, userID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !removed {
			respondWithError(w, http.StatusNotFound, "Membership not found")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func groupResponse(group *model.Group) GroupResponse {
	return GroupResponse{
		ID:             group.ID.String(),
		OrganizationID: group.OrganizationID.String(),
		Name:           group.Name,
		Description:    group.Description,
		CreatedAt:      group.CreatedAt,
	}
}
