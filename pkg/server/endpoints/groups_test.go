package endpoints

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/permission"
)

func TestCreateGroup(t *testing.T) {
	admin := &model.User{ID: uuid.New(), Email: "root@example.com", Role: permission.RoleSuperAdmin}
	orgID := uuid.New()

	s := newTestServer()
	groups := NewMockGroupsStore()
	groups.On("CreateGroup", mock.MatchedBy(func(g *model.Group) bool {
		return g.OrganizationID == orgID && g.Name == "analysts"
	})).Return(nil)
	s.GroupsStore = groups
	RegisterGroupsEndpoints(s)

	body := `{"name":"analysts","description":"read-only reporting"}`
	req := httptest.NewRequest("POST", "/api/organizations/"+orgID.String()+"/groups",
		strings.NewReader(body))
	req.Header.Set("Authorization", bearerFor(t, admin))
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp GroupResponse
	require.NoError(t, json.Unmarshal(readBody(t, w), &resp))
	assert.Equal(t, "analysts", resp.Name)
	groups.AssertExpectations(t)
}

func TestGroupMembership(t *testing.T) {
	admin := &model.User{ID: uuid.New(), Email: "root@example.com", Role: permission.RoleSuperAdmin}
	member := &model.User{ID: uuid.New(), Email: "bob@example.com", Role: permission.RoleMember}
	groupID := uuid.New()
	userID := uuid.New()

	t.Run("add member", func(t *testing.T) {
		s := newTestServer()
		groups := NewMockGroupsStore()
		groups.On("AddMember", groupID, userID).Return(nil)
		s.GroupsStore = groups
		RegisterGroupsEndpoints(s)

		body := `{"user_id":"` + userID.String() + `"}`
		req := httptest.NewRequest("POST", "/api/groups/"+groupID.String()+"/members",
			strings.NewReader(body))
		req.Header.Set("Authorization", bearerFor(t, admin))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("member cannot mutate membership", func(t *testing.T) {
		s := newTestServer()
		s.GroupsStore = NewMockGroupsStore()
		RegisterGroupsEndpoints(s)

		body := `{"user_id":"` + userID.String() + `"}`
		req := httptest.NewRequest("POST", "/api/groups/"+groupID.String()+"/members",
			strings.NewReader(body))
		req.Header.Set("Authorization", bearerFor(t, member))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("list members", func(t *testing.T) {
		s := newTestServer()
		groups := NewMockGroupsStore()
		groups.On("ListMembers", groupID).Return([]model.User{
			{ID: userID, Name: "Alice", Email: "alice@example.com", Role: permission.RoleMember},
		}, nil)
		s.GroupsStore = groups
		RegisterGroupsEndpoints(s)

		req := httptest.NewRequest("GET", "/api/groups/"+groupID.String()+"/members", nil)
		req.Header.Set("Authorization", bearerFor(t, member))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp []UserResponse
		require.NoError(t, json.Unmarshal(readBody(t, w), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, userID.String(), resp[0].ID)
	})

	t.Run("remove absent membership", func(t *testing.T) {
		s := newTestServer()
		groups := NewMockGroupsStore()
		groups.On("RemoveMember", groupID, userID).Return(false, nil)
		s.GroupsStore = groups
		RegisterGroupsEndpoints(s)

		req := httptest.NewRequest("DELETE",
			"/api/groups/"+groupID.String()+"/members/"+userID.String(), nil)
		req.Header.Set("Authorization", bearerFor(t, admin))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Membership not found")
	})
}
