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

	"github.com/tablegate/tablegate/pkg/crypto"
	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/permission"
)

func testCipher(t *testing.T) *crypto.Cipher {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	cipher, err := crypto.New(key)
	require.NoError(t, err)
	return cipher
}

func TestCreateConnection(t *testing.T) {
	orgID := uuid.New()
	member := &model.User{ID: uuid.New(), OrganizationID: &orgID, Email: "bob@example.com", Role: permission.RoleMember}

	t.Run("organization connection", func(t *testing.T) {
		s := newTestServer()
		s.Cipher = testCipher(t)
		conns := NewMockConnectionsStore()
		conns.On("CreateConnection", mock.MatchedBy(func(c *model.Connection) bool {
			return c.OrganizationID != nil && *c.OrganizationID == orgID &&
				c.EncryptedPassword != "hunter2" && c.Port == 5432
		})).Return(nil)
		s.ConnectionsStore = conns
		RegisterConnectionsEndpoints(s)

		body := `{"name":"prod","host":"db.internal","database":"app","user":"app","password":"hunter2"}`
		req := httptest.NewRequest("POST", "/api/connections", strings.NewReader(body))
		req.Header.Set("Authorization", bearerFor(t, member))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp ConnectionResponse
		require.NoError(t, json.Unmarshal(readBody(t, w), &resp))
		assert.Equal(t, "prod", resp.Name)
		assert.Equal(t, 5432, resp.Port)
		assert.NotContains(t, w.Body.String(), "hunter2")
		conns.AssertExpectations(t)
	})

	t.Run("personal connection for user without organization", func(t *testing.T) {
		loner := &model.User{ID: uuid.New(), Email: "solo@example.com", Role: permission.RoleMember}

		s := newTestServer()
		s.Cipher = testCipher(t)
		conns := NewMockConnectionsStore()
		conns.On("CreateConnection", mock.MatchedBy(func(c *model.Connection) bool {
			return c.OwnerUserID != nil && *c.OwnerUserID == loner.ID && c.OrganizationID == nil
		})).Return(nil)
		s.ConnectionsStore = conns
		RegisterConnectionsEndpoints(s)

		body := `{"name":"scratch","host":"localhost","database":"dev","user":"dev","password":"x"}`
		req := httptest.NewRequest("POST", "/api/connections", strings.NewReader(body))
		req.Header.Set("Authorization", bearerFor(t, loner))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		conns.AssertExpectations(t)
	})

	t.Run("missing required fields", func(t *testing.T) {
		s := newTestServer()
		s.Cipher = testCipher(t)
		s.ConnectionsStore = NewMockConnectionsStore()
		RegisterConnectionsEndpoints(s)

		req := httptest.NewRequest("POST", "/api/connections", strings.NewReader(`{"name":"prod"}`))
		req.Header.Set("Authorization", bearerFor(t, member))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteConnection(t *testing.T) {
	admin := &model.User{ID: uuid.New(), Email: "root@example.com", Role: permission.RoleSuperAdmin}
	member := &model.User{ID: uuid.New(), Email: "bob@example.com", Role: permission.RoleMember}
	connID := uuid.New()

	t.Run("super admin deletes", func(t *testing.T) {
		s := newTestServer()
		conns := NewMockConnectionsStore()
		conns.On("DeleteConnection", connID).Return(true, nil)
		s.ConnectionsStore = conns
		RegisterConnectionsEndpoints(s)

		req := httptest.NewRequest("DELETE", "/api/connections/"+connID.String(), nil)
		req.Header.Set("Authorization", bearerFor(t, admin))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("member is forbidden", func(t *testing.T) {
		s := newTestServer()
		s.ConnectionsStore = NewMockConnectionsStore()
		RegisterConnectionsEndpoints(s)

		req := httptest.NewRequest("DELETE", "/api/connections/"+connID.String(), nil)
		req.Header.Set("Authorization", bearerFor(t, member))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("absent connection", func(t *testing.T) {
		s := newTestServer()
		conns := NewMockConnectionsStore()
		conns.On("DeleteConnection", connID).Return(false, nil)
		s.ConnectionsStore = conns
		RegisterConnectionsEndpoints(s)

		req := httptest.NewRequest("DELETE", "/api/connections/"+connID.String(), nil)
		req.Header.Set("Authorization", bearerFor(t, admin))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCheckAccess(t *testing.T) {
	orgID := uuid.New()
	member := &model.User{ID: uuid.New(), OrganizationID: &orgID, Email: "bob@example.com", Role: permission.RoleMember}
	connID := uuid.New()

	t.Run("allowed with level", func(t *testing.T) {
		s := newTestServer()
		authz := NewMockAuthzStore()
		authz.On("ResolveTableAccess", mock.Anything, connID, "invoices").
			Return(permission.Grant(permission.LevelWrite), nil)
		s.AuthzStore = authz
		RegisterConnectionsEndpoints(s)

		req := httptest.NewRequest("GET", "/api/connections/"+connID.String()+"/access?table=invoices", nil)
		req.Header.Set("Authorization", bearerFor(t, member))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp AccessResponse
		require.NoError(t, json.Unmarshal(readBody(t, w), &resp))
		assert.True(t, resp.Allowed)
		assert.Equal(t, "write", resp.Level)
	})

	t.Run("denied", func(t *testing.T) {
		s := newTestServer()
		authz := NewMockAuthzStore()
		authz.On("ResolveTableAccess", mock.Anything, connID, "").
			Return(permission.Deny, nil)
		s.AuthzStore = authz
		RegisterConnectionsEndpoints(s)

		req := httptest.NewRequest("GET", "/api/connections/"+connID.String()+"/access", nil)
		req.Header.Set("Authorization", bearerFor(t, member))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp AccessResponse
		require.NoError(t, json.Unmarshal(readBody(t, w), &resp))
		assert.False(t, resp.Allowed)
		assert.Equal(t, "none", resp.Level)
	})

	t.Run("resolver error reads as denied", func(t *testing.T) {
		s := newTestServer()
		authz := NewMockAuthzStore()
		authz.On("ResolveTableAccess", mock.Anything, connID, "").
			Return(permission.Deny, assert.AnError)
		s.AuthzStore = authz
		RegisterConnectionsEndpoints(s)

		req := httptest.NewRequest("GET", "/api/connections/"+connID.String()+"/access", nil)
		req.Header.Set("Authorization", bearerFor(t, member))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp AccessResponse
		require.NoError(t, json.Unmarshal(readBody(t, w), &resp))
		assert.False(t, resp.Allowed)
	})
}
