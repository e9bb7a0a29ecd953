package endpoints

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/permission"
)

func TestWhoami(t *testing.T) {
	orgID := uuid.New()
	user := &model.User{
		ID:             uuid.New(),
		OrganizationID: &orgID,
		Email:          "alice@example.com",
		Role:           permission.RoleMember,
	}

	t.Run("valid token", func(t *testing.T) {
		s := newTestServer()
		RegisterWhoamiEndpoint(s)

		req := httptest.NewRequest("GET", "/api/whoami", nil)
		req.Header.Set("Authorization", bearerFor(t, user))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp WhoamiResponse
		require.NoError(t, json.Unmarshal(readBody(t, w), &resp))
		assert.Equal(t, user.ID.String(), resp.UserID)
		assert.Equal(t, orgID.String(), resp.OrganizationID)
		assert.Equal(t, "alice@example.com", resp.Email)
		assert.Equal(t, "member", resp.Role)
		assert.NotZero(t, resp.TokenIAT)
	})

	t.Run("no token", func(t *testing.T) {
		s := newTestServer()
		RegisterWhoamiEndpoint(s)

		req := httptest.NewRequest("GET", "/api/whoami", nil)
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		s := newTestServer()
		RegisterWhoamiEndpoint(s)

		req := httptest.NewRequest("GET", "/api/whoami", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
