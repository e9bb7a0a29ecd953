package endpoints

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/permission"
	"github.com/tablegate/tablegate/pkg/server/store"
)

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		ID:           uuid.New(),
		Email:        "alice@example.com",
		Role:         permission.RoleMember,
		PasswordHash: string(hash),
	}

	t.Run("valid credentials", func(t *testing.T) {
		s := newTestServer()
		users := NewMockUsersStore()
		users.On("UserByEmail", "alice@example.com").Return(user, nil)
		s.UsersStore = users
		RegisterAuthEndpoints(s)

		req := httptest.NewRequest("POST", "/api/auth/login",
			strings.NewReader(`{"email":"alice@example.com","password":"s3cret"}`))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(readBody(t, w), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, int64(3600), resp.ExpiresIn)
	})

	t.Run("wrong password", func(t *testing.T) {
		s := newTestServer()
		users := NewMockUsersStore()
		users.On("UserByEmail", "alice@example.com").Return(user, nil)
		s.UsersStore = users
		RegisterAuthEndpoints(s)

		req := httptest.NewRequest("POST", "/api/auth/login",
			strings.NewReader(`{"email":"alice@example.com","password":"nope"}`))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid credentials")
	})

	t.Run("unknown user gets the same response", func(t *testing.T) {
		s := newTestServer()
		users := NewMockUsersStore()
		users.On("UserByEmail", "nobody@example.com").Return(nil, store.ErrNotFound)
		s.UsersStore = users
		RegisterAuthEndpoints(s)

		req := httptest.NewRequest("POST", "/api/auth/login",
			strings.NewReader(`{"email":"nobody@example.com","password":"s3cret"}`))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid credentials")
	})

	t.Run("missing fields", func(t *testing.T) {
		s := newTestServer()
		s.UsersStore = NewMockUsersStore()
		RegisterAuthEndpoints(s)

		req := httptest.NewRequest("POST", "/api/auth/login",
			strings.NewReader(`{"email":"alice@example.com"}`))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("user without password cannot log in", func(t *testing.T) {
		nopass := &model.User{ID: uuid.New(), Email: "svc@example.com", Role: permission.RoleMember}

		s := newTestServer()
		users := NewMockUsersStore()
		users.On("UserByEmail", "svc@example.com").Return(nopass, nil)
		s.UsersStore = users
		RegisterAuthEndpoints(s)

		req := httptest.NewRequest("POST", "/api/auth/login",
			strings.NewReader(`{"email":"svc@example.com","password":"anything"}`))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
