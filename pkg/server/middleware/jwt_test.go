package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablegate/tablegate/pkg/identity"
	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/permission"
	"github.com/tablegate/tablegate/pkg/token"
)

var testSecret = []byte("middleware-test-secret")

func protectedHandler(t *testing.T, sawIdentity **identity.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		require.True(t, ok, "identity missing from context")
		*sawIdentity = id
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "alice@example.com", Role: permission.RoleSuperAdmin}
	tokenStr, err := token.Issue(user, testSecret, time.Hour)
	require.NoError(t, err)

	var seen *identity.Identity
	handler := NewAuthenticator(testSecret).Middleware(protectedHandler(t, &seen))

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.UserID)
	assert.Equal(t, "alice@example.com", seen.Email)
	assert.True(t, seen.IsSuperAdmin())
}

func TestMiddlewareRejections(t *testing.T) {
	handler := NewAuthenticator(testSecret).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not be reached")
	}))

	expired, err := token.Issue(&model.User{ID: uuid.New(), Role: permission.RoleMember}, testSecret, -time.Minute)
	require.NoError(t, err)
	wrongKey, err := token.Issue(&model.User{ID: uuid.New(), Role: permission.RoleMember}, []byte("other"), time.Hour)
	require.NoError(t, err)

	cases := map[string]struct {
		header string
		body   string
	}{
		"missing header":  {header: "", body: "Authorization missing"},
		"not bearer":      {header: `Token token="abc"`, body: "Malformed authorization header"},
		"garbage token":   {header: "Bearer garbage", body: "Invalid token"},
		"expired token":   {header: "Bearer " + expired, body: "Token expired"},
		"wrong signature": {header: "Bearer " + wrongKey, body: "Invalid token"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tc.body, w.Body.String())
		})
	}
}
