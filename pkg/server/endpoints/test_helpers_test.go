package endpoints

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/tablegate/tablegate/pkg/config"
	"github.com/tablegate/tablegate/pkg/datasource"
	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/observability"
	"github.com/tablegate/tablegate/pkg/server"
	"github.com/tablegate/tablegate/pkg/server/middleware"
	"github.com/tablegate/tablegate/pkg/token"
)

var testSecret = []byte("endpoints-test-secret")

// newTestServer builds a server with no database behind it. Tests attach
// mock stores for whatever the handler under test touches.
func newTestServer() *server.Server {
	return &server.Server{
		Router:        mux.NewRouter().UseEncodedPath(),
		Config:        config.Get(),
		JWTMiddleware: middleware.NewAuthenticator(testSecret),
		Metrics:       observability.NewMetrics(prometheus.NewRegistry()),
		DataSources:   datasource.NewManager(nil, 1, time.Second),
		TokenSecret:   testSecret,
		TokenTTL:      time.Hour,
	}
}

func bearerFor(t *testing.T, user *model.User) string {
	t.Helper()
	signed, err := token.Issue(user, testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + signed
}

func readBody(t *testing.T, w *httptest.ResponseRecorder) []byte {
	t.Helper()
	body, err := io.ReadAll(w.Result().Body)
	require.NoError(t, err)
	return body
}
