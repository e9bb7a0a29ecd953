package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/tablegate/tablegate/pkg/config"
	"github.com/tablegate/tablegate/pkg/crypto"
	"github.com/tablegate/tablegate/pkg/datasource"
	"github.com/tablegate/tablegate/pkg/observability"
	"github.com/tablegate/tablegate/pkg/server/middleware"
	"github.com/tablegate/tablegate/pkg/server/store"
	gormstore "github.com/tablegate/tablegate/pkg/server/store/gorm"
)

type Server struct {
	Router        *mux.Router
	DB            *gorm.DB
	Config        *config.Config
	Cipher        *crypto.Cipher
	JWTMiddleware *middleware.Authenticator
	Metrics       *observability.Metrics
	DataSources   *datasource.Manager

	TokenSecret []byte
	TokenTTL    time.Duration

	UsersStore         store.UsersStore
	OrganizationsStore store.OrganizationsStore
	GroupsStore        store.GroupsStore
	ConnectionsStore   store.ConnectionsStore
	GrantsStore        store.GrantsStore
	AuthzStore         store.AuthzStore
	HealthStore        store.HealthStore

	srv *http.Server
}

func NewServer(
	db *gorm.DB,
	cfg *config.Config,
	cipher *crypto.Cipher,
	tokenSecret []byte,
	host string,
	port string,
) *Server {

	router := mux.NewRouter().UseEncodedPath()

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	router.Use(observability.HTTPMetricsMiddleware(metrics))

	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, router),
		Addr:    host + ":" + port,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Router:        router,
		DB:            db,
		Config:        cfg,
		Cipher:        cipher,
		JWTMiddleware: middleware.NewAuthenticator(tokenSecret),
		Metrics:       metrics,
		DataSources: datasource.NewManager(
			cipher,
			cfg.DataPlaneMaxOpenConns,
			time.Duration(cfg.DataPlaneConnectTimeoutSeconds)*time.Second,
		),

		TokenSecret: tokenSecret,
		TokenTTL:    time.Duration(cfg.TokenTTLMinutes) * time.Minute,

		UsersStore:         gormstore.NewUsersStore(db),
		OrganizationsStore: gormstore.NewOrganizationsStore(db),
		GroupsStore:        gormstore.NewGroupsStore(db),
		ConnectionsStore:   gormstore.NewConnectionsStore(db),
		GrantsStore:        gormstore.NewGrantsStore(db),
		AuthzStore:         gormstore.NewAuthzStore(db),
		HealthStore:        gormstore.NewHealthStore(db),

		srv: srv,
	}
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests and closes the data-plane pools.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.DataSources.Close()
	return s.srv.Shutdown(ctx)
}
