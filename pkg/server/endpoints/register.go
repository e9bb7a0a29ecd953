package endpoints

import (
	"github.com/tablegate/tablegate/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterAuthEndpoints(srv)
	RegisterWhoamiEndpoint(srv)
	RegisterOrganizationsEndpoints(srv)
	RegisterUsersEndpoints(srv)
	RegisterGroupsEndpoints(srv)
	RegisterConnectionsEndpoints(srv)
	RegisterPermissionsEndpoints(srv)
	RegisterDataEndpoints(srv)
}
