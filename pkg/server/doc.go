// Package server provides the HTTP server for the tablegate API.
//
// This package implements the core HTTP server that handles all tablegate
// REST API requests. It uses gorilla/mux for routing and provides middleware
// for authentication and request handling.
//
// # Server Setup
//
//	srv := server.NewServer(db, cfg, cipher, tokenSecret, "0.0.0.0", "8000")
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Components
//
// The Server struct holds:
//
//   - Cipher: symmetric cipher for stored connection passwords
//   - DB: control-plane database connection
//   - JWTMiddleware: bearer token validation
//   - DataSources: pooled connections to administered databases
//   - Stores: one interface per aggregate, backed by GORM
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage:
//
//	endpoints.RegisterAll(srv)
//
// This registers all tablegate API endpoints including:
//
//   - /api/auth/login - password login
//   - /api/whoami - token introspection
//   - /api/organizations - organization management
//   - /api/organizations/{org_id}/users - user management
//   - /api/organizations/{org_id}/groups - group management
//   - /api/connections - saved connection management
//   - /api/connections/{conn_id}/access - access checks
//   - /api/connections/{conn_id}/user-permissions - grant management
//   - /api/connections/{conn_id}/tables - the data plane
package server
