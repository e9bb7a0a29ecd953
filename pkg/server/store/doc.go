// Package store provides storage abstractions for the tablegate server.
//
// This package defines interfaces for control-plane database operations,
// allowing the server endpoints to be decoupled from the specific database
// implementation. This enables easier testing with mocks and keeps the
// permission resolver pure: the AuthzStore gathers the grant snapshot and
// hands it to pkg/permission, which does no I/O of its own.
//
// # Available Stores
//
//   - AuthzStore: snapshot loading + access resolution
//   - GrantsStore: grant/revoke/list for the four grant kinds
//   - UsersStore, GroupsStore, OrganizationsStore: identity records
//   - ConnectionsStore: saved connection metadata
//   - HealthStore: connectivity checks
//
// # Usage
//
//	grants := gorm.NewGrantsStore(db)
//	if _, err := grants.GrantUserConnection(userID, connID, permission.LevelRead, true); err != nil {
//	    // handle store error
//	}
package store
