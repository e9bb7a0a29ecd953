package permission

import "github.com/google/uuid"

// Role is a user's global role. Roles are not scoped per organization.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleMember     Role = "member"
)

// Actor is the authenticated caller whose access is being evaluated.
// GroupIDs and OwnsConnection are supplied by the snapshot loader; the
// resolver does not validate organizational scoping of groups.
type Actor struct {
	UserID   uuid.UUID
	Role     Role
	GroupIDs []uuid.UUID

	// OwnsConnection is true when the actor is the owner_user_id of the
	// connection under evaluation. Owners resolve to admin on it.
	OwnsConnection bool
}

// ConnectionGrant is a connection-level grant row as seen by the resolver.
// AllTables extends the grant to every table on the connection; without it
// the grant only opens tables that carry an explicit table grant.
type ConnectionGrant struct {
	Level     AccessLevel
	AllTables bool
}

// TableGrant is a table-level grant row for one named table.
type TableGrant struct {
	Level AccessLevel
}

// Snapshot holds the grant rows relevant to one (actor, connection, table)
// check, fetched up front by the caller. The store's uniqueness constraints
// guarantee at most one row per key; the resolver assumes that holds.
type Snapshot struct {
	// UserConnection is the actor's own grant on the connection, if any.
	UserConnection *ConnectionGrant

	// UserTable is the actor's own grant on the specific table, if any.
	UserTable *TableGrant

	// GroupConnections are connection grants of every group the actor
	// belongs to, for this connection.
	GroupConnections []ConnectionGrant

	// GroupTables are table grants of the actor's groups for the
	// specific table.
	GroupTables []TableGrant
}
