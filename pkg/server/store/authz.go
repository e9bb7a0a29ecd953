package store

import (
	"github.com/google/uuid"

	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/permission"
)

// AuthzStore gathers grant snapshots and resolves access. Implementations
// fail closed: any error loading the snapshot yields Deny alongside the
// error, never a grant.
type AuthzStore interface {
	// ResolveTableAccess decides the user's access to one table of a
	// connection.
	ResolveTableAccess(user *model.User, connectionID uuid.UUID, table string) (permission.Decision, error)

	// ResolveConnectionAccess decides the user's access to a connection
	// as a whole, ignoring table grants.
	ResolveConnectionAccess(user *model.User, connectionID uuid.UUID) (permission.Decision, error)

	// LoadSnapshot fetches the grant rows relevant to one check. Exposed
	// for callers that want to run the resolver themselves.
	LoadSnapshot(userID, connectionID uuid.UUID, table string) (permission.Snapshot, error)
}
