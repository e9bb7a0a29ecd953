package store

import (
	"github.com/google/uuid"

	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/permission"
)

// GrantsStore abstracts the four grant tables. Grant operations are upserts
// on the grant's unique key; the resolver relies on at most one row per key,
// so the store must never produce duplicates. Revoke operations report
// whether a row was removed.
type GrantsStore interface {
	// User x connection
	GrantUserConnection(userID, connectionID uuid.UUID, level permission.AccessLevel, allTables bool) (*model.UserConnectionGrant, error)
	RevokeUserConnection(userID, connectionID uuid.UUID) (bool, error)
	ListUserConnectionGrants(connectionID uuid.UUID) ([]model.UserConnectionGrant, error)

	// User x table
	GrantUserTable(userID, connectionID uuid.UUID, table string, level permission.AccessLevel) (*model.UserTableGrant, error)
	RevokeUserTable(userID, connectionID uuid.UUID, table string) (bool, error)
	ListUserTableGrants(userID, connectionID uuid.UUID) ([]model.UserTableGrant, error)

	// Group x connection
	GrantGroupConnection(groupID, connectionID uuid.UUID, level permission.AccessLevel, allTables bool) (*model.GroupConnectionGrant, error)
	RevokeGroupConnection(groupID, connectionID uuid.UUID) (bool, error)
	ListGroupConnectionGrants(connectionID uuid.UUID) ([]model.GroupConnectionGrant, error)

	// Group x table
	GrantGroupTable(groupID, connectionID uuid.UUID, table string, level permission.AccessLevel) (*model.GroupTableGrant, error)
	RevokeGroupTable(groupID, connectionID uuid.UUID, table string) (bool, error)
	ListGroupTableGrants(groupID, connectionID uuid.UUID) ([]model.GroupTableGrant, error)
}
