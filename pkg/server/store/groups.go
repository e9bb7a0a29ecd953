package store

import (
	"github.com/google/uuid"

	"github.com/tablegate/tablegate/pkg/model"
)

// GroupsStore abstracts group and membership storage operations
type GroupsStore interface {
	// CreateGroup inserts a new group.
	CreateGroup(group *model.Group) error

	// GroupByID retrieves a group. Returns ErrNotFound if absent.
	GroupByID(id uuid.UUID) (*model.Group, error)

	// ListGroups returns the groups of an organization.
	ListGroups(organizationID uuid.UUID) ([]model.Group, error)

	// AddMember adds a user to a group. Adding an existing member is a no-op.
	AddMember(groupID, userID uuid.UUID) error

	// RemoveMember removes a user from a group. Reports whether a
	// membership was removed.
	RemoveMember(groupID, userID uuid.UUID) (bool, error)

	// ListMembers returns the users belonging to a group.
	ListMembers(groupID uuid.UUID) ([]model.User, error)

	// GroupIDsForUser returns the ids of every group the user belongs to.
	GroupIDsForUser(userID uuid.UUID) ([]uuid.UUID, error)
}
