package store

import (
	"github.com/google/uuid"

	"github.com/tablegate/tablegate/pkg/model"
)

// ConnectionsStore abstracts saved connection storage operations
type ConnectionsStore interface {
	// CreateConnection inserts a new saved connection. The password must
	// already be encrypted by the caller.
	CreateConnection(conn *model.Connection) error

	// ConnectionByID retrieves a connection. Returns ErrNotFound if absent.
	ConnectionByID(id uuid.UUID) (*model.Connection, error)

	// ListConnections returns connections visible to the user: those of
	// the user's organization plus those the user owns personally.
	ListConnections(user *model.User) ([]model.Connection, error)

	// DeleteConnection removes a connection and, via cascading foreign
	// keys, every grant referencing it. Reports whether a row was removed.
	DeleteConnection(id uuid.UUID) (bool, error)
}
