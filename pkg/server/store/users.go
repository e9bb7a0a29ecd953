package store

import (
	"errors"

	"github.com/google/uuid"

	"github.com/tablegate/tablegate/pkg/model"
)

// ErrNotFound is returned when a requested record doesn't exist
var ErrNotFound = errors.New("record not found")

// UsersStore abstracts user storage operations
type UsersStore interface {
	// CreateUser inserts a new user.
	CreateUser(user *model.User) error

	// UserByID retrieves a user by id. Returns ErrNotFound if absent.
	UserByID(id uuid.UUID) (*model.User, error)

	// UserByEmail retrieves a user by email. Returns ErrNotFound if absent.
	UserByEmail(email string) (*model.User, error)

	// ListUsers returns the users of an organization.
	ListUsers(organizationID uuid.UUID) ([]model.User, error)

	// UpdatePassword replaces a user's password hash.
	UpdatePassword(id uuid.UUID, passwordHash string) error
}
