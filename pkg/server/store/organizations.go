package store

import (
	"github.com/google/uuid"

	"github.com/tablegate/tablegate/pkg/model"
)

// OrganizationsStore abstracts organization storage operations
type OrganizationsStore interface {
	// CreateOrganization inserts a new organization.
	CreateOrganization(org *model.Organization) error

	// OrganizationByID retrieves an organization. Returns ErrNotFound if absent.
	OrganizationByID(id uuid.UUID) (*model.Organization, error)

	// ListOrganizations returns all organizations.
	ListOrganizations() ([]model.Organization, error)
}
