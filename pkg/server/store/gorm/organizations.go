package gorm

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/server/store"
)

// Ensure OrganizationsStore implements store.OrganizationsStore
var _ store.OrganizationsStore = (*OrganizationsStore)(nil)

// OrganizationsStore implements store.OrganizationsStore using GORM
type OrganizationsStore struct {
	db *gorm.DB
}

// NewOrganizationsStore creates a new OrganizationsStore
func NewOrganizationsStore(db *gorm.DB) *OrganizationsStore {
	return &OrganizationsStore{db: db}
}

// CreateOrganization inserts a new organization
func (s *OrganizationsStore) CreateOrganization(org *model.Organization) error {
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	return s.db.Create(org).Error
}

// OrganizationByID retrieves an organization
func (s *OrganizationsStore) OrganizationByID(id uuid.UUID) (*model.Organization, error) {
	var org model.Organization
	tx := s.db.Where("id = ?", id).First(&org)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrNotFound
		}
		return nil, tx.Error
	}
	return &org, nil
}

// ListOrganizations returns all organizations
func (s *OrganizationsStore) ListOrganizations() ([]model.Organization, error) {
	var orgs []model.Organization
	tx := s.db.Order("name").Find(&orgs)
	return orgs, tx.Error
}
