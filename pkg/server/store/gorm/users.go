package gorm

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/server/store"
)

// Ensure UsersStore implements store.UsersStore
var _ store.UsersStore = (*UsersStore)(nil)

// UsersStore implements store.UsersStore using GORM
type UsersStore struct {
	db *gorm.DB
}

// NewUsersStore creates a new UsersStore
func NewUsersStore(db *gorm.DB) *UsersStore {
	return &UsersStore{db: db}
}

// CreateUser inserts a new user
func (s *UsersStore) CreateUser(user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return s.db.Create(user).Error
}

// UserByID retrieves a user by id
func (s *UsersStore) UserByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	tx := s.db.Where("id = ?", id).First(&user)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrNotFound
		}
		return nil, tx.Error
	}
	return &user, nil
}

// UserByEmail retrieves a user by email
func (s *UsersStore) UserByEmail(email string) (*model.User, error) {
	var user model.User
	tx := s.db.Where("email = ?", email).First(&user)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrNotFound
		}
		return nil, tx.Error
	}
	return &user, nil
}

// ListUsers returns the users of an organization
func (s *UsersStore) ListUsers(organizationID uuid.UUID) ([]model.User, error) {
	var users []model.User
	tx := s.db.Where("organization_id = ?", organizationID).Order("email").Find(&users)
	return users, tx.Error
}

// UpdatePassword replaces a user's password hash
func (s *UsersStore) UpdatePassword(id uuid.UUID, passwordHash string) error {
	tx := s.db.Model(&model.User{}).Where("id = ?", id).Update("password_hash", passwordHash)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
