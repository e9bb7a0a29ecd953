package gorm

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/server/store"
)

// Ensure GroupsStore implements store.GroupsStore
var _ store.GroupsStore = (*GroupsStore)(nil)

// GroupsStore implements store.GroupsStore using GORM
type GroupsStore struct {
	db *gorm.DB
}

// NewGroupsStore creates a new GroupsStore
func NewGroupsStore(db *gorm.DB) *GroupsStore {
	return &GroupsStore{db: db}
}

// CreateGroup inserts a new group
func (s *GroupsStore) CreateGroup(group *model.Group) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	return s.db.Create(group).Error
}

// GroupByID retrieves a group
func (s *GroupsStore) GroupByID(id uuid.UUID) (*model.Group, error) {
	var group model.Group
	tx := s.db.Where("id = ?", id).First(&group)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrNotFound
		}
		return nil, tx.Error
	}
	return &group, nil
}

// ListGroups returns the groups of an organization
func (s *GroupsStore) ListGroups(organizationID uuid.UUID) ([]model.Group, error) {
	var groups []model.Group
	tx := s.db.Where("organization_id = ?", organizationID).Order("name").Find(&groups)
	return groups, tx.Error
}

// AddMember adds a user to a group
func (s *GroupsStore) AddMember(groupID, userID uuid.UUID) error {
	return s.db.Exec(`
		INSERT INTO group_members (group_id, user_id)
		VALUES (?, ?)
		ON CONFLICT DO NOTHING
	`, groupID, userID).Error
}

// RemoveMember removes a user from a group
func (s *GroupsStore) RemoveMember(groupID, userID uuid.UUID) (bool, error) {
	tx := s.db.Exec(`DELETE FROM group_members WHERE group_id = ? AND user_id = ?`, groupID, userID)
	return tx.RowsAffected > 0, tx.Error
}

// ListMembers returns the users belonging to a group
func (s *GroupsStore) ListMembers(groupID uuid.UUID) ([]model.User, error) {
	var users []model.User
	tx := s.db.Raw(`
		SELECT u.*
		FROM app_users u
		JOIN group_members gm ON gm.user_id = u.id
		WHERE gm.group_id = ?
		ORDER BY u.email
	`, groupID).Scan(&users)
	return users, tx.Error
}

// GroupIDsForUser returns the ids of every group the user belongs to
func (s *GroupsStore) GroupIDsForUser(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	tx := s.db.Raw(`SELECT group_id FROM group_members WHERE user_id = ?`, userID).Scan(&ids)
	return ids, tx.Error
}
