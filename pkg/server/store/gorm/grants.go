package gorm

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/permission"
	"github.com/tablegate/tablegate/pkg/server/store"
)

// Ensure GrantsStore implements store.GrantsStore
var _ store.GrantsStore = (*GrantsStore)(nil)

// GrantsStore implements store.GrantsStore using GORM. Grants upsert on
// their unique key so repeating a grant updates the level in place.
type GrantsStore struct {
	db *gorm.DB
}

// NewGrantsStore creates a new GrantsStore
func NewGrantsStore(db *gorm.DB) *GrantsStore {
	return &GrantsStore{db: db}
}

// GrantUserConnection upserts a user's connection-level grant
func (s *GrantsStore) GrantUserConnection(userID, connectionID uuid.UUID, level permission.AccessLevel, allTables bool) (*model.UserConnectionGrant, error) {
	grant := model.UserConnectionGrant{
		ID:           uuid.New(),
		UserID:       userID,
		ConnectionID: connectionID,
		Permission:   level,
		AllTables:    allTables,
	}
	tx := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "connection_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"permission", "all_tables"}),
	}).Create(&grant)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &grant, nil
}

// RevokeUserConnection deletes a user's connection-level grant
func (s *GrantsStore) RevokeUserConnection(userID, connectionID uuid.UUID) (bool, error) {
	tx := s.db.Exec(`DELETE FROM user_connection_permissions WHERE user_id = ? AND connection_id = ?`,
		userID, connectionID)
	return tx.RowsAffected > 0, tx.Error
}

// ListUserConnectionGrants returns all user grants on a connection
func (s *GrantsStore) ListUserConnectionGrants(connectionID uuid.UUID) ([]model.UserConnectionGrant, error) {
	var grants []model.UserConnectionGrant
	tx := s.db.Where("connection_id = ?", connectionID).Find(&grants)
	return grants, tx.Error
}

// GrantUserTable upserts a user's table-level grant
func (s *GrantsStore) GrantUserTable(userID, connectionID uuid.UUID, table string, level permission.AccessLevel) (*model.UserTableGrant, error) {
	grant := model.UserTableGrant{
		ID:           uuid.New(),
		UserID:       userID,
		ConnectionID: connectionID,
		Table:        table,
		Permission:   level,
	}
	tx := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "connection_id"}, {Name: "table_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"permission"}),
	}).Create(&grant)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &grant, nil
}

// RevokeUserTable deletes a user's table-level grant
func (s *GrantsStore) RevokeUserTable(userID, connectionID uuid.UUID, table string) (bool, error) {
	tx := s.db.Exec(`DELETE FROM user_table_permissions WHERE user_id = ? AND connection_id = ? AND table_name = ?`,
		userID, connectionID, table)
	return tx.RowsAffected > 0, tx.Error
}

// ListUserTableGrants returns a user's table grants on a connection
func (s *GrantsStore) ListUserTableGrants(userID, connectionID uuid.UUID) ([]model.UserTableGrant, error) {
	var grants []model.UserTableGrant
	tx := s.db.Where("user_id = ? AND connection_id = ?", userID, connectionID).Order("table_name").Find(&grants)
	return grants, tx.Error
}

// GrantGroupConnection upserts a group's connection-level grant
func (s *GrantsStore) GrantGroupConnection(groupID, connectionID uuid.UUID, level permission.AccessLevel, allTables bool) (*model.GroupConnectionGrant, error) {
	grant := model.GroupConnectionGrant{
		ID:           uuid.New(),
		GroupID:      groupID,
		ConnectionID: connectionID,
		Permission:   level,
		AllTables:    allTables,
	}
	tx := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "connection_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"permission", "all_tables"}),
	}).Create(&grant)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &grant, nil
}

// RevokeGroupConnection deletes a group's connection-level grant
func (s *GrantsStore) RevokeGroupConnection(groupID, connectionID uuid.UUID) (bool, error) {
	tx := s.db.Exec(`DELETE FROM group_connection_permissions WHERE group_id = ? AND connection_id = ?`,
		groupID, connectionID)
	return tx.RowsAffected > 0, tx.Error
}

// ListGroupConnectionGrants returns all group grants on a connection
func (s *GrantsStore) ListGroupConnectionGrants(connectionID uuid.UUID) ([]model.GroupConnectionGrant, error) {
	var grants []model.GroupConnectionGrant
	tx := s.db.Where("connection_id = ?", connectionID).Find(&grants)
	return grants, tx.Error
}

// GrantGroupTable upserts a group's table-level grant
func (s *GrantsStore) GrantGroupTable(groupID, connectionID uuid.UUID, table string, level permission.AccessLevel) (*model.GroupTableGrant, error) {
	grant := model.GroupTableGrant{
		ID:           uuid.New(),
		GroupID:      groupID,
		ConnectionID: connectionID,
		Table:        table,
		Permission:   level,
	}
	tx := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "connection_id"}, {Name: "table_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"permission"}),
	}).Create(&grant)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &grant, nil
}

// RevokeGroupTable deletes a group's table-level grant
func (s *GrantsStore) RevokeGroupTable(groupID, connectionID uuid.UUID, table string) (bool, error) {
	tx := s.db.Exec(`DELETE FROM group_table_permissions WHERE group_id = ? AND connection_id = ? AND table_name = ?`,
		groupID, connectionID, table)
	return tx.RowsAffected > 0, tx.Error
}

// ListGroupTableGrants returns a group's table grants on a connection
func (s *GrantsStore) ListGroupTableGrants(groupID, connectionID uuid.UUID) ([]model.GroupTableGrant, error) {
	var grants []model.GroupTableGrant
	tx := s.db.Where("group_id = ? AND connection_id = ?", groupID, connectionID).Order("table_name").Find(&grants)
	return grants, tx.Error
}
