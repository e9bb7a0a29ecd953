package gorm

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/permission"
	"github.com/tablegate/tablegate/pkg/server/store"
)

// Ensure AuthzStore implements store.AuthzStore
var _ store.AuthzStore = (*AuthzStore)(nil)

// AuthzStore implements store.AuthzStore using GORM. It loads the grant
// rows relevant to one check and hands them to the resolver. Any load
// error denies.
type AuthzStore struct {
	db *gorm.DB
}

// NewAuthzStore creates a new AuthzStore
func NewAuthzStore(db *gorm.DB) *AuthzStore {
	return &AuthzStore{db: db}
}

// ResolveTableAccess decides the user's access to one table of a connection
func (s *AuthzStore) ResolveTableAccess(user *model.User, connectionID uuid.UUID, table string) (permission.Decision, error) {
	actor, err := s.loadActor(user, connectionID)
	if err != nil {
		return permission.Deny, err
	}
	snap, err := s.LoadSnapshot(user.ID, connectionID, table)
	if err != nil {
		return permission.Deny, err
	}
	return permission.Resolve(actor, snap, table), nil
}

// ResolveConnectionAccess decides the user's access to a connection as a whole
func (s *AuthzStore) ResolveConnectionAccess(user *model.User, connectionID uuid.UUID) (permission.Decision, error) {
	actor, err := s.loadActor(user, connectionID)
	if err != nil {
		return permission.Deny, err
	}
	snap, err := s.LoadSnapshot(user.ID, connectionID, "")
	if err != nil {
		return permission.Deny, err
	}
	return permission.ResolveConnection(actor, snap), nil
}

// LoadSnapshot fetches the grant rows relevant to one check. An empty table
// name skips the table grant queries.
func (s *AuthzStore) LoadSnapshot(userID, connectionID uuid.UUID, table string) (permission.Snapshot, error) {
	var snap permission.Snapshot

	var userConn []model.UserConnectionGrant
	tx := s.db.Where("user_id = ? AND connection_id = ?", userID, connectionID).Limit(1).Find(&userConn)
	if tx.Error != nil {
		return permission.Snapshot{}, tx.Error
	}
	if len(userConn) > 0 {
		snap.UserConnection = &permission.ConnectionGrant{
			Level:     userConn[0].Permission,
			AllTables: userConn[0].AllTables,
		}
	}

	if table != "" {
		var userTable []model.UserTableGrant
		tx = s.db.Where("user_id = ? AND connection_id = ? AND table_name = ?", userID, connectionID, table).
			Limit(1).Find(&userTable)
		if tx.Error != nil {
			return permission.Snapshot{}, tx.Error
		}
		if len(userTable) > 0 {
			snap.UserTable = &permission.TableGrant{Level: userTable[0].Permission}
		}
	}

	// Group grants only matter when the user has no connection-level grant
	// of their own, but they are loaded unconditionally so the snapshot is
	// complete for callers inspecting it.
	type connRow struct {
		Permission permission.AccessLevel `gorm:"column:permission"`
		AllTables  bool                   `gorm:"column:all_tables"`
	}
	var connRows []connRow
	tx = s.db.Raw(`
		SELECT gcp.permission, gcp.all_tables
		FROM group_connection_permissions gcp
		JOIN group_members gm ON gm.group_id = gcp.group_id
		WHERE gm.user_id = ? AND gcp.connection_id = ?
	`, userID, connectionID).Scan(&connRows)
	if tx.Error != nil {
		return permission.Snapshot{}, tx.Error
	}
	for _, row := range connRows {
		snap.GroupConnections = append(snap.GroupConnections, permission.ConnectionGrant{
			Level:     row.Permission,
			AllTables: row.AllTables,
		})
	}

	if table != "" {
		type tableRow struct {
			Permission permission.AccessLevel `gorm:"column:permission"`
		}
		var tableRows []tableRow
		tx = s.db.Raw(`
			SELECT gtp.permission
			FROM group_table_permissions gtp
			JOIN group_members gm ON gm.group_id = gtp.group_id
			WHERE gm.user_id = ? AND gtp.connection_id = ? AND gtp.table_name = ?
		`, userID, connectionID, table).Scan(&tableRows)
		if tx.Error != nil {
			return permission.Snapshot{}, tx.Error
		}
		for _, row := range tableRows {
			snap.GroupTables = append(snap.GroupTables, permission.TableGrant{Level: row.Permission})
		}
	}

	return snap, nil
}

func (s *AuthzStore) loadActor(user *model.User, connectionID uuid.UUID) (permission.Actor, error) {
	actor := permission.Actor{
		UserID: user.ID,
		Role:   user.Role,
	}
	if actor.Role == permission.RoleSuperAdmin {
		// No further lookups needed, super admins always get admin.
		return actor, nil
	}

	var owns bool
	tx := s.db.Raw(`SELECT EXISTS(SELECT 1 FROM saved_connections WHERE id = ? AND owner_user_id = ?)`,
		connectionID, user.ID).Scan(&owns)
	if tx.Error != nil {
		return permission.Actor{}, tx.Error
	}
	actor.OwnsConnection = owns
	return actor, nil
}
