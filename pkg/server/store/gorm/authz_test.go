package gorm

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/permission"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock
}

func grantColumns() []string {
	return []string{"id", "user_id", "connection_id", "permission", "all_tables", "granted_at"}
}

func TestLoadSnapshotUserConnectionGrant(t *testing.T) {
	db, mock := newTestDB(t)
	authz := NewAuthzStore(db)

	userID := uuid.New()
	connID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "user_connection_permissions"`).
		WithArgs(userID, connID).
		WillReturnRows(sqlmock.NewRows(grantColumns()).
			AddRow(uuid.New(), userID, connID, "write", true, time.Now()))
	mock.ExpectQuery(`SELECT \* FROM "user_table_permissions"`).
		WithArgs(userID, connID, "invoices").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`FROM group_connection_permissions gcp`).
		WithArgs(userID, connID).
		WillReturnRows(sqlmock.NewRows([]string{"permission", "all_tables"}))
	mock.ExpectQuery(`FROM group_table_permissions gtp`).
		WithArgs(userID, connID, "invoices").
		WillReturnRows(sqlmock.NewRows([]string{"permission"}))

	snap, err := authz.LoadSnapshot(userID, connID, "invoices")
	require.NoError(t, err)
	require.NotNil(t, snap.UserConnection)
	assert.Equal(t, permission.LevelWrite, snap.UserConnection.Level)
	assert.True(t, snap.UserConnection.AllTables)
	assert.Nil(t, snap.UserTable)
	assert.Empty(t, snap.GroupConnections)
	assert.Empty(t, snap.GroupTables)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadSnapshotConnectionLevelSkipsTableQueries(t *testing.T) {
	db, mock := newTestDB(t)
	authz := NewAuthzStore(db)

	userID := uuid.New()
	connID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "user_connection_permissions"`).
		WithArgs(userID, connID).
		WillReturnRows(sqlmock.NewRows(grantColumns()))
	mock.ExpectQuery(`FROM group_connection_permissions gcp`).
		WithArgs(userID, connID).
		WillReturnRows(sqlmock.NewRows([]string{"permission", "all_tables"}).
			AddRow("read", false).
			AddRow("admin", true))

	snap, err := authz.LoadSnapshot(userID, connID, "")
	require.NoError(t, err)
	assert.Nil(t, snap.UserConnection)
	require.Len(t, snap.GroupConnections, 2)
	assert.Equal(t, permission.LevelRead, snap.GroupConnections[0].Level)
	assert.Equal(t, permission.LevelAdmin, snap.GroupConnections[1].Level)
	assert.True(t, snap.GroupConnections[1].AllTables)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveTableAccessOwnerShortCircuit(t *testing.T) {
	db, mock := newTestDB(t)
	authz := NewAuthzStore(db)

	user := &model.User{ID: uuid.New(), Role: permission.RoleMember}
	connID := uuid.New()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM saved_connections`).
		WithArgs(connID, user.ID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT \* FROM "user_connection_permissions"`).
		WithArgs(user.ID, connID).
		WillReturnRows(sqlmock.NewRows(grantColumns()))
	mock.ExpectQuery(`SELECT \* FROM "user_table_permissions"`).
		WithArgs(user.ID, connID, "invoices").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`FROM group_connection_permissions gcp`).
		WithArgs(user.ID, connID).
		WillReturnRows(sqlmock.NewRows([]string{"permission", "all_tables"}))
	mock.ExpectQuery(`FROM group_table_permissions gtp`).
		WithArgs(user.ID, connID, "invoices").
		WillReturnRows(sqlmock.NewRows([]string{"permission"}))

	decision, err := authz.ResolveTableAccess(user, connID, "invoices")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, permission.LevelAdmin, decision.Level)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveTableAccessSuperAdminSkipsLookups(t *testing.T) {
	db, mock := newTestDB(t)
	authz := NewAuthzStore(db)

	user := &model.User{ID: uuid.New(), Role: permission.RoleSuperAdmin}
	connID := uuid.New()

	// Super admins still load the snapshot, but no owner lookup happens.
	mock.ExpectQuery(`SELECT \* FROM "user_connection_permissions"`).
		WithArgs(user.ID, connID).
		WillReturnRows(sqlmock.NewRows(grantColumns()))
	mock.ExpectQuery(`SELECT \* FROM "user_table_permissions"`).
		WithArgs(user.ID, connID, "any").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`FROM group_connection_permissions gcp`).
		WithArgs(user.ID, connID).
		WillReturnRows(sqlmock.NewRows([]string{"permission", "all_tables"}))
	mock.ExpectQuery(`FROM group_table_permissions gtp`).
		WithArgs(user.ID, connID, "any").
		WillReturnRows(sqlmock.NewRows([]string{"permission"}))

	decision, err := authz.ResolveTableAccess(user, connID, "any")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, permission.LevelAdmin, decision.Level)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveConnectionAccessExplicitDeny(t *testing.T) {
	db, mock := newTestDB(t)
	authz := NewAuthzStore(db)

	user := &model.User{ID: uuid.New(), Role: permission.RoleMember}
	connID := uuid.New()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM saved_connections`).
		WithArgs(connID, user.ID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`SELECT \* FROM "user_connection_permissions"`).
		WithArgs(user.ID, connID).
		WillReturnRows(sqlmock.NewRows(grantColumns()).
			AddRow(uuid.New(), user.ID, connID, "none", false, time.Now()))
	mock.ExpectQuery(`FROM group_connection_permissions gcp`).
		WithArgs(user.ID, connID).
		WillReturnRows(sqlmock.NewRows([]string{"permission", "all_tables"}).
			AddRow("admin", true))

	decision, err := authz.ResolveConnectionAccess(user, connID)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)

	assert.NoError(t, mock.ExpectationsWereMet())
}
