package gorm

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/server/store"
)

// Ensure ConnectionsStore implements store.ConnectionsStore
var _ store.ConnectionsStore = (*ConnectionsStore)(nil)

// ConnectionsStore implements store.ConnectionsStore using GORM
type ConnectionsStore struct {
	db *gorm.DB
}

// NewConnectionsStore creates a new ConnectionsStore
func NewConnectionsStore(db *gorm.DB) *ConnectionsStore {
	return &ConnectionsStore{db: db}
}

// CreateConnection inserts a new saved connection
func (s *ConnectionsStore) CreateConnection(conn *model.Connection) error {
	if conn.ID == uuid.Nil {
		conn.ID = uuid.New()
	}
	return s.db.Create(conn).Error
}

// ConnectionByID retrieves a connection
func (s *ConnectionsStore) ConnectionByID(id uuid.UUID) (*model.Connection, error) {
	var conn model.Connection
	tx := s.db.Where("id = ?", id).First(&conn)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrNotFound
		}
		return nil, tx.Error
	}
	return &conn, nil
}

// ListConnections returns connections visible to the user. Organization
// connections are shared; personal connections are only visible to their
// owner, except super admins see everything.
func (s *ConnectionsStore) ListConnections(user *model.User) ([]model.Connection, error) {
	var conns []model.Connection
	if user.IsSuperAdmin() {
		tx := s.db.Order("name").Find(&conns)
		return conns, tx.Error
	}
	tx := s.db.Raw(`
		SELECT *
		FROM saved_connections
		WHERE owner_user_id = ?
		   OR (organization_id IS NOT NULL AND organization_id = ?)
		ORDER BY name
	`, user.ID, user.OrganizationID).Scan(&conns)
	return conns, tx.Error
}

// DeleteConnection removes a connection
func (s *ConnectionsStore) DeleteConnection(id uuid.UUID) (bool, error) {
	tx := s.db.Exec(`DELETE FROM saved_connections WHERE id = ?`, id)
	return tx.RowsAffected > 0, tx.Error
}
