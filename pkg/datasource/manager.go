package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tablegate/tablegate/pkg/crypto"
	"github.com/tablegate/tablegate/pkg/model"
)

// Manager keeps one pool per saved connection, opened lazily on first use
// and reused until Close. The cipher decrypts stored passwords just long
// enough to build the DSN.
type Manager struct {
	cipher *crypto.Cipher

	maxOpenConns   int
	connectTimeout time.Duration

	mu    sync.Mutex
	pools map[uuid.UUID]*Source
}

// NewManager creates a pool manager.
func NewManager(cipher *crypto.Cipher, maxOpenConns int, connectTimeout time.Duration) *Manager {
	if maxOpenConns <= 0 {
		maxOpenConns = 5
	}
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	return &Manager{
		cipher:         cipher,
		maxOpenConns:   maxOpenConns,
		connectTimeout: connectTimeout,
		pools:          make(map[uuid.UUID]*Source),
	}
}

// SourceFor returns the pool for a saved connection, opening and verifying
// it on first use.
func (m *Manager) SourceFor(ctx context.Context, conn *model.Connection) (*Source, error) {
	m.mu.Lock()
	if source, ok := m.pools[conn.ID]; ok {
		m.mu.Unlock()
		return source, nil
	}
	m.mu.Unlock()

	password, err := m.cipher.DecryptString(conn.EncryptedPassword)
	if err != nil {
		return nil, fmt.Errorf("decrypt connection password: %w", err)
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=prefer&connect_timeout=%d",
		url.QueryEscape(conn.Username),
		url.QueryEscape(password),
		conn.Host,
		conn.Port,
		url.PathEscape(conn.DatabaseName),
		int(m.connectTimeout.Seconds()),
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	db.SetMaxOpenConns(m.maxOpenConns)

	pingCtx, cancel := context.WithTimeout(ctx, m.connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s:%d/%s: %w", conn.Host, conn.Port, conn.DatabaseName, err)
	}

	source := NewSource(db)

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.pools[conn.ID]; ok {
		// Lost the race to another request; keep theirs.
		source.Close()
		return existing, nil
	}
	m.pools[conn.ID] = source

	log.WithFields(log.Fields{
		"connection": conn.ID,
		"host":       conn.Host,
		"database":   conn.DatabaseName,
	}).Info("data source pool opened")
	return source, nil
}

// Evict closes and forgets the pool for a connection, if open. Used when a
// saved connection is deleted.
func (m *Manager) Evict(connectionID uuid.UUID) {
	m.mu.Lock()
	source, ok := m.pools[connectionID]
	delete(m.pools, connectionID)
	m.mu.Unlock()

	if ok {
		source.Close()
	}
}

// Close closes every open pool.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, source := range m.pools {
		source.Close()
		delete(m.pools, id)
	}
}
