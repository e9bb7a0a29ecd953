package identity

import (
	"context"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/tablegate/tablegate/pkg/permission"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Identity represents the authenticated identity for a request.
// It combines token claims with request-specific context.
type Identity struct {
	// Token claims
	UserID         uuid.UUID
	OrganizationID *uuid.UUID
	Email          string
	Role           permission.Role
	IssuedAt       time.Time
	ExpiresAt      time.Time

	// Request context
	RemoteIP net.IP
}

// IsSuperAdmin reports whether the identity holds the global super_admin role.
func (i *Identity) IsSuperAdmin() bool {
	return i.Role == permission.RoleSuperAdmin
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
