// Package model defines the database models for tablegate.
//
// This package contains GORM models that map to the tablegate control-plane
// schema. Managed target databases are never touched through these models;
// they are reached through pkg/datasource.
//
// # Core Models
//
//   - Organization: tenant root owning users, groups, and connections
//   - User: principal with a global role (super_admin or member)
//   - Group: named set of users within one organization
//   - GroupMembership: user <-> group many-to-many rows
//   - Connection: saved target database with encrypted credentials
//   - UserConnectionGrant / UserTableGrant: user-level permission rows
//   - GroupConnectionGrant / GroupTableGrant: group-level permission rows
//
// # Database Schema
//
// The control plane uses PostgreSQL with the following key tables:
//
//   - organizations, app_users, groups, group_members
//   - saved_connections: connection metadata, password AES-GCM encrypted
//   - user_connection_permissions: unique (user_id, connection_id)
//   - user_table_permissions: unique (user_id, connection_id, table_name)
//   - group_connection_permissions: unique (group_id, connection_id)
//   - group_table_permissions: unique (group_id, connection_id, table_name)
//
// The grant uniqueness constraints are load-bearing: the permission resolver
// assumes at most one row per key.
package model
