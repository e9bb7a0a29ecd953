// Package permission implements the tablegate access-control engine.
//
// The engine decides, for an authenticated actor and a (connection, table)
// target, what level of access is granted. It is a pure function over a
// snapshot of grant rows fetched by the caller; it performs no I/O and holds
// no state, so any number of resolutions may run concurrently.
//
// # Grant model
//
// Four grant kinds feed the resolver:
//
//   - user x connection: level plus an all_tables flag
//   - user x table: level for one named table
//   - group x connection: level plus an all_tables flag
//   - group x table: level for one named table
//
// Levels are ordered none < read < write < admin. A stored level of none on
// a user-connection grant is an explicit deny and is not the same thing as
// the absence of a grant: absence falls through to group grants, none stops
// resolution immediately.
//
// # Resolution order
//
//  1. Super admins get admin on everything.
//  2. The owner of a connection gets admin on it.
//  3. A user-connection grant, when present, decides alone: none denies,
//     a user-table grant overrides the connection level for that table,
//     all_tables=false restricts access to explicitly granted tables.
//  4. Only when no user-connection grant exists are group grants consulted,
//     taking the maximum level across the actor's groups.
//  5. Anything else is Deny.
//
// Deny is a normal return value, never an error.
package permission
