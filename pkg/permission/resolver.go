package permission

// Resolve decides the actor's access to a table on a connection, given the
// grants in the snapshot. An empty table name means a connection-level check:
// table grants are skipped entirely and the connection-level outcome is
// returned directly.
//
// The decision is total and deterministic. Unknown connections, unknown
// tables, and actors with no groups are not errors; they simply match no
// grants and fall through to Deny.
func Resolve(actor Actor, snap Snapshot, table string) Decision {
	// Super admins dominate all grants unconditionally.
	if actor.Role == RoleSuperAdmin {
		return Grant(LevelAdmin)
	}

	// So do connection owners.
	if actor.OwnsConnection {
		return Grant(LevelAdmin)
	}

	if user := snap.UserConnection; user != nil {
		// A stored none is an absolute override: deny without
		// consulting group grants, even ones that would grant admin.
		if user.Level == LevelNone {
			return Deny
		}

		if table == "" {
			return Grant(user.Level)
		}

		// A table grant fully overrides the connection level for its
		// table, whether weaker or stronger.
		if tg := snap.UserTable; tg != nil {
			return Grant(tg.Level)
		}

		if user.AllTables {
			return Grant(user.Level)
		}

		// Grant restricted to named tables and this one isn't named.
		return Deny
	}

	// No user-connection grant: the only case where groups are consulted.
	if len(snap.GroupConnections) == 0 {
		return Deny
	}

	best := LevelNone
	allTables := false
	for _, g := range snap.GroupConnections {
		if g.Level > best {
			best = g.Level
		}
		if g.AllTables {
			allTables = true
		}
	}
	if best == LevelNone {
		// Group grants never store none; fail closed if one does.
		return Deny
	}

	if table == "" {
		return Grant(best)
	}

	if len(snap.GroupTables) > 0 {
		bestTable := LevelNone
		for _, tg := range snap.GroupTables {
			if tg.Level > bestTable {
				bestTable = tg.Level
			}
		}
		return Grant(bestTable)
	}

	if allTables {
		return Grant(best)
	}

	return Deny
}

// ResolveConnection is a connection-level check: it ignores table grants and
// returns the level the actor holds on the connection as a whole.
func ResolveConnection(actor Actor, snap Snapshot) Decision {
	return Resolve(actor, snap, "")
}
