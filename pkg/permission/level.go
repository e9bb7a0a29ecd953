package permission

//go:generate go run github.com/dmarkham/enumer -type AccessLevel -trimprefix Level -transform lower -json -sql -output level.gen.go

// AccessLevel is the ordered set of access levels a grant can carry.
// The ordering is significant: group resolution takes the maximum.
type AccessLevel int

const (
	LevelNone AccessLevel = iota
	LevelRead
	LevelWrite
	LevelAdmin
)

// CanRead reports whether the level permits reading rows and schema.
func (l AccessLevel) CanRead() bool {
	return l >= LevelRead
}

// CanWrite reports whether the level permits mutating rows.
func (l AccessLevel) CanWrite() bool {
	return l >= LevelWrite
}

// Decision is the outcome of a resolution. The zero value is Deny, which is
// distinct from a granted LevelNone: Deny means no grant authorized access,
// while a stored none is an explicit override consumed during resolution.
type Decision struct {
	Allowed bool
	Level   AccessLevel
}

// Deny is the fallback outcome when no grant authorizes access.
var Deny = Decision{}

// Grant returns an allowed decision at the given level.
func Grant(level AccessLevel) Decision {
	return Decision{Allowed: true, Level: level}
}

// CanRead reports whether the decision permits reading.
func (d Decision) CanRead() bool {
	return d.Allowed && d.Level.CanRead()
}

// CanWrite reports whether the decision permits writing.
func (d Decision) CanWrite() bool {
	return d.Allowed && d.Level.CanWrite()
}
