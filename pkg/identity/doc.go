// Package identity carries the authenticated request identity.
//
// The JWT middleware builds an Identity from validated token claims and
// stores it in the request context; handlers read it back with Get. Nothing
// below the handlers reads ambient identity: the permission resolver takes
// an explicit Actor argument instead.
package identity
