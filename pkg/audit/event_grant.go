package audit

import "fmt"

// GrantEvent represents a grant or revoke of a permission
type GrantEvent struct {
	ActorID      string
	ClientIP     string
	SubjectKind  string // "user" or "group"
	SubjectID    string
	ConnectionID string
	Table        string
	Level        string
	Revoked      bool
}

func (e GrantEvent) MessageID() string {
	if e.Revoked {
		return "revoke"
	}
	return "grant"
}

func (e GrantEvent) Message() string {
	target := e.ConnectionID
	if e.Table != "" {
		target += "/" + e.Table
	}
	if e.Revoked {
		return fmt.Sprintf("%s revoked %s %s's access to %s", e.ActorID, e.SubjectKind, e.SubjectID, target)
	}
	return fmt.Sprintf("%s granted %s %s level %s on %s", e.ActorID, e.SubjectKind, e.SubjectID, e.Level, target)
}

func (e GrantEvent) Severity() Severity {
	return SeverityNotice
}

func (e GrantEvent) Facility() int {
	return FacilityAuthPriv
}

func (e GrantEvent) StructuredData() map[string]map[string]string {
	operation := "grant"
	if e.Revoked {
		operation = "revoke"
	}
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.ActorID,
		},
		SDIDSubject: {
			"kind":       e.SubjectKind,
			"subject":    e.SubjectID,
			"connection": e.ConnectionID,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": operation,
		},
	}
	if e.Table != "" {
		sd[SDIDSubject]["table"] = e.Table
	}
	if !e.Revoked {
		sd[SDIDSubject]["level"] = e.Level
	}
	return sd
}
