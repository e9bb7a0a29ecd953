package audit

import "fmt"

// CheckEvent represents a permission check audit event
type CheckEvent struct {
	UserID       string
	ClientIP     string
	ConnectionID string
	Table        string
	Level        string
	Allowed      bool
}

func (e CheckEvent) MessageID() string {
	return "check"
}

func (e CheckEvent) Message() string {
	subject := e.ConnectionID
	if e.Table != "" {
		subject += "/" + e.Table
	}
	if e.Allowed {
		return fmt.Sprintf("%s checked access on %s: %s", e.UserID, subject, e.Level)
	}
	return fmt.Sprintf("%s checked access on %s: denied", e.UserID, subject)
}

func (e CheckEvent) Severity() Severity {
	return SeverityInfo
}

func (e CheckEvent) Facility() int {
	return FacilityAuthPriv
}

func (e CheckEvent) StructuredData() map[string]map[string]string {
	result := "success"
	if !e.Allowed {
		result = "failure"
	}
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.UserID,
		},
		SDIDSubject: {
			"connection": e.ConnectionID,
			"level":      e.Level,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "check",
			"result":    result,
		},
	}
	if e.Table != "" {
		sd[SDIDSubject]["table"] = e.Table
	}
	return sd
}
