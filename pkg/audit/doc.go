// Package audit emits security audit events for authentication, permission
// checks, and grant administration. Events go to stdout in RFC5424 syslog
// format and, when TABLEGATE_AUDIT_DATABASE_URL is set, to an audit
// database as well.
package audit
