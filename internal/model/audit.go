package model

import "time"

// AuditEntry models a row in the MySQL `admin_audit` table: one successful
// pass through the admin gate.
type AuditEntry struct {
	ID         uint64    // admin_audit.id
	ActorID    string    // admin_audit.actor_id (user ObjectID hex)
	ActorEmail string    // admin_audit.actor_email
	Method     string    // admin_audit.method
	Path       string    // admin_audit.path
	RemoteIP   string    // admin_audit.remote_ip
	OccurredAt time.Time // admin_audit.occurred_at
}
