// Package queue defines the admin audit message exchanged over RabbitMQ and
// the consumer that persists it.
package queue

import (
	"time"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/model"
)

// AuditEvent is published after a request passes the admin gate.  It carries
// enough to reconstruct who did what without querying the primary store.
type AuditEvent struct {
	ActorID    string `json:"actor_id"`
	ActorEmail string `json:"actor_email"`
	Method     string `json:"method"`
	Path       string `json:"path"`
	RemoteIP   string `json:"remote_ip"`
	OccurredAt string `json:"occurred_at"` // RFC3339Nano, UTC
}

// NewAuditEvent converts an entry into its wire form.
func NewAuditEvent(e model.AuditEntry) AuditEvent {
	return AuditEvent{
		ActorID:    e.ActorID,
		ActorEmail: e.ActorEmail,
		Method:     e.Method,
		Path:       e.Path,
		RemoteIP:   e.RemoteIP,
		OccurredAt: e.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}

// Entry parses the event back into a storable entry.
func (ev AuditEvent) Entry() (model.AuditEntry, error) {
	at, err := time.Parse(time.RFC3339Nano, ev.OccurredAt)
	if err != nil {
		return model.AuditEntry{}, err
	}
	return model.AuditEntry{
		ActorID:    ev.ActorID,
		ActorEmail: ev.ActorEmail,
		Method:     ev.Method,
		Path:       ev.Path,
		RemoteIP:   ev.RemoteIP,
		OccurredAt: at.UTC(),
	}, nil
}
