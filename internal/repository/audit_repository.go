package repository

import (
	"context"
	"database/sql"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/model"
)

// AuditRepo writes admin audit rows to MySQL.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// Insert stores e and returns the generated row id.
func (r *AuditRepo) Insert(ctx context.Context, e model.AuditEntry) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO admin_audit (actor_id, actor_email, method, path, remote_ip, occurred_at) VALUES (?,?,?,?,?,?)",
		e.ActorID, e.ActorEmail, e.Method, e.Path, e.RemoteIP, e.OccurredAt.UTC())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByActor returns the most recent entries for one admin, newest first.
func (r *AuditRepo) ListByActor(ctx context.Context, actorID string, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, actor_id, actor_email, method, path, remote_ip, occurred_at FROM admin_audit WHERE actor_id=? ORDER BY occurred_at DESC, id DESC LIMIT ?",
		actorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorEmail, &e.Method, &e.Path, &e.RemoteIP, &e.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
