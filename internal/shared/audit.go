package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditEvent records who changed what in which scope.
type AuditEvent struct {
	ActorID  string
	Scope    Scope
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// AuditLogger writes events into audit_events.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the event.
func (l *AuditLogger) Record(ctx context.Context, event AuditEvent) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if event.Action == "" || event.Entity == "" || event.EntityID == "" {
		return errors.New("audit event requires action/entity/entity_id")
	}
	metaJSON, err := json.Marshal(event.Meta)
	if err != nil {
		return err
	}
	var at any
	if !event.At.IsZero() {
		at = event.At
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO audit_events (actor_id, scope, action, entity, entity_id, meta, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))`,
		event.ActorID, string(event.Scope), event.Action, event.Entity, event.EntityID, metaJSON, at)
	return err
}
