package auditsink

import (
	"context"

	"github.com/gestao-licitacoes/tracker/internal/contracts"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createAuditTableSQL = `
CREATE TABLE IF NOT EXISTS process_audit (
  event_id text PRIMARY KEY,
  process_id text NOT NULL,
  numero text NOT NULL DEFAULT '',
  action text NOT NULL,
  status text NOT NULL DEFAULT '',
  actor_user_id text NOT NULL DEFAULT '',
  actor_name text NOT NULL DEFAULT '',
  detalhes text NOT NULL DEFAULT '',
  shard_id integer NOT NULL,
  occurred_at timestamptz NOT NULL,
  inserted_at timestamptz NOT NULL DEFAULT now()
)`

const insertAuditEventSQL = `
INSERT INTO process_audit (
  event_id, process_id, numero, action, status,
  actor_user_id, actor_name, detalhes, shard_id, occurred_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (event_id) DO NOTHING
`

// EventRepository appends process audit events. Insertion is idempotent
// on event_id so redelivered messages are harmless.
type EventRepository struct {
	Pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{Pool: pool}
}

func (r *EventRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.Pool.Exec(ctx, createAuditTableSQL)
	return err
}

func (r *EventRepository) InsertEvent(ctx context.Context, event contracts.ProcessEvent) error {
	_, err := r.Pool.Exec(ctx, insertAuditEventSQL,
		event.EventID,
		event.ProcessID,
		event.Numero,
		event.Action,
		event.Status,
		event.ActorUserID,
		event.ActorName,
		event.Detalhes,
		event.ShardID,
		event.OccurredAt,
	)
	return err
}
