package contracts

import "time"

// Process mutation actions carried on the audit bus.
const (
	ActionCreated       = "processo.criado"
	ActionUpdated       = "processo.atualizado"
	ActionStatusChanged = "processo.status-alterado"
	ActionDeleted       = "processo.excluido"
)

// ProcessEvent is published by the process API after every successful
// mutation and consumed by the audit sink.
type ProcessEvent struct {
	EventID     string    `json:"event_id"`
	ProcessID   string    `json:"process_id"`
	Numero      string    `json:"numero"`
	Action      string    `json:"action"`
	Status      string    `json:"status"`
	ActorUserID string    `json:"actor_user_id"`
	ActorName   string    `json:"actor_name"`
	Detalhes    string    `json:"detalhes,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
	ShardID     int       `json:"shard_id"`
}
