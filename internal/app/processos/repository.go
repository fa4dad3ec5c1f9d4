package processos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresGateway is the durable side of the store. Column names keep the
// quoted camelCase form the records were originally stored with; the
// timeline lives in a JSONB column and status patches append the single
// new event server-side.
type PostgresGateway struct {
	Pool *pgxpool.Pool
}

var _ Gateway = (*PostgresGateway)(nil)

func NewPostgresGateway(pool *pgxpool.Pool) *PostgresGateway {
	return &PostgresGateway{Pool: pool}
}

const createProcessesSQL = `
CREATE TABLE IF NOT EXISTS processes (
  id text PRIMARY KEY,
  numero text NOT NULL DEFAULT '',
  objeto text NOT NULL DEFAULT '',
  secretaria text NOT NULL DEFAULT '',
  status text NOT NULL DEFAULT 'em-analise',
  "dataAbertura" text NOT NULL DEFAULT '',
  "prazoFinal" text NOT NULL DEFAULT '',
  responsavel text NOT NULL DEFAULT '',
  "valorEstimado" text NOT NULL DEFAULT '',
  observacoes text NOT NULL DEFAULT '',
  timeline jsonb NOT NULL DEFAULT '[]'::jsonb
)`

const processColumns = `id, numero, objeto, secretaria, status,
       "dataAbertura", "prazoFinal", responsavel,
       "valorEstimado", observacoes, timeline`

const listProcessesSQL = `
SELECT ` + processColumns + `
FROM processes
ORDER BY "dataAbertura" DESC`

const upsertProcessSQL = `
INSERT INTO processes (` + processColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE SET
  numero = EXCLUDED.numero,
  objeto = EXCLUDED.objeto,
  secretaria = EXCLUDED.secretaria,
  status = EXCLUDED.status,
  "dataAbertura" = EXCLUDED."dataAbertura",
  "prazoFinal" = EXCLUDED."prazoFinal",
  responsavel = EXCLUDED.responsavel,
  "valorEstimado" = EXCLUDED."valorEstimado",
  observacoes = EXCLUDED.observacoes,
  timeline = EXCLUDED.timeline
RETURNING ` + processColumns

const patchProcessStatusSQL = `
UPDATE processes
SET status = $2,
    timeline = COALESCE(timeline, '[]'::jsonb) || $3::jsonb
WHERE id = $1
RETURNING ` + processColumns

func (g *PostgresGateway) EnsureSchema(ctx context.Context) error {
	_, err := g.Pool.Exec(ctx, createProcessesSQL)
	return err
}

func (g *PostgresGateway) ListProcesses(ctx context.Context) ([]Process, error) {
	rows, err := g.Pool.Query(ctx, listProcessesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Process
	for rows.Next() {
		p, err := scanProcess(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (g *PostgresGateway) UpsertProcess(ctx context.Context, p Process) (Process, error) {
	timeline, err := marshalTimeline(p.Timeline)
	if err != nil {
		return Process{}, err
	}
	row := g.Pool.QueryRow(ctx, upsertProcessSQL,
		p.ID, p.Numero, p.Objeto, p.Secretaria, string(p.Status),
		p.DataAbertura, p.PrazoFinal, p.Responsavel,
		p.ValorEstimado, p.Observacoes, timeline,
	)
	return scanProcess(row)
}

func (g *PostgresGateway) DeleteProcess(ctx context.Context, id string) error {
	res, err := g.Pool.Exec(ctx, `DELETE FROM processes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: process %s", ErrNotFound, id)
	}
	return nil
}

func (g *PostgresGateway) PatchProcessStatus(ctx context.Context, id string, status Status, event TimelineEvent) (Process, error) {
	appended, err := json.Marshal([]TimelineEvent{event})
	if err != nil {
		return Process{}, err
	}
	row := g.Pool.QueryRow(ctx, patchProcessStatusSQL, id, string(status), appended)
	p, err := scanProcess(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Process{}, fmt.Errorf("%w: process %s", ErrNotFound, id)
		}
		return Process{}, err
	}
	return p, nil
}

func marshalTimeline(timeline []TimelineEvent) ([]byte, error) {
	if timeline == nil {
		timeline = []TimelineEvent{}
	}
	return json.Marshal(timeline)
}

func scanProcess(row pgx.Row) (Process, error) {
	var p Process
	var status string
	var timeline []byte
	err := row.Scan(
		&p.ID,
		&p.Numero,
		&p.Objeto,
		&p.Secretaria,
		&status,
		&p.DataAbertura,
		&p.PrazoFinal,
		&p.Responsavel,
		&p.ValorEstimado,
		&p.Observacoes,
		&timeline,
	)
	if err != nil {
		return Process{}, err
	}
	p.Status = Status(status)
	if len(timeline) > 0 {
		if err := json.Unmarshal(timeline, &p.Timeline); err != nil {
			return Process{}, fmt.Errorf("decode timeline for %s: %w", p.ID, err)
		}
	}
	return p, nil
}
