package processos

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gestao-licitacoes/tracker/internal/contracts"
	"github.com/gestao-licitacoes/tracker/internal/format"
	"github.com/gestao-licitacoes/tracker/internal/sharding"
	"github.com/google/uuid"
	"github.com/nats-io/nuid"
)

type PublishFunc func(subject string, payload []byte) error

// Actor identifies the authenticated user behind a mutation.
type Actor struct {
	UserID string
	Name   string
}

func (a Actor) displayName() string {
	if strings.TrimSpace(a.Name) == "" {
		return "Sistema"
	}
	return a.Name
}

// Service drives the store on behalf of the HTTP layer: it assigns ids,
// seeds timelines, applies currency formatting at write time and publishes
// an audit event per successful mutation. Publishing is best-effort and
// never fails the mutation itself.
type Service struct {
	Store      *Store
	Publish    PublishFunc
	Now        func() time.Time
	NewID      func() string
	NewEventID func() string
}

func NewService(store *Store, publish PublishFunc) *Service {
	return &Service{
		Store:      store,
		Publish:    publish,
		Now:        func() time.Time { return time.Now() },
		NewID:      uuid.NewString,
		NewEventID: nuid.Next,
	}
}

// List re-synchronizes the snapshot from the gateway and returns it.
func (s *Service) List(ctx context.Context) ([]Process, error) {
	if err := s.Store.LoadAll(ctx); err != nil {
		mutationsTotal.WithLabelValues("load", "error").Inc()
		return nil, err
	}
	mutationsTotal.WithLabelValues("load", "ok").Inc()
	return s.Store.Snapshot(), nil
}

// Create persists a new process. A missing id is assigned, a missing
// opening date is stamped, the estimated value is stored formatted and an
// empty timeline is seeded with the opening event.
func (s *Service) Create(ctx context.Context, actor Actor, p Process) (Process, error) {
	now := s.Now()
	if strings.TrimSpace(p.ID) == "" {
		p.ID = s.NewID()
	}
	if p.Status == "" {
		p.Status = StatusEmAnalise
	}
	if strings.TrimSpace(p.DataAbertura) == "" {
		p.DataAbertura = now.Format(DateLayout)
	}
	p.ValorEstimado = format.FormatCurrency(p.ValorEstimado)
	if len(p.Timeline) == 0 {
		p.Timeline = []TimelineEvent{SeedEvent(now)}
	}

	if err := s.Store.Save(ctx, p); err != nil {
		mutationsTotal.WithLabelValues("create", "error").Inc()
		return Process{}, err
	}
	mutationsTotal.WithLabelValues("create", "ok").Inc()
	s.publishEvent(contracts.ActionCreated, p, actor, "")

	if saved, ok := s.Store.Get(p.ID); ok {
		return saved, nil
	}
	return p, nil
}

// Update replaces every field of an existing process (full upsert).
func (s *Service) Update(ctx context.Context, actor Actor, id string, p Process) (Process, error) {
	if strings.TrimSpace(p.ID) == "" {
		p.ID = id
	}
	if p.ID != id {
		return Process{}, fmt.Errorf("%w: body id %q does not match path id %q", ErrValidation, p.ID, id)
	}
	p.ValorEstimado = format.FormatCurrency(p.ValorEstimado)

	if err := s.Store.Save(ctx, p); err != nil {
		mutationsTotal.WithLabelValues("update", "error").Inc()
		return Process{}, err
	}
	mutationsTotal.WithLabelValues("update", "ok").Inc()
	s.publishEvent(contracts.ActionUpdated, p, actor, "")

	if saved, ok := s.Store.Get(p.ID); ok {
		return saved, nil
	}
	return p, nil
}

// UpdateStatus appends one timeline event and moves the process to the
// new status. The event's actor is the authenticated user.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, id string, newStatus Status, detalhes string) (Process, error) {
	event := TimelineEvent{
		Data:        s.Now().Format(TimestampLayout),
		Evento:      "Status alterado para: " + newStatus.Label(),
		Responsavel: actor.displayName(),
		Detalhes:    detalhes,
	}
	if err := s.Store.AppendStatusEvent(ctx, id, newStatus, event); err != nil {
		mutationsTotal.WithLabelValues("status", "error").Inc()
		return Process{}, err
	}
	mutationsTotal.WithLabelValues("status", "ok").Inc()

	updated, ok := s.Store.Get(id)
	if !ok {
		return Process{}, fmt.Errorf("%w: process %s", ErrNotFound, id)
	}
	s.publishEvent(contracts.ActionStatusChanged, updated, actor, detalhes)
	return updated, nil
}

// Delete removes a process.
func (s *Service) Delete(ctx context.Context, actor Actor, id string) error {
	removed, _ := s.Store.Get(id)
	if err := s.Store.Remove(ctx, id); err != nil {
		mutationsTotal.WithLabelValues("delete", "error").Inc()
		return err
	}
	mutationsTotal.WithLabelValues("delete", "ok").Inc()
	removed.ID = id
	s.publishEvent(contracts.ActionDeleted, removed, actor, "")
	return nil
}

func (s *Service) publishEvent(action string, p Process, actor Actor, detalhes string) {
	if s.Publish == nil {
		return
	}
	evt := contracts.ProcessEvent{
		EventID:     s.NewEventID(),
		ProcessID:   p.ID,
		Numero:      p.Numero,
		Action:      action,
		Status:      string(p.Status),
		ActorUserID: actor.UserID,
		ActorName:   actor.displayName(),
		Detalhes:    detalhes,
		OccurredAt:  s.Now().UTC(),
		ShardID:     sharding.GetShardID(p.ID),
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		log.Printf("encode audit event for %s: %v", p.ID, err)
		return
	}
	if err := s.Publish(sharding.GetSubject(p.ID), payload); err != nil {
		log.Printf("publish audit event for %s: %v", p.ID, err)
	}
}
