package processos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// Error taxonomy surfaced by every store operation. Callers map these to
// user-facing messages; the store never retries and never leaves the
// snapshot partially mutated on failure.
var (
	ErrPersistence  = errors.New("persistence unreachable")
	ErrNotFound     = errors.New("record not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
)

// Gateway is the durable-storage collaborator behind the store.
type Gateway interface {
	ListProcesses(ctx context.Context) ([]Process, error)
	UpsertProcess(ctx context.Context, p Process) (Process, error)
	DeleteProcess(ctx context.Context, id string) error
	PatchProcessStatus(ctx context.Context, id string, status Status, event TimelineEvent) (Process, error)
}

// Store holds the authoritative in-memory snapshot of all processes for
// the session. Mutations either trust only the gateway's returned or
// refetched representation (Save, AppendStatusEvent) or perform a purely
// local removal that needs no server echo (Remove).
type Store struct {
	gateway Gateway

	loadSeq atomic.Uint64

	mu         sync.RWMutex
	records    []Process
	appliedSeq uint64
}

func NewStore(gateway Gateway) *Store {
	return &Store{gateway: gateway}
}

// Snapshot returns a deep copy of the current process list; callers never
// receive a mutable handle into the store.
func (s *Store) Snapshot() []Process {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Process, len(s.records))
	for i, p := range s.records {
		out[i] = p.Clone()
	}
	return out
}

// Get returns a copy of the process with the given id, if present.
func (s *Store) Get(id string) (Process, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.records {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return Process{}, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// LoadAll replaces the snapshot with the gateway's full process list,
// ordered by opening date descending. Failure leaves the prior snapshot
// untouched. Each load carries a monotonic sequence; a response that
// resolves after a later-issued load has already applied is discarded, so
// an overlapping stale fetch can never overwrite a newer snapshot.
func (s *Store) LoadAll(ctx context.Context) error {
	seq := s.loadSeq.Add(1)

	list, err := s.gateway.ListProcesses(ctx)
	if err != nil {
		return wrapGateway(err)
	}
	SortByOpeningDateDesc(list)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.appliedSeq {
		return nil
	}
	s.appliedSeq = seq
	s.records = list
	snapshotSize.Set(float64(len(s.records)))
	return nil
}

// Save upserts a process by id and then re-synchronizes the whole
// snapshot from the gateway; the store does not trust an optimistic local
// merge for this path.
func (s *Store) Save(ctx context.Context, p Process) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: process id is required", ErrValidation)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, p.Status)
	}
	if _, err := s.gateway.UpsertProcess(ctx, p.Clone()); err != nil {
		return wrapGateway(err)
	}
	return s.LoadAll(ctx)
}

// Remove deletes a process from the gateway and drops it from the
// snapshot locally. Deletion is a plain set-difference with no
// server-derived state to reconcile, so no re-fetch happens.
func (s *Store) Remove(ctx context.Context, id string) error {
	if _, ok := s.Get(id); !ok {
		return fmt.Errorf("%w: process %s", ErrNotFound, id)
	}
	if err := s.gateway.DeleteProcess(ctx, id); err != nil {
		return wrapGateway(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	for _, p := range s.records {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.records = kept
	snapshotSize.Set(float64(len(s.records)))
	return nil
}

// AppendStatusEvent persists a status change plus one appended timeline
// event and replaces the snapshot record with whatever the gateway
// returned, not the locally constructed guess. The existing timeline is
// never mutated in place.
func (s *Store) AppendStatusEvent(ctx context.Context, id string, newStatus Status, event TimelineEvent) error {
	if strings.TrimSpace(event.Detalhes) == "" {
		return fmt.Errorf("%w: missing event description", ErrValidation)
	}
	if !newStatus.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}
	if _, ok := s.Get(id); !ok {
		return fmt.Errorf("%w: process %s", ErrNotFound, id)
	}

	updated, err := s.gateway.PatchProcessStatus(ctx, id, newStatus, event)
	if err != nil {
		return fmt.Errorf("status update failed: %w", wrapGateway(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.records {
		if p.ID == id {
			s.records[i] = updated.Clone()
			break
		}
	}
	return nil
}

func wrapGateway(err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) || errors.Is(err, ErrUnauthorized) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
