package processos

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeGateway struct {
	mu   sync.Mutex
	byID map[string]Process

	listErr   error
	upsertErr error
	deleteErr error
	patchErr  error

	listFn func(call int) ([]Process, error)
	calls  int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{byID: map[string]Process{}}
}

func (f *fakeGateway) list() []Process {
	out := make([]Process, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, p.Clone())
	}
	return out
}

func (f *fakeGateway) ListProcesses(ctx context.Context) ([]Process, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	fn := f.listFn
	err := f.listErr
	snapshot := f.list()
	f.mu.Unlock()

	if fn != nil {
		return fn(call)
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (f *fakeGateway) UpsertProcess(ctx context.Context, p Process) (Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return Process{}, f.upsertErr
	}
	f.byID[p.ID] = p.Clone()
	return p.Clone(), nil
}

func (f *fakeGateway) DeleteProcess(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return fmt.Errorf("%w: process %s", ErrNotFound, id)
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeGateway) PatchProcessStatus(ctx context.Context, id string, status Status, event TimelineEvent) (Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.patchErr != nil {
		return Process{}, f.patchErr
	}
	p, ok := f.byID[id]
	if !ok {
		return Process{}, fmt.Errorf("%w: process %s", ErrNotFound, id)
	}
	p = p.Clone()
	p.Status = status
	p.Timeline = append(p.Timeline, event)
	f.byID[id] = p
	return p.Clone(), nil
}

func testProcess(id, numero string) Process {
	return Process{
		ID:            id,
		Numero:        numero,
		Objeto:        "Aquisição de mobiliário escolar",
		Secretaria:    "Secretaria de Educação",
		Status:        StatusEmAnalise,
		DataAbertura:  "15/01/2025",
		ValorEstimado: "R$ 10.000,00",
		Timeline:      []TimelineEvent{SeedEvent(time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC))},
	}
}

func TestSaveThenLoadAllReturnsSavedSet(t *testing.T) {
	gw := newFakeGateway()
	store := NewStore(gw)

	ids := []string{"p1", "p2", "p3"}
	for i, id := range ids {
		p := testProcess(id, fmt.Sprintf("2025/%03d", i+1))
		if err := store.Save(context.Background(), p); err != nil {
			t.Fatalf("Save(%s) error: %v", id, err)
		}
	}

	if err := store.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	snapshot := store.Snapshot()
	if len(snapshot) != len(ids) {
		t.Fatalf("snapshot size = %d, want %d", len(snapshot), len(ids))
	}
	seen := map[string]bool{}
	for _, p := range snapshot {
		if seen[p.ID] {
			t.Fatalf("duplicate id in snapshot: %s", p.ID)
		}
		seen[p.ID] = true
	}
	for _, id := range ids {
		if !seen[id] {
			t.Fatalf("saved id %s missing from snapshot", id)
		}
	}
}

func TestSaveRequiresID(t *testing.T) {
	store := NewStore(newFakeGateway())
	p := testProcess("", "2025/001")
	err := store.Save(context.Background(), p)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSaveFailureLeavesSnapshotUnchanged(t *testing.T) {
	gw := newFakeGateway()
	store := NewStore(gw)
	if err := store.Save(context.Background(), testProcess("p1", "2025/001")); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	gw.upsertErr = errors.New("connection refused")
	err := store.Save(context.Background(), testProcess("p2", "2025/002"))
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("snapshot mutated on failure: len = %d", store.Len())
	}
}

func TestLoadAllFailureIsNonDestructive(t *testing.T) {
	gw := newFakeGateway()
	store := NewStore(gw)
	if err := store.Save(context.Background(), testProcess("p1", "2025/001")); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	gw.listErr = errors.New("connection refused")
	if err := store.LoadAll(context.Background()); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("snapshot lost on failed load: len = %d", store.Len())
	}
}

func TestLoadAllDiscardsStaleResponse(t *testing.T) {
	gw := newFakeGateway()
	store := NewStore(gw)

	stale := []Process{testProcess("old", "2024/001")}
	fresh := []Process{testProcess("new", "2025/001")}

	firstBlocked := make(chan struct{})
	release := make(chan struct{})
	gw.listFn = func(call int) ([]Process, error) {
		if call == 1 {
			close(firstBlocked)
			<-release
			return stale, nil
		}
		return fresh, nil
	}

	done := make(chan error, 1)
	go func() { done <- store.LoadAll(context.Background()) }()
	<-firstBlocked

	// A later-issued load resolves first.
	if err := store.LoadAll(context.Background()); err != nil {
		t.Fatalf("second LoadAll error: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first LoadAll error: %v", err)
	}

	snapshot := store.Snapshot()
	if len(snapshot) != 1 || snapshot[0].ID != "new" {
		t.Fatalf("stale response overwrote newer snapshot: %+v", snapshot)
	}
}

func TestRemoveDropsRecordLocally(t *testing.T) {
	gw := newFakeGateway()
	store := NewStore(gw)
	for _, id := range []string{"p1", "p2"} {
		if err := store.Save(context.Background(), testProcess(id, id)); err != nil {
			t.Fatalf("Save error: %v", err)
		}
	}
	callsBefore := gw.calls

	if err := store.Remove(context.Background(), "p1"); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if gw.calls != callsBefore {
		t.Fatal("Remove should not trigger a re-fetch")
	}
	if _, ok := store.Get("p1"); ok {
		t.Fatal("removed record still present in snapshot")
	}
	if _, ok := store.Get("p2"); !ok {
		t.Fatal("unrelated record lost on removal")
	}
}

func TestRemoveUnknownIDFails(t *testing.T) {
	gw := newFakeGateway()
	store := NewStore(gw)
	if err := store.Save(context.Background(), testProcess("p1", "2025/001")); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	err := store.Remove(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("snapshot changed on failed removal: len = %d", store.Len())
	}
}

func TestAppendStatusEventGrowsTimelineByOne(t *testing.T) {
	gw := newFakeGateway()
	store := NewStore(gw)
	if err := store.Save(context.Background(), testProcess("p1", "2025/001")); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	before, _ := store.Get("p1")

	event := TimelineEvent{
		Data:        "20/01/2025 14:30:00",
		Evento:      "Status alterado para: Finalizado",
		Responsavel: "Maria Souza",
		Detalhes:    "done",
	}
	if err := store.AppendStatusEvent(context.Background(), "p1", StatusFinalizado, event); err != nil {
		t.Fatalf("AppendStatusEvent error: %v", err)
	}

	after, _ := store.Get("p1")
	if after.Status != StatusFinalizado {
		t.Fatalf("status = %q, want finalizado", after.Status)
	}
	if len(after.Timeline) != len(before.Timeline)+1 {
		t.Fatalf("timeline length = %d, want %d", len(after.Timeline), len(before.Timeline)+1)
	}
	for i, prev := range before.Timeline {
		if after.Timeline[i] != prev {
			t.Fatalf("existing timeline entry %d mutated: %+v vs %+v", i, after.Timeline[i], prev)
		}
	}
	if after.Timeline[len(after.Timeline)-1] != event {
		t.Fatalf("appended entry mismatch: %+v", after.Timeline[len(after.Timeline)-1])
	}
}

func TestAppendStatusEventRequiresDetalhes(t *testing.T) {
	gw := newFakeGateway()
	store := NewStore(gw)
	if err := store.Save(context.Background(), testProcess("p1", "2025/001")); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	before, _ := store.Get("p1")

	err := store.AppendStatusEvent(context.Background(), "p1", StatusFinalizado, TimelineEvent{Detalhes: "  "})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	after, _ := store.Get("p1")
	if len(after.Timeline) != len(before.Timeline) || after.Status != before.Status {
		t.Fatal("snapshot mutated on rejected append")
	}
}

func TestAppendStatusEventUnknownID(t *testing.T) {
	store := NewStore(newFakeGateway())
	err := store.AppendStatusEvent(context.Background(), "missing", StatusFinalizado, TimelineEvent{Detalhes: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendStatusEventGatewayFailure(t *testing.T) {
	gw := newFakeGateway()
	store := NewStore(gw)
	if err := store.Save(context.Background(), testProcess("p1", "2025/001")); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	before, _ := store.Get("p1")

	gw.patchErr = errors.New("connection reset")
	err := store.AppendStatusEvent(context.Background(), "p1", StatusFinalizado, TimelineEvent{Detalhes: "done"})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	after, _ := store.Get("p1")
	if len(after.Timeline) != len(before.Timeline) || after.Status != before.Status {
		t.Fatal("snapshot mutated on failed append")
	}
}

func TestAppendStatusEventUsesGatewayRow(t *testing.T) {
	gw := newFakeGateway()
	store := NewStore(gw)
	if err := store.Save(context.Background(), testProcess("p1", "2025/001")); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	// The gateway is authoritative: a server-side entry that arrived
	// between load and patch must show up in the snapshot.
	serverSide := gw.byID["p1"].Clone()
	serverSide.Timeline = append(serverSide.Timeline, TimelineEvent{
		Data:   "19/01/2025 10:00:00",
		Evento: "Documento anexado",
	})
	gw.byID["p1"] = serverSide

	if err := store.AppendStatusEvent(context.Background(), "p1", StatusPublicado, TimelineEvent{Detalhes: "publicado no diário"}); err != nil {
		t.Fatalf("AppendStatusEvent error: %v", err)
	}
	after, _ := store.Get("p1")
	if len(after.Timeline) != 3 {
		t.Fatalf("timeline length = %d, want 3 (seed + server-side + patch)", len(after.Timeline))
	}
	if after.Timeline[1].Evento != "Documento anexado" {
		t.Fatalf("server-side entry missing from snapshot: %+v", after.Timeline)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	gw := newFakeGateway()
	store := NewStore(gw)
	if err := store.Save(context.Background(), testProcess("p1", "2025/001")); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	snapshot := store.Snapshot()
	snapshot[0].Numero = "tampered"
	snapshot[0].Timeline[0].Detalhes = "tampered"

	fresh, _ := store.Get("p1")
	if fresh.Numero == "tampered" || fresh.Timeline[0].Detalhes == "tampered" {
		t.Fatal("snapshot aliases store state")
	}
}
