package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cosecha/models"
	"cosecha/services/harvest"
	"cosecha/services/identity"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type scriptedTreeSource struct {
	mu    sync.Mutex
	chans map[string]chan []models.Tree
	errs  map[string]chan error
}

func newScriptedTreeSource() *scriptedTreeSource {
	return &scriptedTreeSource{
		chans: make(map[string]chan []models.Tree),
		errs:  make(map[string]chan error),
	}
}

func (s *scriptedTreeSource) WatchLot(_ context.Context, lotID string) (<-chan []models.Tree, <-chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chans[lotID] = make(chan []models.Tree, 8)
	s.errs[lotID] = make(chan error, 8)
	return s.chans[lotID], s.errs[lotID], nil
}

func (s *scriptedTreeSource) push(lotID string, snap []models.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chans[lotID] <- snap
}

type scriptedCollectionSource struct {
	mu    sync.Mutex
	chans map[string]chan []models.CollectionRecord
	errs  map[string]chan error
}

func newScriptedCollectionSource() *scriptedCollectionSource {
	return &scriptedCollectionSource{
		chans: make(map[string]chan []models.CollectionRecord),
		errs:  make(map[string]chan error),
	}
}

func (s *scriptedCollectionSource) WatchLot(_ context.Context, lotID string) (<-chan []models.CollectionRecord, <-chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chans[lotID] = make(chan []models.CollectionRecord, 8)
	s.errs[lotID] = make(chan error, 8)
	return s.chans[lotID], s.errs[lotID], nil
}

func (s *scriptedCollectionSource) push(lotID string, snap []models.CollectionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chans[lotID] <- snap
}

func (s *scriptedCollectionSource) pushError(lotID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[lotID] <- err
}

// gatedResolver optionally blocks every lookup until the gate is released,
// simulating a slow directory.
type gatedResolver struct {
	names map[string]string
	gate  chan struct{}
}

func (r *gatedResolver) Resolve(_ context.Context, userID, denormalized string) string {
	if r.gate != nil {
		<-r.gate
	}
	if name, ok := r.names[userID]; ok {
		return name
	}
	if denormalized != "" {
		return denormalized
	}
	return identity.UnknownCollector
}

type sessionFixture struct {
	trees       *scriptedTreeSource
	collections *scriptedCollectionSource
	session     *LotSession
	published   chan models.Aggregate
}

func newSessionFixture(resolver *gatedResolver) *sessionFixture {
	f := &sessionFixture{
		trees:       newScriptedTreeSource(),
		collections: newScriptedCollectionSource(),
		published:   make(chan models.Aggregate, 32),
	}
	f.session = &LotSession{
		Trees:       f.trees,
		Collections: f.collections,
		Identity:    resolver,
		Include:     harvest.AllStatuses(),
		Publish:     func(agg models.Aggregate) { f.published <- agg },
		Now:         func() time.Time { return testNow },
	}
	return f
}

func (f *sessionFixture) waitAggregate(t *testing.T) models.Aggregate {
	t.Helper()
	select {
	case agg := <-f.published:
		return agg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an aggregate")
		return models.Aggregate{}
	}
}

// waitFor drains published aggregates until pred matches one.
func (f *sessionFixture) waitFor(t *testing.T, pred func(models.Aggregate) bool) models.Aggregate {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case agg := <-f.published:
			if pred(agg) {
				return agg
			}
		case <-deadline:
			t.Fatal("timed out waiting for a matching aggregate")
			return models.Aggregate{}
		}
	}
}

func (f *sessionFixture) expectSilence(t *testing.T) {
	t.Helper()
	select {
	case agg := <-f.published:
		t.Fatalf("unexpected aggregate published: lot %s, total %v", agg.LotID, agg.TotalKg)
	case <-time.After(200 * time.Millisecond):
	}
}

func lotTrees() []models.Tree {
	return []models.Tree{
		{ID: "t1", LotID: "l1", Code: "T1"},
		{ID: "t2", LotID: "l1", Code: "T2"},
	}
}

func lotRecord(id, treeID, collectorID, displayName string, kg float64) models.CollectionRecord {
	return models.CollectionRecord{
		ID:                   id,
		LotID:                "l1",
		TreeID:               treeID,
		CollectorID:          collectorID,
		CollectorDisplayName: displayName,
		QuantityKg:           kg,
		CollectedAt:          testNow.Add(-24 * time.Hour),
		Status:               models.StatusPending,
	}
}

func TestSessionRecomputesOnEachDelivery(t *testing.T) {
	f := newSessionFixture(&gatedResolver{names: map[string]string{"c1": "Pedro"}})
	if err := f.session.Attach("l1"); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer f.session.Detach()

	f.trees.push("l1", lotTrees())
	first := f.waitAggregate(t)
	if len(first.Trees) != 2 || first.TotalKg != 0 {
		t.Errorf("after tree snapshot: trees %d, total %v", len(first.Trees), first.TotalKg)
	}

	f.collections.push("l1", []models.CollectionRecord{
		lotRecord("r1", "t1", "c1", "Pedro", 5),
	})
	agg := f.waitFor(t, func(a models.Aggregate) bool { return a.TotalKg == 5 })
	if agg.LotID != "l1" {
		t.Errorf("aggregate lot = %s, want l1", agg.LotID)
	}
}

func TestSessionUsesLatestSnapshotPerStream(t *testing.T) {
	f := newSessionFixture(&gatedResolver{names: map[string]string{"c1": "Pedro"}})
	if err := f.session.Attach("l1"); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer f.session.Detach()

	f.collections.push("l1", []models.CollectionRecord{
		lotRecord("r1", "t1", "c1", "Pedro", 5),
	})
	f.waitFor(t, func(a models.Aggregate) bool { return a.TotalKg == 5 })

	// A full replacement snapshot, not a delta: r1 is gone from the set.
	f.collections.push("l1", []models.CollectionRecord{
		lotRecord("r2", "t1", "c1", "Pedro", 2),
		lotRecord("r3", "t2", "c1", "Pedro", 4),
	})

	agg := f.waitFor(t, func(a models.Aggregate) bool { return a.TotalKg == 6 })
	for _, rec := range agg.History {
		if rec.ID == "r1" {
			t.Error("aggregate still contains a record from the superseded snapshot")
		}
	}
}

func TestSessionEnrichmentTriggersOneRecompute(t *testing.T) {
	f := newSessionFixture(&gatedResolver{names: map[string]string{"c1": "Pedro"}})
	if err := f.session.Attach("l1"); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer f.session.Detach()

	// Denormalized name missing: the immediate aggregate renders the
	// placeholder, the enrichment follow-up carries the resolved name.
	f.collections.push("l1", []models.CollectionRecord{
		lotRecord("r1", "t1", "c1", "", 5),
	})

	first := f.waitAggregate(t)
	if got := first.History[0].CollectorDisplayName; got != identity.UnknownCollector {
		t.Errorf("immediate aggregate name = %q, want placeholder", got)
	}

	second := f.waitAggregate(t)
	if got := second.History[0].CollectorDisplayName; got != "Pedro" {
		t.Errorf("enriched aggregate name = %q, want Pedro", got)
	}

	// Exactly one follow-up per resolution batch.
	f.expectSilence(t)
}

func TestSessionContextIsolation(t *testing.T) {
	resolver := &gatedResolver{
		names: map[string]string{"c1": "Pedro"},
		gate:  make(chan struct{}),
	}
	f := newSessionFixture(resolver)
	if err := f.session.Attach("l1"); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	f.collections.push("l1", []models.CollectionRecord{
		lotRecord("r1", "t1", "c1", "stale", 5),
	})
	f.waitFor(t, func(a models.Aggregate) bool { return a.LotID == "l1" })

	// Switch context while the resolution for c1 is still in flight.
	if err := f.session.Attach("l2"); err != nil {
		t.Fatalf("Attach(l2): %v", err)
	}
	defer f.session.Detach()

	f.collections.push("l2", nil)
	f.waitFor(t, func(a models.Aggregate) bool { return a.LotID == "l2" })

	// Let the stale resolution complete; its result must be dropped, so no
	// aggregate for l1 (or any other) may appear.
	close(resolver.gate)
	f.expectSilence(t)

	if agg := f.session.Aggregate(); agg == nil || agg.LotID != "l2" {
		t.Errorf("session aggregate = %+v, want lot l2", agg)
	}
}

func TestSessionDetachStopsDeliveries(t *testing.T) {
	f := newSessionFixture(&gatedResolver{names: map[string]string{"c1": "Pedro"}})
	if err := f.session.Attach("l1"); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	f.trees.push("l1", lotTrees())
	f.waitAggregate(t)

	f.session.Detach()

	f.trees.push("l1", lotTrees())
	f.collections.push("l1", []models.CollectionRecord{
		lotRecord("r1", "t1", "c1", "Pedro", 5),
	})
	f.expectSilence(t)
}

func TestSessionStreamErrorRetainsSnapshot(t *testing.T) {
	f := newSessionFixture(&gatedResolver{names: map[string]string{"c1": "Pedro"}})
	if err := f.session.Attach("l1"); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer f.session.Detach()

	f.collections.push("l1", []models.CollectionRecord{
		lotRecord("r1", "t1", "c1", "Pedro", 5),
	})
	f.waitFor(t, func(a models.Aggregate) bool { return a.TotalKg == 5 })

	f.collections.pushError("l1", errors.New("cursor lost"))
	time.Sleep(100 * time.Millisecond)

	if agg := f.session.Aggregate(); agg == nil || agg.TotalKg != 5 {
		t.Fatalf("aggregate after stream error = %+v, want retained total 5", agg)
	}

	// The subscription keeps going: the next snapshot still lands.
	f.collections.push("l1", []models.CollectionRecord{
		lotRecord("r1", "t1", "c1", "Pedro", 5),
		lotRecord("r2", "t2", "c1", "Pedro", 3),
	})
	f.waitFor(t, func(a models.Aggregate) bool { return a.TotalKg == 8 })
}
