package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cosecha/models"
	"cosecha/services/harvest"
	"cosecha/services/identity"
	"cosecha/utils"

	"go.uber.org/zap"
)

// LotSession owns one "current lot" context. Attach opens two independent
// snapshot subscriptions (trees and collection records) and recomputes the
// aggregate on every delivery, using the latest known snapshot of each
// input. Every asynchronous unit of work captures the generation token at
// start; a result carrying a stale token is silently dropped, so nothing
// started under an old context can ever publish after a switch.
type LotSession struct {
	Trees       TreeSource
	Collections CollectionSource
	Identity    identity.Resolver
	Include     harvest.StatusSet

	// Publish receives each recomputed aggregate. It is invoked while the
	// session lock is held and must not call back into the session.
	Publish func(models.Aggregate)

	// Now is the clock; overridable in tests.
	Now func() time.Time

	mu         sync.Mutex
	gen        uint64
	lotID      string
	cancel     context.CancelFunc
	curTrees   []models.Tree
	curRecords []models.CollectionRecord
	names      map[string]string
	resolving  map[string]bool
	last       *models.Aggregate
}

func (s *LotSession) clock() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Attach switches the session to lotID. If a context is already attached it
// is detached first.
func (s *LotSession) Attach(lotID string) error {
	s.mu.Lock()
	s.detachLocked()
	s.gen++
	gen := s.gen
	s.lotID = lotID
	s.curTrees = nil
	s.curRecords = nil
	s.names = make(map[string]string)
	s.resolving = make(map[string]bool)
	s.last = nil

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	treeCh, treeErrs, err := s.Trees.WatchLot(ctx, lotID)
	if err != nil {
		cancel()
		return fmt.Errorf("Attach: tree subscription: %w", err)
	}
	recordCh, recordErrs, err := s.Collections.WatchLot(ctx, lotID)
	if err != nil {
		cancel()
		return fmt.Errorf("Attach: collection subscription: %w", err)
	}

	go s.consumeTrees(ctx, gen, lotID, treeCh, treeErrs)
	go s.consumeRecords(ctx, gen, lotID, recordCh, recordErrs)
	return nil
}

// Detach synchronously stops all further deliveries for the current context.
// Background work already in flight completes on its own and is discarded by
// the token check.
func (s *LotSession) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachLocked()
}

func (s *LotSession) detachLocked() {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.lotID = ""
}

// Aggregate returns the last published aggregate, or nil before the first
// recomputation.
func (s *LotSession) Aggregate() *models.Aggregate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *LotSession) consumeTrees(ctx context.Context, gen uint64, lotID string, snapshots <-chan []models.Tree, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			s.deliverTrees(gen, snap)
		case err, ok := <-errs:
			if !ok {
				return
			}
			utils.GetLogger().Warn("stream: tree subscription error, retaining last snapshot",
				zap.String("lotId", lotID), zap.Error(err))
		}
	}
}

func (s *LotSession) consumeRecords(ctx context.Context, gen uint64, lotID string, snapshots <-chan []models.CollectionRecord, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			s.deliverRecords(gen, snap)
		case err, ok := <-errs:
			if !ok {
				return
			}
			utils.GetLogger().Warn("stream: collection subscription error, retaining last snapshot",
				zap.String("lotId", lotID), zap.Error(err))
		}
	}
}

func (s *LotSession) deliverTrees(gen uint64, snap []models.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.curTrees = snap
	s.recomputeLocked(gen)
}

func (s *LotSession) deliverRecords(gen uint64, snap []models.CollectionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.curRecords = snap
	s.recomputeLocked(gen)
}

// recomputeLocked reduces the latest snapshots, publishes the result, and
// kicks off name resolution for collectors not yet resolved under this
// context. Callers must hold s.mu with gen already verified.
func (s *LotSession) recomputeLocked(gen uint64) {
	records := make([]models.CollectionRecord, len(s.curRecords))
	copy(records, s.curRecords)
	for i := range records {
		if name, ok := s.names[records[i].CollectorID]; ok {
			records[i].CollectorDisplayName = name
		} else if records[i].CollectorDisplayName == "" {
			records[i].CollectorDisplayName = identity.UnknownCollector
		}
	}

	agg := harvest.Reduce(s.clock(), s.lotID, s.curTrees, records, s.Include)
	s.last = &agg
	if s.Publish != nil {
		s.Publish(agg)
	}

	s.enrichLocked(gen)
}

// enrichLocked schedules background resolution for collectors whose names
// have not been resolved under the current generation. One batch produces
// exactly one follow-up recomputation.
func (s *LotSession) enrichLocked(gen uint64) {
	pending := make(map[string]string)
	for _, rec := range s.curRecords {
		id := rec.CollectorID
		if id == "" || s.resolving[id] {
			continue
		}
		if _, done := s.names[id]; done {
			continue
		}
		s.resolving[id] = true
		pending[id] = rec.CollectorDisplayName
	}
	if len(pending) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		resolved := make(map[string]string, len(pending))
		for id, denormalized := range pending {
			resolved[id] = s.Identity.Resolve(ctx, id, denormalized)
		}
		s.completeResolution(gen, resolved)
	}()
}

// completeResolution re-enters the pipeline with a finished name batch.
// A stale generation token means the context switched while we were out; the
// batch is dropped without side effects.
func (s *LotSession) completeResolution(gen uint64, resolved map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	for id, name := range resolved {
		s.names[id] = name
	}
	s.recomputeLocked(gen)
}
