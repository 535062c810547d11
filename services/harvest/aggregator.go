package harvest

import (
	"math"
	"sort"
	"time"

	"cosecha/models"
)

// StatusSet selects which collection statuses participate in a reduction.
// Callers must choose explicitly; there is no implicit default.
type StatusSet map[models.CollectionStatus]struct{}

// AllStatuses includes pending, approved and rejected records.
func AllStatuses() StatusSet {
	return Statuses(models.StatusPending, models.StatusApproved, models.StatusRejected)
}

// ApprovedOnly includes approved records, as the report surfaces do.
func ApprovedOnly() StatusSet {
	return Statuses(models.StatusApproved)
}

// Statuses builds a StatusSet from an explicit list.
func Statuses(statuses ...models.CollectionStatus) StatusSet {
	set := make(StatusSet, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}

func (s StatusSet) contains(status models.CollectionStatus) bool {
	_, ok := s[status]
	return ok
}

// Reduce computes the derived statistics for one lot from the current tree
// and record sets. It is a pure function: no hidden state, identical output
// for any permutation of the same inputs. An empty record set yields a
// zero-valued aggregate, never an error.
func Reduce(now time.Time, lotID string, trees []models.Tree, records []models.CollectionRecord, include StatusSet) models.Aggregate {
	agg := models.Aggregate{
		LotID:      lotID,
		Trees:      make([]models.TreeStats, 0, len(trees)),
		History:    make([]models.CollectionRecord, 0, len(records)),
		ComputedAt: now,
	}

	for _, rec := range records {
		if !include.contains(rec.Status) {
			continue
		}
		agg.History = append(agg.History, rec)
		agg.TotalKg += rec.QuantityKg
		if agg.LastCollectionAt == nil || rec.CollectedAt.After(*agg.LastCollectionAt) {
			t := rec.CollectedAt
			agg.LastCollectionAt = &t
		}
	}

	// Descending by collection date; ties broken by record id so identical
	// inputs always produce identical output.
	sort.Slice(agg.History, func(i, j int) bool {
		a, b := agg.History[i], agg.History[j]
		if !a.CollectedAt.Equal(b.CollectedAt) {
			return a.CollectedAt.After(b.CollectedAt)
		}
		return a.ID < b.ID
	})

	byTree := make(map[string][]models.CollectionRecord, len(trees))
	for _, rec := range agg.History {
		byTree[rec.TreeID] = append(byTree[rec.TreeID], rec)
	}

	for _, tree := range trees {
		stats := models.TreeStats{TreeID: tree.ID, TreeCode: tree.Code}
		for _, rec := range byTree[tree.ID] {
			stats.TotalKg += rec.QuantityKg
			if stats.LastCollectionAt == nil || rec.CollectedAt.After(*stats.LastCollectionAt) {
				t := rec.CollectedAt
				stats.LastCollectionAt = &t
			}
		}
		if stats.LastCollectionAt != nil {
			stats.DaysSinceLast = daysSince(now, *stats.LastCollectionAt)
		}
		agg.Trees = append(agg.Trees, stats)
	}

	sort.Slice(agg.Trees, func(i, j int) bool {
		a, b := agg.Trees[i], agg.Trees[j]
		if a.TreeCode != b.TreeCode {
			return a.TreeCode < b.TreeCode
		}
		return a.TreeID < b.TreeID
	})

	return agg
}

// daysSince rounds the elapsed time up to whole days.
func daysSince(now, last time.Time) int {
	elapsed := now.Sub(last)
	if elapsed <= 0 {
		return 0
	}
	return int(math.Ceil(elapsed.Hours() / 24))
}
