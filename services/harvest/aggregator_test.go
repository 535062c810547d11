package harvest

import (
	"reflect"
	"testing"
	"time"

	"cosecha/models"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return time.Date(2026, 3, n, 8, 0, 0, 0, time.UTC)
}

func testTrees() []models.Tree {
	return []models.Tree{
		{ID: "t1", LotID: "l1", Code: "T1", Species: "coffea"},
		{ID: "t2", LotID: "l1", Code: "T2", Species: "coffea"},
	}
}

func record(id, treeID string, kg float64, collectedAt time.Time, status models.CollectionStatus) models.CollectionRecord {
	return models.CollectionRecord{
		ID:          id,
		LotID:       "l1",
		TreeID:      treeID,
		CollectorID: "c1",
		QuantityKg:  kg,
		CollectedAt: collectedAt,
		Status:      status,
	}
}

func treeStats(agg models.Aggregate, treeID string) models.TreeStats {
	for _, ts := range agg.Trees {
		if ts.TreeID == treeID {
			return ts
		}
	}
	return models.TreeStats{}
}

// The worked example: aggregation counts records regardless of approval
// status, so approving a record changes nothing in the totals.
func TestReduceWorkedExample(t *testing.T) {
	records := []models.CollectionRecord{
		record("r1", "t1", 5, day(1), models.StatusPending),
		record("r2", "t1", 3, day(2), models.StatusApproved),
		record("r3", "t2", 10, day(1), models.StatusRejected),
	}

	agg := Reduce(testNow, "l1", testTrees(), records, AllStatuses())

	if got := treeStats(agg, "t1").TotalKg; got != 8 {
		t.Errorf("total(T1) = %v, want 8", got)
	}
	if got := treeStats(agg, "t1").LastCollectionAt; got == nil || !got.Equal(day(2)) {
		t.Errorf("lastCollectionAt(T1) = %v, want %v", got, day(2))
	}
	if got := treeStats(agg, "t2").TotalKg; got != 10 {
		t.Errorf("total(T2) = %v, want 10", got)
	}
	if agg.TotalKg != 18 {
		t.Errorf("total(L1) = %v, want 18", agg.TotalKg)
	}

	// Approve the pending record: status flips, totals must not move.
	records[0].Status = models.StatusApproved
	after := Reduce(testNow, "l1", testTrees(), records, AllStatuses())
	if after.TotalKg != agg.TotalKg {
		t.Errorf("total(L1) after approval = %v, want %v", after.TotalKg, agg.TotalKg)
	}
	if got, want := treeStats(after, "t1").TotalKg, treeStats(agg, "t1").TotalKg; got != want {
		t.Errorf("total(T1) after approval = %v, want %v", got, want)
	}
}

func TestReduceOrderIndependence(t *testing.T) {
	records := []models.CollectionRecord{
		record("r1", "t1", 5, day(1), models.StatusPending),
		record("r2", "t1", 3, day(2), models.StatusApproved),
		record("r3", "t2", 10, day(1), models.StatusRejected),
		record("r4", "t2", 2.5, day(3), models.StatusPending),
	}

	want := Reduce(testNow, "l1", testTrees(), records, AllStatuses())

	permute(records, func(p []models.CollectionRecord) {
		got := Reduce(testNow, "l1", testTrees(), p, AllStatuses())
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("aggregate differs for permutation %v", ids(p))
		}
	})

	// Tree order must not matter either.
	trees := []models.Tree{testTrees()[1], testTrees()[0]}
	got := Reduce(testNow, "l1", trees, records, AllStatuses())
	if !reflect.DeepEqual(got, want) {
		t.Fatal("aggregate differs when tree snapshot order changes")
	}
}

func TestReduceIdempotence(t *testing.T) {
	records := []models.CollectionRecord{
		record("r1", "t1", 5, day(1), models.StatusPending),
		record("r2", "t2", 10, day(2), models.StatusApproved),
	}
	first := Reduce(testNow, "l1", testTrees(), records, AllStatuses())
	second := Reduce(testNow, "l1", testTrees(), records, AllStatuses())
	if !reflect.DeepEqual(first, second) {
		t.Fatal("reduce is not idempotent on identical inputs")
	}
}

func TestReduceContainment(t *testing.T) {
	records := []models.CollectionRecord{
		record("r1", "t1", 5, day(1), models.StatusPending),
		record("r2", "t1", 3, day(2), models.StatusApproved),
		record("r3", "t2", 10, day(1), models.StatusRejected),
	}
	agg := Reduce(testNow, "l1", testTrees(), records, AllStatuses())

	var sum float64
	for _, ts := range agg.Trees {
		if ts.TotalKg > agg.TotalKg {
			t.Errorf("total(%s) = %v exceeds total(L1) = %v", ts.TreeID, ts.TotalKg, agg.TotalKg)
		}
		sum += ts.TotalKg
	}
	if sum != agg.TotalKg {
		t.Errorf("sum of tree totals = %v, want lot total %v", sum, agg.TotalKg)
	}
}

func TestReduceEmptyRecordSet(t *testing.T) {
	agg := Reduce(testNow, "l1", testTrees(), nil, AllStatuses())

	if agg.TotalKg != 0 {
		t.Errorf("TotalKg = %v, want 0", agg.TotalKg)
	}
	if agg.LastCollectionAt != nil {
		t.Errorf("LastCollectionAt = %v, want nil", agg.LastCollectionAt)
	}
	if len(agg.History) != 0 {
		t.Errorf("history has %d entries, want 0", len(agg.History))
	}
	if len(agg.Trees) != 2 {
		t.Fatalf("trees = %d, want 2", len(agg.Trees))
	}
	for _, ts := range agg.Trees {
		if ts.TotalKg != 0 || ts.LastCollectionAt != nil || ts.DaysSinceLast != 0 {
			t.Errorf("tree %s stats not zero-valued: %+v", ts.TreeID, ts)
		}
	}
}

func TestReduceStatusFilter(t *testing.T) {
	records := []models.CollectionRecord{
		record("r1", "t1", 5, day(1), models.StatusPending),
		record("r2", "t1", 3, day(2), models.StatusApproved),
		record("r3", "t2", 10, day(1), models.StatusRejected),
	}

	agg := Reduce(testNow, "l1", testTrees(), records, ApprovedOnly())

	if agg.TotalKg != 3 {
		t.Errorf("approved-only total = %v, want 3", agg.TotalKg)
	}
	if len(agg.History) != 1 || agg.History[0].ID != "r2" {
		t.Errorf("approved-only history = %v, want [r2]", ids(agg.History))
	}
	if got := treeStats(agg, "t2").TotalKg; got != 0 {
		t.Errorf("approved-only total(T2) = %v, want 0", got)
	}
}

func TestHistoryOrdering(t *testing.T) {
	records := []models.CollectionRecord{
		record("r2", "t1", 1, day(1), models.StatusPending),
		record("r1", "t1", 1, day(1), models.StatusPending), // same instant as r2
		record("r3", "t2", 1, day(5), models.StatusPending),
	}
	agg := Reduce(testNow, "l1", testTrees(), records, AllStatuses())

	want := []string{"r3", "r1", "r2"}
	if got := ids(agg.History); !reflect.DeepEqual(got, want) {
		t.Errorf("history order = %v, want %v", got, want)
	}
}

func TestDaysSinceLast(t *testing.T) {
	cases := []struct {
		name string
		last time.Time
		want int
	}{
		{"same instant", testNow, 0},
		{"under a day rounds up", testNow.Add(-6 * time.Hour), 1},
		{"36 hours rounds up to two", testNow.Add(-36 * time.Hour), 2},
		{"exact three days", testNow.Add(-72 * time.Hour), 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records := []models.CollectionRecord{
				record("r1", "t1", 1, tc.last, models.StatusApproved),
			}
			agg := Reduce(testNow, "l1", testTrees(), records, AllStatuses())
			if got := treeStats(agg, "t1").DaysSinceLast; got != tc.want {
				t.Errorf("daysSinceLast = %d, want %d", got, tc.want)
			}
		})
	}
}

func ids(records []models.CollectionRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

// permute calls fn with every permutation of records.
func permute(records []models.CollectionRecord, fn func([]models.CollectionRecord)) {
	var rec func(k int)
	work := make([]models.CollectionRecord, len(records))
	copy(work, records)
	rec = func(k int) {
		if k == len(work) {
			p := make([]models.CollectionRecord, len(work))
			copy(p, work)
			fn(p)
			return
		}
		for i := k; i < len(work); i++ {
			work[k], work[i] = work[i], work[k]
			rec(k + 1)
			work[k], work[i] = work[i], work[k]
		}
	}
	rec(0)
}
