package harvest

import (
	"context"
	"time"

	"cosecha/models"
)

// SubmitCollectionInput carries a new harvest event from a collector.
type SubmitCollectionInput struct {
	LotID       string    `json:"lotId"`
	TreeID      string    `json:"treeId"`
	CollectorID string    `json:"collectorId"`
	QuantityKg  float64   `json:"quantityKg"`
	CollectedAt time.Time `json:"collectedAt"`
	Notes       string    `json:"notes,omitempty"`
}

// HarvestService is the write path of the pipeline: submission plus the
// approval state machine, and the one-shot lot summary read.
type HarvestService interface {
	SubmitCollection(ctx context.Context, input SubmitCollectionInput) (*models.CollectionRecord, error)
	Approve(ctx context.Context, recordID, approverID string) (*models.CollectionRecord, error)
	Reject(ctx context.Context, recordID, rejecterID, reason string) (*models.CollectionRecord, error)
	LotSummary(ctx context.Context, lotID string, include StatusSet) (*models.Aggregate, error)
}
