// File: models/collection.go
package models

import "time"

// CollectionStatus is the approval state of a harvest collection record.
type CollectionStatus string

const (
	StatusPending  CollectionStatus = "pending"
	StatusApproved CollectionStatus = "approved"
	StatusRejected CollectionStatus = "rejected"
)

// CollectionRecord is one harvest event: a quantity collected from a tree,
// by a collector, on a date, carrying its approval state.
type CollectionRecord struct {
	ID                   string           `bson:"id" json:"id"`
	LotID                string           `bson:"lotId" json:"lotId"`
	TreeID               string           `bson:"treeId" json:"treeId"`
	CollectorID          string           `bson:"collectorId" json:"collectorId"`
	CollectorDisplayName string           `bson:"collectorDisplayName" json:"collectorDisplayName"` // denormalized, may be stale
	QuantityKg           float64          `bson:"quantityKg" json:"quantityKg"`
	CollectedAt          time.Time        `bson:"collectedAt" json:"collectedAt"`
	Status               CollectionStatus `bson:"status" json:"status"`
	Notes                string           `bson:"notes,omitempty" json:"notes,omitempty"`
	ApprovedBy           string           `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovedAt           *time.Time       `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	RejectedBy           string           `bson:"rejectedBy,omitempty" json:"rejectedBy,omitempty"`
	RejectedAt           *time.Time       `bson:"rejectedAt,omitempty" json:"rejectedAt,omitempty"`
	Reason               string           `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt            time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time        `bson:"updatedAt" json:"updatedAt"`
}
