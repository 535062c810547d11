// File: models/aggregate.go
package models

import "time"

// TreeStats is the derived per-tree slice of an Aggregate.
type TreeStats struct {
	TreeID           string     `json:"treeId"`
	TreeCode         string     `json:"treeCode"`
	TotalKg          float64    `json:"totalKg"`
	LastCollectionAt *time.Time `json:"lastCollectionAt,omitempty"` // nil means never collected
	DaysSinceLast    int        `json:"daysSinceLast"`
}

// Aggregate is the derived, fully rebuildable summary for one lot context.
// It is a pure function of the current tree and record sets and is never
// persisted.
type Aggregate struct {
	LotID            string             `json:"lotId"`
	TotalKg          float64            `json:"totalKg"`
	LastCollectionAt *time.Time         `json:"lastCollectionAt,omitempty"`
	Trees            []TreeStats        `json:"trees"`
	History          []CollectionRecord `json:"history"` // descending by collectedAt, ties by id
	ComputedAt       time.Time          `json:"computedAt"`
}
