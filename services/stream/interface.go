package stream

import (
	"context"

	"cosecha/models"
)

// TreeSource delivers full tree snapshots for a lot. Satisfied by the tree
// repository's WatchLot.
type TreeSource interface {
	WatchLot(ctx context.Context, lotID string) (<-chan []models.Tree, <-chan error, error)
}

// CollectionSource delivers full collection-record snapshots for a lot.
// Satisfied by the collection repository's WatchLot.
type CollectionSource interface {
	WatchLot(ctx context.Context, lotID string) (<-chan []models.CollectionRecord, <-chan error, error)
}
