package collectionRepo

import (
	"context"
	"time"

	"cosecha/database"
	"cosecha/models"
	"cosecha/utils"

	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionRepository persists harvest collection records and exposes a
// snapshot subscription per lot.
type CollectionRepository interface {
	Create(ctx context.Context, record models.CollectionRecord) (string, error)
	GetByID(ctx context.Context, id string) (*models.CollectionRecord, error)
	GetByLotID(ctx context.Context, lotID string) ([]models.CollectionRecord, error)
	MarkApproved(ctx context.Context, id, approverID string, at time.Time) error
	MarkRejected(ctx context.Context, id, rejecterID, reason string, at time.Time) error

	// WatchLot delivers the full current record set for the lot: once
	// immediately, then again after every change. Transport failures are
	// reported on the error channel; the subscription retries internally and
	// never closes the snapshot channel until ctx is done.
	WatchLot(ctx context.Context, lotID string) (<-chan []models.CollectionRecord, <-chan error, error)
}

type mongoCollectionRepo struct {
	coll *mongo.Collection
}

// NewMongoCollectionRepo returns a CollectionRepository backed by MongoDB.
func NewMongoCollectionRepo() CollectionRepository {
	repo := &mongoCollectionRepo{
		coll: database.DB().Collection("collections"),
	}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("collection repo: failed to ensure indexes: %v", err)
	}
	return repo
}
