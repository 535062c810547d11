package treeRepo

import (
	"context"

	"cosecha/database"
	"cosecha/models"
	"cosecha/utils"

	"go.mongodb.org/mongo-driver/mongo"
)

// TreeRepository reads the tree set of a lot and exposes a snapshot
// subscription. Tree writes (health-state edits) happen elsewhere.
type TreeRepository interface {
	GetByID(ctx context.Context, id string) (*models.Tree, error)
	GetByLotID(ctx context.Context, lotID string) ([]models.Tree, error)

	// WatchLot delivers the full current tree set for the lot: once
	// immediately, then again after every change.
	WatchLot(ctx context.Context, lotID string) (<-chan []models.Tree, <-chan error, error)
}

type mongoTreeRepo struct {
	coll *mongo.Collection
}

// NewMongoTreeRepo returns a TreeRepository backed by MongoDB.
func NewMongoTreeRepo() TreeRepository {
	repo := &mongoTreeRepo{
		coll: database.DB().Collection("trees"),
	}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("tree repo: failed to ensure indexes: %v", err)
	}
	return repo
}
