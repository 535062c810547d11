package lotRepo

import (
	"context"

	"cosecha/database"
	"cosecha/models"
	"cosecha/utils"

	"go.mongodb.org/mongo-driver/mongo"
)

// LotRepository is the single-document read/write interface over lots.
type LotRepository interface {
	GetByID(ctx context.Context, id string) (*models.Lot, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SetAssignedCollaborators(ctx context.Context, id string, collaboratorIDs []string) error
}

type mongoLotRepo struct {
	coll *mongo.Collection
}

// NewMongoLotRepo returns a LotRepository backed by MongoDB.
func NewMongoLotRepo() LotRepository {
	repo := &mongoLotRepo{
		coll: database.DB().Collection("lots"),
	}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("lot repo: failed to ensure indexes: %v", err)
	}
	return repo
}
