package userRepo

import (
	"context"

	"cosecha/database"
	"cosecha/models"
	"cosecha/utils"

	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository is the user-directory lookup: display names, capability
// flags, push tokens.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByRole(ctx context.Context, role string) ([]models.User, error)
	UpdateFCMToken(ctx context.Context, id, token string) error
}

type mongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo returns a UserRepository backed by MongoDB.
func NewMongoUserRepo() UserRepository {
	repo := &mongoUserRepo{
		coll: database.DB().Collection("users"),
	}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("user repo: failed to ensure indexes: %v", err)
	}
	return repo
}
