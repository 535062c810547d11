package treeRepo

import (
	"context"
	"errors"

	"cosecha/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when a tree lookup matches nothing.
var ErrNotFound = errors.New("tree not found")

// GetByID returns a tree by its ID.
func (r *mongoTreeRepo) GetByID(ctx context.Context, id string) (*models.Tree, error) {
	var tree models.Tree
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&tree)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tree, nil
}

// GetByLotID fetches all trees belonging to a lot.
func (r *mongoTreeRepo) GetByLotID(ctx context.Context, lotID string) ([]models.Tree, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"lotId": lotID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var trees []models.Tree
	if err := cursor.All(ctx, &trees); err != nil {
		return nil, err
	}
	return trees, nil
}
