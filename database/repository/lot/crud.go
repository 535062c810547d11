package lotRepo

import (
	"context"
	"errors"

	"cosecha/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when a lot lookup matches nothing.
var ErrNotFound = errors.New("lot not found")

// GetByID returns a lot by its ID.
func (r *mongoLotRepo) GetByID(ctx context.Context, id string) (*models.Lot, error) {
	var lot models.Lot
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&lot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// UpdateStatus sets the lot's status field.
func (r *mongoLotRepo) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAssignedCollaborators replaces the lot's collaborator assignment.
func (r *mongoLotRepo) SetAssignedCollaborators(ctx context.Context, id string, collaboratorIDs []string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id},
		bson.M{"$set": bson.M{"assignedCollaboratorIds": collaboratorIDs}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
