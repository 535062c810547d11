package collectionRepo

import (
	"context"
	"errors"
	"time"

	"cosecha/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when a record lookup or conditional update matches nothing.
var ErrNotFound = errors.New("collection record not found")

// Create inserts a new collection record and returns its ID.
func (r *mongoCollectionRepo) Create(ctx context.Context, record models.CollectionRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt

	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return "", err
	}
	return record.ID, nil
}

// GetByID returns a collection record by its ID.
func (r *mongoCollectionRepo) GetByID(ctx context.Context, id string) (*models.CollectionRecord, error) {
	var record models.CollectionRecord
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// GetByLotID fetches all collection records belonging to a lot.
func (r *mongoCollectionRepo) GetByLotID(ctx context.Context, lotID string) ([]models.CollectionRecord, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"lotId": lotID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.CollectionRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// MarkApproved stamps an approval onto a still-pending record. The status
// check happens in the service layer before this call; the filter repeats it
// so a concurrent transition cannot slip through.
func (r *mongoCollectionRepo) MarkApproved(ctx context.Context, id, approverID string, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "status": models.StatusPending},
		bson.M{"$set": bson.M{
			"status":     models.StatusApproved,
			"approvedBy": approverID,
			"approvedAt": at,
			"updatedAt":  at,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkRejected stamps a rejection onto a still-pending record.
func (r *mongoCollectionRepo) MarkRejected(ctx context.Context, id, rejecterID, reason string, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "status": models.StatusPending},
		bson.M{"$set": bson.M{
			"status":     models.StatusRejected,
			"rejectedBy": rejecterID,
			"rejectedAt": at,
			"reason":     reason,
			"updatedAt":  at,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
