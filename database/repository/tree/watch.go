package treeRepo

import (
	"context"
	"time"

	"cosecha/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const watchRetryDelay = 2 * time.Second

// WatchLot opens a change stream scoped to one lot and delivers the full
// current tree set on every change.
func (r *mongoTreeRepo) WatchLot(ctx context.Context, lotID string) (<-chan []models.Tree, <-chan error, error) {
	snapshots := make(chan []models.Tree, 1)
	errs := make(chan error, 1)

	go func() {
		defer close(snapshots)
		defer close(errs)
		for {
			if err := r.watchOnce(ctx, lotID, snapshots); err != nil && ctx.Err() == nil {
				select {
				case errs <- err:
				default:
				}
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(watchRetryDelay):
			}
		}
	}()

	return snapshots, errs, nil
}

func (r *mongoTreeRepo) watchOnce(ctx context.Context, lotID string, out chan<- []models.Tree) error {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "fullDocument.lotId", Value: lotID}}}},
	}
	cs, err := r.coll.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return err
	}
	defer cs.Close(ctx)

	if err := r.deliverSnapshot(ctx, lotID, out); err != nil {
		return err
	}
	for cs.Next(ctx) {
		if err := r.deliverSnapshot(ctx, lotID, out); err != nil {
			return err
		}
	}
	return cs.Err()
}

func (r *mongoTreeRepo) deliverSnapshot(ctx context.Context, lotID string, out chan<- []models.Tree) error {
	trees, err := r.GetByLotID(ctx, lotID)
	if err != nil {
		return err
	}
	select {
	case out <- trees:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
