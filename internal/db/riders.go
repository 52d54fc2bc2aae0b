package db

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zapshift/parcel-server/internal/apperr"
	"github.com/zapshift/parcel-server/internal/models"
)

type RiderStore struct {
	coll *mongo.Collection
}

func NewRiderStore(coll *mongo.Collection) *RiderStore {
	return &RiderStore{coll: coll}
}

func (s *RiderStore) List(ctx context.Context, filter RiderFilter) ([]models.Rider, error) {
	cursor, err := s.coll.Find(ctx, filter.query(), options.Find().SetSort(newestFirst("createdAt")))
	if err != nil {
		return nil, errors.Wrap(err, "failed to retrieve riders")
	}
	defer cursor.Close(ctx)

	riders := []models.Rider{}
	if err := cursor.All(ctx, &riders); err != nil {
		return nil, errors.Wrap(err, "error decoding riders")
	}
	return riders, nil
}

func (s *RiderStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Rider, error) {
	var rider models.Rider
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rider)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.WithDetails(apperr.ErrNotFound, "rider "+id.Hex())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find rider")
	}
	return &rider, nil
}

func (s *RiderStore) Create(ctx context.Context, rider *models.Rider) error {
	if rider.ID.IsZero() {
		rider.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, rider); err != nil {
		return errors.Wrap(err, "failed to insert rider")
	}
	return nil
}

func (s *RiderStore) SetWorkStatus(ctx context.Context, id primitive.ObjectID, workStatus string) (UpdateResult, error) {
	return updateOne(ctx, s.coll, bson.M{"_id": id}, bson.M{"workStatus": workStatus})
}

func (s *RiderStore) SetStatus(ctx context.Context, id primitive.ObjectID, status, workStatus string) (UpdateResult, error) {
	return updateOne(ctx, s.coll, bson.M{"_id": id}, bson.M{
		"status":     status,
		"workStatus": workStatus,
	})
}
