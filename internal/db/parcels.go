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

// RiderAssignment holds the rider fields copied onto a parcel.
type RiderAssignment struct {
	RiderID    string
	RiderName  string
	RiderEmail string
}

type ParcelStore struct {
	coll *mongo.Collection
}

func NewParcelStore(coll *mongo.Collection) *ParcelStore {
	return &ParcelStore{coll: coll}
}

func (s *ParcelStore) List(ctx context.Context, filter ParcelFilter) ([]models.Parcel, error) {
	cursor, err := s.coll.Find(ctx, filter.query(), options.Find().SetSort(newestFirst("createdAt")))
	if err != nil {
		return nil, errors.Wrap(err, "failed to retrieve parcels")
	}
	defer cursor.Close(ctx)

	parcels := []models.Parcel{}
	if err := cursor.All(ctx, &parcels); err != nil {
		return nil, errors.Wrap(err, "error decoding parcels")
	}
	return parcels, nil
}

func (s *ParcelStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Parcel, error) {
	var parcel models.Parcel
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&parcel)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.WithDetails(apperr.ErrNotFound, "parcel "+id.Hex())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find parcel")
	}
	return &parcel, nil
}

func (s *ParcelStore) Create(ctx context.Context, parcel *models.Parcel) error {
	if parcel.ID.IsZero() {
		parcel.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, parcel); err != nil {
		return errors.Wrap(err, "failed to insert parcel")
	}
	return nil
}

func (s *ParcelStore) Delete(ctx context.Context, id primitive.ObjectID) (DeleteResult, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return DeleteResult{}, errors.Wrap(err, "failed to delete parcel")
	}
	return DeleteResult{DeletedCount: res.DeletedCount}, nil
}

func (s *ParcelStore) AssignRider(ctx context.Context, id primitive.ObjectID, a RiderAssignment) (UpdateResult, error) {
	return updateOne(ctx, s.coll, bson.M{"_id": id}, bson.M{
		"deliveryStatus": models.DeliveryRiderAssign,
		"riderId":        a.RiderID,
		"riderName":      a.RiderName,
		"riderEmail":     a.RiderEmail,
	})
}

// MarkPaid records the payment on the parcel. Parcels that already carry a
// tracking id are not matched, so a tracking id is never overwritten.
func (s *ParcelStore) MarkPaid(ctx context.Context, id primitive.ObjectID, trackingID string) (UpdateResult, error) {
	return updateOne(ctx, s.coll,
		bson.M{"_id": id, "trackingId": bson.M{"$exists": false}},
		bson.M{
			"paymentStatus":  models.PaymentPaid,
			"deliveryStatus": models.DeliveryPendingPickup,
			"trackingId":     trackingID,
		})
}
