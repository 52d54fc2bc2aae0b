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

type PaymentStore struct {
	coll *mongo.Collection
}

func NewPaymentStore(coll *mongo.Collection) *PaymentStore {
	return &PaymentStore{coll: coll}
}

func (s *PaymentStore) List(ctx context.Context, filter PaymentFilter) ([]models.Payment, error) {
	cursor, err := s.coll.Find(ctx, filter.query(), options.Find().SetSort(newestFirst("paidAt")))
	if err != nil {
		return nil, errors.Wrap(err, "failed to retrieve payments")
	}
	defer cursor.Close(ctx)

	payments := []models.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, errors.Wrap(err, "error decoding payments")
	}
	return payments, nil
}

func (s *PaymentStore) FindByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	var payment models.Payment
	err := s.coll.FindOne(ctx, bson.M{"transactionId": transactionID}).Decode(&payment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.WithDetails(apperr.ErrNotFound, "payment "+transactionID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find payment")
	}
	return &payment, nil
}

// Create inserts payment. A payment whose transaction id is already stored
// is rejected with apperr.ErrConflict.
func (s *PaymentStore) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, payment); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.WithDetails(apperr.ErrConflict, "payment "+payment.TransactionID)
		}
		return errors.Wrap(err, "failed to insert payment")
	}
	return nil
}
