package db

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zapshift/parcel-server/internal/apperr"
	"github.com/zapshift/parcel-server/internal/models"
)

type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(coll *mongo.Collection) *UserStore {
	return &UserStore{coll: coll}
}

func (s *UserStore) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	cursor, err := s.coll.Find(ctx, filter.query(), filter.options())
	if err != nil {
		return nil, errors.Wrap(err, "failed to retrieve users")
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "error decoding users")
	}
	return users, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.WithDetails(apperr.ErrNotFound, "user "+email)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}
	return &user, nil
}

// Create inserts user and sets its ID. A second user with the same email
// is rejected with apperr.ErrConflict.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.WithDetails(apperr.ErrConflict, "user "+user.Email)
		}
		return errors.Wrap(err, "failed to insert user")
	}
	return nil
}

func (s *UserStore) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) (UpdateResult, error) {
	return updateOne(ctx, s.coll, bson.M{"_id": id}, bson.M{"role": role})
}

func (s *UserStore) UpdateRoleByEmail(ctx context.Context, email, role string) (UpdateResult, error) {
	return updateOne(ctx, s.coll, bson.M{"email": email}, bson.M{"role": role})
}

func updateOne(ctx context.Context, coll *mongo.Collection, filter, set bson.M) (UpdateResult, error) {
	res, err := coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return UpdateResult{}, errors.Wrapf(err, "failed to update %s", coll.Name())
	}
	return UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}
