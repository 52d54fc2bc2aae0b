package db

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zapshift/parcel-server/internal/apperr"
)

const defaultUserSearchLimit = 5

// UpdateResult reports how many documents an update matched and changed.
type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

// ParseID converts a hex identifier into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.WithDetails(apperr.ErrInvalidID, id)
	}
	return objID, nil
}

// UserFilter selects users whose display name or email contains
// SearchText, case-insensitively.
type UserFilter struct {
	SearchText string
	Limit      int64
}

func (f UserFilter) query() bson.M {
	text := strings.TrimSpace(f.SearchText)
	if text == "" {
		return bson.M{}
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"displayName": pattern},
		bson.M{"email": pattern},
	}}
}

func (f UserFilter) options() *options.FindOptions {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultUserSearchLimit
	}
	return options.Find().SetSort(newestFirst("createdAt")).SetLimit(limit)
}

type ParcelFilter struct {
	SenderEmail    string
	DeliveryStatus string
}

func (f ParcelFilter) query() bson.M {
	q := bson.M{}
	if f.SenderEmail != "" {
		q["senderEmail"] = f.SenderEmail
	}
	if f.DeliveryStatus != "" {
		q["deliveryStatus"] = f.DeliveryStatus
	}
	return q
}

type PaymentFilter struct {
	SenderEmail string
}

func (f PaymentFilter) query() bson.M {
	q := bson.M{}
	if f.SenderEmail != "" {
		q["senderEmail"] = f.SenderEmail
	}
	return q
}

type RiderFilter struct {
	Status     string
	District   string
	WorkStatus string
}

func (f RiderFilter) query() bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.District != "" {
		q["district"] = f.District
	}
	if f.WorkStatus != "" {
		q["workStatus"] = f.WorkStatus
	}
	return q
}

func newestFirst(field string) bson.D {
	return bson.D{{Key: field, Value: -1}}
}
