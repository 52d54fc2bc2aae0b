package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zapshift/parcel-server/internal/db"
	"github.com/zapshift/parcel-server/internal/models"
)

type UserStore interface {
	List(ctx context.Context, filter db.UserFilter) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id primitive.ObjectID, role string) (db.UpdateResult, error)
	UpdateRoleByEmail(ctx context.Context, email, role string) (db.UpdateResult, error)
}

type ParcelStore interface {
	List(ctx context.Context, filter db.ParcelFilter) ([]models.Parcel, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Parcel, error)
	Create(ctx context.Context, parcel *models.Parcel) error
	Delete(ctx context.Context, id primitive.ObjectID) (db.DeleteResult, error)
	AssignRider(ctx context.Context, id primitive.ObjectID, a db.RiderAssignment) (db.UpdateResult, error)
	MarkPaid(ctx context.Context, id primitive.ObjectID, trackingID string) (db.UpdateResult, error)
}

type PaymentStore interface {
	List(ctx context.Context, filter db.PaymentFilter) ([]models.Payment, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
}

type RiderStore interface {
	List(ctx context.Context, filter db.RiderFilter) ([]models.Rider, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Rider, error)
	Create(ctx context.Context, rider *models.Rider) error
	SetWorkStatus(ctx context.Context, id primitive.ObjectID, workStatus string) (db.UpdateResult, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status, workStatus string) (db.UpdateResult, error)
}

// Transactor groups writes to several collections. Transactional reports
// whether those writes are atomic or merely sequential.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Transactional() bool
}

// ReceiptArchive stores payment receipts outside the database.
type ReceiptArchive interface {
	Archive(ctx context.Context, payment *models.Payment) error
	PresignedURL(ctx context.Context, payment *models.Payment, expiry time.Duration) (string, error)
}

type Stores struct {
	Users    UserStore
	Parcels  ParcelStore
	Payments PaymentStore
	Riders   RiderStore
}
