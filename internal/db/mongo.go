package db

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zapshift/parcel-server/internal/utils"
)

const (
	usersCollection    = "users"
	parcelsCollection  = "parcels"
	paymentsCollection = "payments"
	ridersCollection   = "riders"
)

// Mongo owns the client connection and the application database.
type Mongo struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
	log          logrus.FieldLogger
}

// ConnectMongoDB opens the connection and verifies it with a ping. The
// caller owns the returned value and must call Disconnect.
func ConnectMongoDB(ctx context.Context, uri, dbName string, timeout time.Duration, transactions bool, log logrus.FieldLogger) (*Mongo, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, errors.Wrap(err, "mongodb connection failed")
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "mongodb ping failed")
	}

	log.WithField("database", dbName).Info("connected to MongoDB")
	return &Mongo{
		client:       client,
		db:           client.Database(dbName),
		transactions: transactions,
		log:          log,
	}, nil
}

func (m *Mongo) Disconnect(ctx context.Context) error {
	return errors.Wrap(m.client.Disconnect(ctx), "mongodb disconnect failed")
}

func (m *Mongo) Users() *UserStore       { return NewUserStore(m.db.Collection(usersCollection)) }
func (m *Mongo) Parcels() *ParcelStore   { return NewParcelStore(m.db.Collection(parcelsCollection)) }
func (m *Mongo) Payments() *PaymentStore { return NewPaymentStore(m.db.Collection(paymentsCollection)) }
func (m *Mongo) Riders() *RiderStore     { return NewRiderStore(m.db.Collection(ridersCollection)) }

// EnsureIndexes creates the indexes the stores rely on. The unique indexes
// on users.email and payments.transactionId back registration and payment
// idempotency.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		parcelsCollection: {
			{Keys: bson.D{{Key: "senderEmail", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "deliveryStatus", Value: 1}}},
		},
		paymentsCollection: {
			{Keys: bson.D{{Key: "transactionId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "senderEmail", Value: 1}, {Key: "paidAt", Value: -1}}},
		},
		ridersCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "district", Value: 1}}},
		},
	}

	tasks := make([]utils.Task, 0, len(specs))
	for name, models := range specs {
		coll := m.db.Collection(name)
		tasks = append(tasks, func() error {
			if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
				return errors.Wrapf(err, "create indexes on %s", coll.Name())
			}
			return nil
		})
	}

	return utils.FirstError(utils.RunParallelTasks(tasks))
}

// WithinTransaction runs fn inside a multi-document transaction when
// transactions are enabled (replica set deployments). Otherwise fn runs
// directly and its writes are applied one by one.
func (m *Mongo) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !m.transactions {
		return fn(ctx)
	}

	session, err := m.client.StartSession()
	if err != nil {
		return errors.Wrap(err, "start mongodb session")
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// Transactional reports whether WithinTransaction gives atomicity.
func (m *Mongo) Transactional() bool {
	return m.transactions
}
