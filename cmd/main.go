package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/zapshift/parcel-server/internal/checkout"
	"github.com/zapshift/parcel-server/internal/config"
	"github.com/zapshift/parcel-server/internal/db"
	"github.com/zapshift/parcel-server/internal/identity"
	"github.com/zapshift/parcel-server/internal/logger"
	"github.com/zapshift/parcel-server/internal/server"
	"github.com/zapshift/parcel-server/internal/services"
	"github.com/zapshift/parcel-server/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFile)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	mongoDB, err := db.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout, cfg.MongoTransactions, log)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoDB.Disconnect(disconnectCtx); err != nil {
			log.WithError(err).Warn("mongo disconnect failed")
		}
	}()

	if err := mongoDB.EnsureIndexes(ctx); err != nil {
		return err
	}

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return err
	}

	// Receipts are optional
	var receipts services.ReceiptArchive
	if cfg.ReceiptsEnabled() {
		store, err := storage.NewReceiptStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.ReceiptBucket, log)
		if err != nil {
			return err
		}
		receipts = store
	} else {
		log.Info("MINIO_ENDPOINT not set, payment receipts disabled")
	}

	stores := services.Stores{
		Users:    mongoDB.Users(),
		Parcels:  mongoDB.Parcels(),
		Payments: mongoDB.Payments(),
		Riders:   mongoDB.Riders(),
	}
	provider := checkout.NewStripeProvider(cfg.StripeSecretKey, cfg.SiteDomain)

	app := server.New(server.Deps{
		Users:       services.NewUserService(stores.Users, log),
		Parcels:     services.NewParcelService(stores.Parcels),
		Riders:      services.NewRiderService(stores.Riders),
		Payments:    services.NewPaymentService(stores.Parcels, stores.Payments, provider, receipts, cfg.Currency, log),
		Coordinator: services.NewCoordinator(stores, mongoDB, provider, services.NewTrackingGenerator(), receipts, log),
		Verifier:    verifier,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})

	listenErr := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-listenErr:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func newVerifier(ctx context.Context, cfg *config.Config) (identity.Verifier, error) {
	if cfg.AuthProvider == config.AuthProviderLocal {
		return identity.NewLocalVerifier(cfg.JWTSecret), nil
	}
	return identity.NewFirebaseVerifier(ctx, cfg.FirebaseCredentialsFile)
}
