package services_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/zapshift/parcel-server/internal/models"
	"github.com/zapshift/parcel-server/internal/services"
	"github.com/zapshift/parcel-server/internal/testutil"
)

type fixtures struct {
	store       *testutil.Store
	provider    *testutil.CheckoutProvider
	receipts    *testutil.Receipts
	logs        *test.Hook
	coordinator *services.Coordinator
	users       *services.UserService
	parcels     *services.ParcelService
	riders      *services.RiderService
	payments    *services.PaymentService
}

func newFixtures(t *testing.T) *fixtures {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)
	hook := test.NewLocal(log)

	store := testutil.NewStore()
	provider := testutil.NewCheckoutProvider()
	receipts := testutil.NewReceipts()
	stores := store.Stores()

	return &fixtures{
		store:       store,
		provider:    provider,
		receipts:    receipts,
		logs:        hook,
		coordinator: services.NewCoordinator(stores, testutil.DirectTx{}, provider, services.NewTrackingGenerator(), receipts, log),
		users:       services.NewUserService(stores.Users, log),
		parcels:     services.NewParcelService(stores.Parcels),
		riders:      services.NewRiderService(stores.Riders),
		payments:    services.NewPaymentService(stores.Parcels, stores.Payments, provider, receipts, "usd", log),
	}
}

func (f *fixtures) seedRider(t *testing.T, email string) *models.Rider {
	t.Helper()
	rider := &models.Rider{
		Email:     email,
		Name:      "Rahim",
		District:  "Dhaka",
		Status:    models.RiderPending,
		CreatedAt: time.Now(),
	}
	if err := f.store.Stores().Riders.Create(context.Background(), rider); err != nil {
		t.Fatal(err)
	}
	return rider
}

func (f *fixtures) seedParcel(t *testing.T, cost float64) *models.Parcel {
	t.Helper()
	parcel, err := f.parcels.Create(context.Background(), services.CreateParcelInput{
		ParcelName:  "Documents",
		Cost:        cost,
		SenderEmail: "sender@example.com",
	})
	if err != nil {
		t.Fatal(err)
	}
	return parcel
}
