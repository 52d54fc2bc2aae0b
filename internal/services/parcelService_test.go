package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zapshift/parcel-server/internal/apperr"
	"github.com/zapshift/parcel-server/internal/db"
	"github.com/zapshift/parcel-server/internal/models"
	"github.com/zapshift/parcel-server/internal/services"
)

func TestParcelLifecycle(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()

	parcel, err := f.parcels.Create(ctx, services.CreateParcelInput{
		ParcelName:  "Laptop",
		Cost:        40,
		SenderEmail: "sender@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentUnpaid, parcel.PaymentStatus)
	assert.Empty(t, parcel.TrackingID)
	assert.False(t, parcel.CreatedAt.IsZero())

	got, err := f.parcels.Get(ctx, parcel.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Laptop", got.ParcelName)

	list, err := f.parcels.List(ctx, db.ParcelFilter{SenderEmail: "sender@example.com"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	res, err := f.parcels.Delete(ctx, parcel.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.DeletedCount)

	_, err = f.parcels.Get(ctx, parcel.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.parcels.Delete(ctx, parcel.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestParcel_InvalidID(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()

	_, err := f.parcels.Get(ctx, "123")
	assert.ErrorIs(t, err, apperr.ErrInvalidID)

	_, err = f.parcels.Delete(ctx, "123")
	assert.ErrorIs(t, err, apperr.ErrInvalidID)

	_, err = f.parcels.Get(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRiderApply(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()

	rider, err := f.riders.Apply(ctx, services.RiderApplication{Email: "r@example.com", Name: "Rahim", District: "Sylhet"})
	require.NoError(t, err)
	assert.Equal(t, models.RiderPending, rider.Status)
	assert.Empty(t, rider.WorkStatus)

	pending, err := f.riders.List(ctx, db.RiderFilter{Status: models.RiderPending, District: "Sylhet"})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	none, err := f.riders.List(ctx, db.RiderFilter{District: "Dhaka"})
	require.NoError(t, err)
	assert.Empty(t, none)
}
