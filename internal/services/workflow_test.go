package services_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zapshift/parcel-server/internal/apperr"
	"github.com/zapshift/parcel-server/internal/checkout"
	"github.com/zapshift/parcel-server/internal/models"
	"github.com/zapshift/parcel-server/internal/services"
)

var trackingPattern = regexp.MustCompile(`^ZS-\d{8}-[0-9A-F]{6}$`)

func startCheckout(t *testing.T, f *fixtures, parcel *models.Parcel) *checkout.Session {
	t.Helper()
	session, err := f.payments.CreateCheckoutSession(context.Background(), services.CheckoutInput{ParcelID: parcel.ID.Hex()})
	require.NoError(t, err)
	return session
}

func TestCompletePayment_Paid(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()
	parcel := f.seedParcel(t, 12.5)
	session := startCheckout(t, f, parcel)
	f.provider.Pay(session.ID)

	out, err := f.coordinator.CompletePayment(ctx, session.ID)
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.False(t, out.AlreadyProcessed)
	assert.Regexp(t, trackingPattern, out.TrackingID)
	require.NotNil(t, out.ModifiedParcel)
	assert.Equal(t, int64(1), out.ModifiedParcel.ModifiedCount)

	stored, ok := f.store.Parcel(parcel.ID)
	require.True(t, ok)
	assert.Equal(t, models.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, models.DeliveryPendingPickup, stored.DeliveryStatus)
	assert.Equal(t, out.TrackingID, stored.TrackingID)

	payments := f.store.Payments()
	require.Len(t, payments, 1)
	p := payments[0]
	assert.Equal(t, out.TransactionID, p.TransactionID)
	assert.Equal(t, out.TrackingID, p.TrackingID)
	assert.Equal(t, 12.5, p.Amount)
	assert.Equal(t, "usd", p.Currency)
	assert.Equal(t, "sender@example.com", p.SenderEmail)
	assert.Equal(t, parcel.ID.Hex(), p.ParcelID)
	assert.Equal(t, "Documents", p.ParcelName)
	assert.Equal(t, checkout.StatusPaid, p.PaymentStatus)

	assert.Contains(t, f.receipts.Archived, out.TransactionID)
}

func TestCompletePayment_Idempotent(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()
	parcel := f.seedParcel(t, 20)
	session := startCheckout(t, f, parcel)
	f.provider.Pay(session.ID)

	first, err := f.coordinator.CompletePayment(ctx, session.ID)
	require.NoError(t, err)
	second, err := f.coordinator.CompletePayment(ctx, session.ID)
	require.NoError(t, err)

	assert.True(t, second.Success)
	assert.True(t, second.AlreadyProcessed)
	assert.Equal(t, first.TrackingID, second.TrackingID)
	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.Len(t, f.store.Payments(), 1)

	stored, _ := f.store.Parcel(parcel.ID)
	assert.Equal(t, first.TrackingID, stored.TrackingID)
}

func TestCompletePayment_ConcurrentConfirmations(t *testing.T) {
	f := newFixtures(t)
	parcel := f.seedParcel(t, 20)
	session := startCheckout(t, f, parcel)
	f.provider.Pay(session.ID)

	const n = 8
	results := make([]*services.PaymentOutcome, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := f.coordinator.CompletePayment(context.Background(), session.ID)
			assert.NoError(t, err)
			results[i] = out
		}(i)
	}
	wg.Wait()

	require.Len(t, f.store.Payments(), 1)
	want := f.store.Payments()[0].TrackingID
	for _, out := range results {
		require.NotNil(t, out)
		assert.Equal(t, want, out.TrackingID)
	}
	stored, _ := f.store.Parcel(parcel.ID)
	assert.Equal(t, want, stored.TrackingID)
}

func TestCompletePayment_Unpaid(t *testing.T) {
	f := newFixtures(t)
	parcel := f.seedParcel(t, 5)
	session := startCheckout(t, f, parcel)

	out, err := f.coordinator.CompletePayment(context.Background(), session.ID)
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Empty(t, out.TrackingID)
	assert.Empty(t, f.store.Payments())

	stored, _ := f.store.Parcel(parcel.ID)
	assert.Equal(t, models.PaymentUnpaid, stored.PaymentStatus)
	assert.Empty(t, stored.TrackingID)
}

func TestCompletePayment_SecondSessionKeepsTrackingID(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()
	parcel := f.seedParcel(t, 5)

	// two sessions opened before either was paid
	s1 := startCheckout(t, f, parcel)
	s2 := startCheckout(t, f, parcel)
	f.provider.Pay(s1.ID)
	f.provider.Pay(s2.ID)

	first, err := f.coordinator.CompletePayment(ctx, s1.ID)
	require.NoError(t, err)
	second, err := f.coordinator.CompletePayment(ctx, s2.ID)
	require.NoError(t, err)

	assert.False(t, second.AlreadyProcessed)
	assert.Equal(t, first.TrackingID, second.TrackingID)
	assert.Equal(t, int64(0), second.ModifiedParcel.MatchedCount)
	assert.Len(t, f.store.Payments(), 2)

	// each payment keeps its own receipt
	require.Len(t, f.receipts.Archived, 2)
	assert.Equal(t, first.TrackingID, f.receipts.Archived[first.TransactionID].TrackingID)
	assert.Equal(t, second.TransactionID, f.receipts.Archived[second.TransactionID].TransactionID)

	firstURL, err := f.payments.ReceiptURL(ctx, "sender@example.com", first.TransactionID)
	require.NoError(t, err)
	secondURL, err := f.payments.ReceiptURL(ctx, "sender@example.com", second.TransactionID)
	require.NoError(t, err)
	assert.Contains(t, firstURL, first.TransactionID)
	assert.Contains(t, secondURL, second.TransactionID)
	assert.NotEqual(t, firstURL, secondURL)
}

func TestCompletePayment_Errors(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()

	_, err := f.coordinator.CompletePayment(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = f.coordinator.CompletePayment(ctx, "cs_missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	f.provider.Put(&checkout.Session{
		ID:            "cs_orphan",
		PaymentStatus: checkout.StatusPaid,
		TransactionID: "pi_orphan",
		Metadata:      map[string]string{},
	})
	_, err = f.coordinator.CompletePayment(ctx, "cs_orphan")
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	f.provider.Put(&checkout.Session{
		ID:            "cs_gone",
		PaymentStatus: checkout.StatusPaid,
		TransactionID: "pi_gone",
		Metadata:      map[string]string{checkout.MetadataParcelID: primitive.NewObjectID().Hex()},
	})
	_, err = f.coordinator.CompletePayment(ctx, "cs_gone")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, f.store.Payments())
}

func TestCompletePayment_ReceiptFailureDoesNotFail(t *testing.T) {
	f := newFixtures(t)
	f.receipts.Err = errors.New("bucket unavailable")
	parcel := f.seedParcel(t, 5)
	session := startCheckout(t, f, parcel)
	f.provider.Pay(session.ID)

	out, err := f.coordinator.CompletePayment(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Len(t, f.store.Payments(), 1)
	assert.True(t, hasLevel(f, logrus.WarnLevel))
}

func hasLevel(f *fixtures, level logrus.Level) bool {
	for _, e := range f.logs.AllEntries() {
		if e.Level == level {
			return true
		}
	}
	return false
}

func TestAssignRider(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()
	parcel := f.seedParcel(t, 5)
	rider := f.seedRider(t, "rider@example.com")

	res, err := f.coordinator.AssignRider(ctx, parcel.ID.Hex(), services.AssignRiderInput{
		RiderID:   rider.ID.Hex(),
		RiderName: "Rahim Uddin",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ModifiedCount)

	storedParcel, _ := f.store.Parcel(parcel.ID)
	assert.Equal(t, models.DeliveryRiderAssign, storedParcel.DeliveryStatus)
	assert.Equal(t, rider.ID.Hex(), storedParcel.RiderID)
	assert.Equal(t, "Rahim Uddin", storedParcel.RiderName)
	assert.Equal(t, "rider@example.com", storedParcel.RiderEmail)

	storedRider, _ := f.store.Rider(rider.ID)
	assert.Equal(t, models.WorkAssignPickup, storedRider.WorkStatus)
}

func TestAssignRider_Validation(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()
	parcel := f.seedParcel(t, 5)
	rider := f.seedRider(t, "rider@example.com")

	_, err := f.coordinator.AssignRider(ctx, "bad", services.AssignRiderInput{RiderID: rider.ID.Hex()})
	assert.ErrorIs(t, err, apperr.ErrInvalidID)

	_, err = f.coordinator.AssignRider(ctx, parcel.ID.Hex(), services.AssignRiderInput{RiderID: "bad"})
	assert.ErrorIs(t, err, apperr.ErrInvalidID)

	_, err = f.coordinator.AssignRider(ctx, parcel.ID.Hex(), services.AssignRiderInput{RiderID: primitive.NewObjectID().Hex()})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// unknown parcel is reported before the rider is touched
	_, err = f.coordinator.AssignRider(ctx, primitive.NewObjectID().Hex(), services.AssignRiderInput{RiderID: rider.ID.Hex()})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	storedRider, _ := f.store.Rider(rider.ID)
	assert.Empty(t, storedRider.WorkStatus)
}

func TestAssignRider_ParcelFailureStillUpdatesRider(t *testing.T) {
	f := newFixtures(t)
	parcel := f.seedParcel(t, 5)
	rider := f.seedRider(t, "rider@example.com")
	f.store.Fail["parcels.AssignRider"] = errors.New("write conflict")

	_, err := f.coordinator.AssignRider(context.Background(), parcel.ID.Hex(), services.AssignRiderInput{RiderID: rider.ID.Hex()})
	require.Error(t, err)

	storedRider, _ := f.store.Rider(rider.ID)
	assert.Equal(t, models.WorkAssignPickup, storedRider.WorkStatus)
	assert.Equal(t, logrus.ErrorLevel, f.logs.LastEntry().Level)
}

func TestReviewRider_Approve(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()
	_, _, err := f.users.Register(ctx, services.RegisterInput{Email: "rider@example.com", DisplayName: "Rahim"})
	require.NoError(t, err)
	rider := f.seedRider(t, "rider@example.com")

	res, err := f.coordinator.ReviewRider(ctx, rider.ID.Hex(), services.ReviewRiderInput{Status: models.RiderApproved})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.MatchedCount)

	storedRider, _ := f.store.Rider(rider.ID)
	assert.Equal(t, models.RiderApproved, storedRider.Status)
	assert.Equal(t, models.WorkAvailable, storedRider.WorkStatus)

	user, ok := f.store.User("rider@example.com")
	require.True(t, ok)
	assert.Equal(t, models.RoleRider, user.Role)
}

func TestReviewRider_Reject(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()
	_, _, err := f.users.Register(ctx, services.RegisterInput{Email: "rider@example.com"})
	require.NoError(t, err)
	rider := f.seedRider(t, "rider@example.com")

	_, err = f.coordinator.ReviewRider(ctx, rider.ID.Hex(), services.ReviewRiderInput{Status: models.RiderRejected})
	require.NoError(t, err)

	storedRider, _ := f.store.Rider(rider.ID)
	assert.Equal(t, models.RiderRejected, storedRider.Status)
	assert.Equal(t, models.WorkAvailable, storedRider.WorkStatus)

	user, _ := f.store.User("rider@example.com")
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestReviewRider_Errors(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()
	rider := f.seedRider(t, "rider@example.com")

	_, err := f.coordinator.ReviewRider(ctx, "nope", services.ReviewRiderInput{Status: models.RiderApproved})
	assert.ErrorIs(t, err, apperr.ErrInvalidID)

	_, err = f.coordinator.ReviewRider(ctx, rider.ID.Hex(), services.ReviewRiderInput{Status: "promoted"})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = f.coordinator.ReviewRider(ctx, primitive.NewObjectID().Hex(), services.ReviewRiderInput{Status: models.RiderApproved})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// approval without a user account still approves the rider
	_, err = f.coordinator.ReviewRider(ctx, rider.ID.Hex(), services.ReviewRiderInput{Status: models.RiderApproved})
	require.NoError(t, err)
	storedRider, _ := f.store.Rider(rider.ID)
	assert.Equal(t, models.RiderApproved, storedRider.Status)
}
