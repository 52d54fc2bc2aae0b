package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zapshift/parcel-server/internal/apperr"
	"github.com/zapshift/parcel-server/internal/checkout"
	"github.com/zapshift/parcel-server/internal/db"
	"github.com/zapshift/parcel-server/internal/models"
)

const receiptLinkExpiry = 15 * time.Minute

// CheckoutInput identifies the parcel to pay for. The other fields are used
// only when the stored parcel lacks them.
type CheckoutInput struct {
	ParcelID    string  `json:"parcelId" validate:"required"`
	ParcelName  string  `json:"parcelName"`
	Cost        float64 `json:"cost" validate:"gte=0"`
	SenderEmail string  `json:"senderEmail" validate:"omitempty,email"`
}

type PaymentService struct {
	parcels  ParcelStore
	payments PaymentStore
	provider checkout.Provider
	receipts ReceiptArchive // nil when object storage is not configured
	currency string
	log      logrus.FieldLogger
}

func NewPaymentService(parcels ParcelStore, payments PaymentStore, provider checkout.Provider, receipts ReceiptArchive, currency string, log logrus.FieldLogger) *PaymentService {
	return &PaymentService{
		parcels:  parcels,
		payments: payments,
		provider: provider,
		receipts: receipts,
		currency: currency,
		log:      log,
	}
}

// CreateCheckoutSession opens a hosted payment session for an unpaid
// parcel. The parcel id travels in the session metadata.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*checkout.Session, error) {
	id, err := db.ParseID(in.ParcelID)
	if err != nil {
		return nil, err
	}

	parcel, err := s.parcels.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if parcel.PaymentStatus == models.PaymentPaid {
		return nil, apperr.WithDetails(apperr.ErrConflict, "parcel "+in.ParcelID+" is already paid")
	}

	name := firstNonEmpty(parcel.ParcelName, in.ParcelName)
	email := firstNonEmpty(parcel.SenderEmail, in.SenderEmail)
	cost := parcel.Cost
	if cost <= 0 {
		cost = in.Cost
	}
	cents := int64(math.Round(cost * 100))
	if cents <= 0 {
		return nil, apperr.WithDetails(apperr.ErrBadRequest, "parcel cost must be positive")
	}

	session, err := s.provider.CreateSession(ctx, checkout.SessionRequest{
		ParcelID:      in.ParcelID,
		ParcelName:    name,
		CustomerEmail: email,
		AmountCents:   cents,
		Currency:      s.currency,
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"parcel_id": in.ParcelID, "session_id": session.ID}).Info("checkout session created")
	return session, nil
}

// ListForCaller returns the caller's payments, newest first. Asking for
// another account's payments is forbidden.
func (s *PaymentService) ListForCaller(ctx context.Context, callerEmail, requestedEmail string) ([]models.Payment, error) {
	if requestedEmail != "" && !strings.EqualFold(requestedEmail, callerEmail) {
		return nil, apperr.ErrForbidden
	}
	return s.payments.List(ctx, db.PaymentFilter{SenderEmail: callerEmail})
}

// ReceiptURL returns a short-lived link to the archived receipt of one of
// the caller's payments.
func (s *PaymentService) ReceiptURL(ctx context.Context, callerEmail, transactionID string) (string, error) {
	if s.receipts == nil {
		return "", apperr.WithDetails(apperr.ErrUnavailable, "receipt storage is not configured")
	}

	payment, err := s.payments.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(payment.SenderEmail, callerEmail) {
		return "", apperr.ErrForbidden
	}
	return s.receipts.PresignedURL(ctx, payment, receiptLinkExpiry)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
