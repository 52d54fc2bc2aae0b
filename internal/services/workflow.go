package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/zapshift/parcel-server/internal/apperr"
	"github.com/zapshift/parcel-server/internal/checkout"
	"github.com/zapshift/parcel-server/internal/db"
	"github.com/zapshift/parcel-server/internal/models"
)

type AssignRiderInput struct {
	RiderID    string `json:"riderId" validate:"required"`
	RiderName  string `json:"riderName"`
	RiderEmail string `json:"riderEmail" validate:"omitempty,email"`
}

type ReviewRiderInput struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
	Email  string `json:"email" validate:"omitempty,email"`
}

// PaymentOutcome is the result of confirming a checkout session.
type PaymentOutcome struct {
	Success          bool             `json:"success"`
	AlreadyProcessed bool             `json:"alreadyProcessed,omitempty"`
	PaymentStatus    string           `json:"paymentStatus,omitempty"`
	TransactionID    string           `json:"transactionId,omitempty"`
	TrackingID       string           `json:"trackingId,omitempty"`
	ModifiedParcel   *db.UpdateResult `json:"modifyParcel,omitempty"`
	PaymentID        string           `json:"paymentId,omitempty"`
}

// Coordinator runs the workflows that change the status of more than one
// entity at a time.
type Coordinator struct {
	users    UserStore
	parcels  ParcelStore
	payments PaymentStore
	riders   RiderStore
	tx       Transactor
	provider checkout.Provider
	tracking *TrackingGenerator
	receipts ReceiptArchive // optional
	now      func() time.Time
	log      logrus.FieldLogger
}

func NewCoordinator(stores Stores, tx Transactor, provider checkout.Provider, tracking *TrackingGenerator, receipts ReceiptArchive, log logrus.FieldLogger) *Coordinator {
	return &Coordinator{
		users:    stores.Users,
		parcels:  stores.Parcels,
		payments: stores.Payments,
		riders:   stores.Riders,
		tx:       tx,
		provider: provider,
		tracking: tracking,
		receipts: receipts,
		now:      time.Now,
		log:      log,
	}
}

// AssignRider puts a parcel in the rider-assign state and marks the rider
// as busy with a pickup. The rider update is attempted even if the parcel
// update fails; without transactions such a partial result is logged and
// returned as an error.
func (c *Coordinator) AssignRider(ctx context.Context, parcelID string, in AssignRiderInput) (db.UpdateResult, error) {
	pid, err := db.ParseID(parcelID)
	if err != nil {
		return db.UpdateResult{}, err
	}
	rid, err := db.ParseID(in.RiderID)
	if err != nil {
		return db.UpdateResult{}, err
	}

	rider, err := c.riders.Get(ctx, rid)
	if err != nil {
		return db.UpdateResult{}, err
	}
	assignment := db.RiderAssignment{
		RiderID:    in.RiderID,
		RiderName:  firstNonEmpty(in.RiderName, rider.Name),
		RiderEmail: firstNonEmpty(in.RiderEmail, rider.Email),
	}

	log := c.log.WithFields(logrus.Fields{
		"parcel_id":     parcelID,
		"rider_id":      in.RiderID,
		"transactional": c.tx.Transactional(),
	})

	var riderResult db.UpdateResult
	err = c.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		parcelResult, parcelErr := c.parcels.AssignRider(ctx, pid, assignment)
		if parcelErr == nil && parcelResult.MatchedCount == 0 {
			// unknown parcel: leave the rider unchanged
			return apperr.WithDetails(apperr.ErrNotFound, "parcel "+parcelID)
		}
		if parcelErr != nil {
			log.WithError(parcelErr).Error("parcel update failed during rider assignment")
		}

		var riderErr error
		riderResult, riderErr = c.riders.SetWorkStatus(ctx, rid, models.WorkAssignPickup)
		if riderErr != nil {
			if parcelErr == nil {
				log.WithError(riderErr).Error("rider assignment incomplete: parcel assigned, rider work status unchanged")
			}
			return riderErr
		}
		if parcelErr != nil {
			log.Error("rider assignment incomplete: rider marked assign-pickup, parcel unchanged")
			return parcelErr
		}
		return nil
	})
	if err != nil {
		return db.UpdateResult{}, err
	}

	log.Info("rider assigned to parcel")
	return riderResult, nil
}

// CompletePayment confirms a checkout session. Confirming the same session
// again returns the tracking id recorded the first time and changes
// nothing.
func (c *Coordinator) CompletePayment(ctx context.Context, sessionID string) (*PaymentOutcome, error) {
	if sessionID == "" {
		return nil, apperr.WithDetails(apperr.ErrBadRequest, "session_id is required")
	}

	session, err := c.provider.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.TransactionID != "" {
		existing, err := c.payments.FindByTransactionID(ctx, session.TransactionID)
		if err == nil {
			return alreadyProcessed(existing), nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
	}

	if session.PaymentStatus != checkout.StatusPaid {
		return &PaymentOutcome{Success: false, PaymentStatus: session.PaymentStatus}, nil
	}
	if session.TransactionID == "" {
		return nil, errors.Errorf("paid checkout session %s has no payment intent", sessionID)
	}

	parcelID := session.Metadata[checkout.MetadataParcelID]
	pid, err := db.ParseID(parcelID)
	if err != nil {
		return nil, apperr.WithDetails(apperr.ErrBadRequest, "checkout session has no valid parcel reference")
	}

	trackingID, err := c.tracking.Generate()
	if err != nil {
		return nil, err
	}

	log := c.log.WithFields(logrus.Fields{
		"session_id":     sessionID,
		"transaction_id": session.TransactionID,
		"parcel_id":      parcelID,
	})

	var (
		parcelResult db.UpdateResult
		payment      *models.Payment
	)
	err = c.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		parcelResult, err = c.parcels.MarkPaid(ctx, pid, trackingID)
		if err != nil {
			return err
		}
		recorded := trackingID
		if parcelResult.MatchedCount == 0 {
			parcel, err := c.parcels.Get(ctx, pid)
			if err != nil {
				return err
			}
			// paid before through another session; its tracking id stands
			recorded = parcel.TrackingID
		}

		payment = &models.Payment{
			TransactionID: session.TransactionID,
			Amount:        float64(session.AmountTotal) / 100,
			Currency:      session.Currency,
			SenderEmail:   session.CustomerEmail,
			ParcelID:      parcelID,
			ParcelName:    session.Metadata[checkout.MetadataParcelName],
			PaymentStatus: session.PaymentStatus,
			TrackingID:    recorded,
			PaidAt:        c.now(),
		}
		return c.payments.Create(ctx, payment)
	})
	if errors.Is(err, apperr.ErrConflict) {
		// confirmed concurrently by another request
		existing, findErr := c.payments.FindByTransactionID(ctx, session.TransactionID)
		if findErr != nil {
			return nil, findErr
		}
		return alreadyProcessed(existing), nil
	}
	if err != nil {
		log.WithError(err).Error("payment confirmation failed")
		return nil, err
	}

	c.archiveReceipt(ctx, payment, log)

	log.WithField("tracking_id", payment.TrackingID).Info("payment recorded")
	return &PaymentOutcome{
		Success:        true,
		PaymentStatus:  payment.PaymentStatus,
		TransactionID:  payment.TransactionID,
		TrackingID:     payment.TrackingID,
		ModifiedParcel: &parcelResult,
		PaymentID:      payment.ID.Hex(),
	}, nil
}

func (c *Coordinator) archiveReceipt(ctx context.Context, payment *models.Payment, log logrus.FieldLogger) {
	if c.receipts == nil {
		return
	}
	if err := c.receipts.Archive(ctx, payment); err != nil {
		log.WithError(err).Warn("failed to archive payment receipt")
	}
}

func alreadyProcessed(p *models.Payment) *PaymentOutcome {
	return &PaymentOutcome{
		Success:          true,
		AlreadyProcessed: true,
		PaymentStatus:    p.PaymentStatus,
		TransactionID:    p.TransactionID,
		TrackingID:       p.TrackingID,
	}
}

// ReviewRider applies an admin decision to a rider application. The rider
// becomes available for work, and on approval the matching user account is
// promoted to the rider role. Only the rider update is reported.
func (c *Coordinator) ReviewRider(ctx context.Context, riderID string, in ReviewRiderInput) (db.UpdateResult, error) {
	rid, err := db.ParseID(riderID)
	if err != nil {
		return db.UpdateResult{}, err
	}
	if !models.ValidRiderStatus(in.Status) {
		return db.UpdateResult{}, apperr.WithDetails(apperr.ErrBadRequest, "unknown rider status "+in.Status)
	}

	rider, err := c.riders.Get(ctx, rid)
	if err != nil {
		return db.UpdateResult{}, err
	}
	email := firstNonEmpty(rider.Email, in.Email)

	log := c.log.WithFields(logrus.Fields{
		"rider_id":      riderID,
		"status":        in.Status,
		"email":         email,
		"transactional": c.tx.Transactional(),
	})

	var riderResult db.UpdateResult
	err = c.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		riderResult, err = c.riders.SetStatus(ctx, rid, in.Status, models.WorkAvailable)
		if err != nil {
			return err
		}
		if in.Status != models.RiderApproved {
			return nil
		}
		if email == "" {
			log.Warn("approved rider has no email, user role unchanged")
			return nil
		}

		userResult, err := c.users.UpdateRoleByEmail(ctx, email, models.RoleRider)
		if err != nil {
			log.WithError(err).Error("rider approval incomplete: rider approved, user role unchanged")
			return err
		}
		if userResult.MatchedCount == 0 {
			log.Warn("approved rider has no user account, user role unchanged")
		}
		return nil
	})
	if err != nil {
		return db.UpdateResult{}, err
	}

	log.Info("rider application reviewed")
	return riderResult, nil
}
