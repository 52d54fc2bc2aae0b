package services

import (
	"context"
	"time"

	"github.com/zapshift/parcel-server/internal/apperr"
	"github.com/zapshift/parcel-server/internal/db"
	"github.com/zapshift/parcel-server/internal/models"
)

type CreateParcelInput struct {
	ParcelName  string  `json:"parcelName" validate:"required"`
	Cost        float64 `json:"cost" validate:"gt=0"`
	SenderEmail string  `json:"senderEmail" validate:"required,email"`
}

type ParcelService struct {
	parcels ParcelStore
	now     func() time.Time
}

func NewParcelService(parcels ParcelStore) *ParcelService {
	return &ParcelService{parcels: parcels, now: time.Now}
}

func (s *ParcelService) List(ctx context.Context, filter db.ParcelFilter) ([]models.Parcel, error) {
	return s.parcels.List(ctx, filter)
}

func (s *ParcelService) Get(ctx context.Context, id string) (*models.Parcel, error) {
	objID, err := db.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.parcels.Get(ctx, objID)
}

// Create stores a new, unpaid parcel.
func (s *ParcelService) Create(ctx context.Context, in CreateParcelInput) (*models.Parcel, error) {
	parcel := &models.Parcel{
		SenderEmail:   in.SenderEmail,
		ParcelName:    in.ParcelName,
		Cost:          in.Cost,
		PaymentStatus: models.PaymentUnpaid,
		CreatedAt:     s.now(),
	}
	if err := s.parcels.Create(ctx, parcel); err != nil {
		return nil, err
	}
	return parcel, nil
}

func (s *ParcelService) Delete(ctx context.Context, id string) (db.DeleteResult, error) {
	objID, err := db.ParseID(id)
	if err != nil {
		return db.DeleteResult{}, err
	}

	res, err := s.parcels.Delete(ctx, objID)
	if err != nil {
		return res, err
	}
	if res.DeletedCount == 0 {
		return res, apperr.WithDetails(apperr.ErrNotFound, "parcel "+id)
	}
	return res, nil
}
