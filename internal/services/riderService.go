package services

import (
	"context"
	"time"

	"github.com/zapshift/parcel-server/internal/db"
	"github.com/zapshift/parcel-server/internal/models"
)

type RiderApplication struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	District string `json:"district" validate:"required"`
}

type RiderService struct {
	riders RiderStore
	now    func() time.Time
}

func NewRiderService(riders RiderStore) *RiderService {
	return &RiderService{riders: riders, now: time.Now}
}

func (s *RiderService) List(ctx context.Context, filter db.RiderFilter) ([]models.Rider, error) {
	return s.riders.List(ctx, filter)
}

// Apply records a rider application awaiting admin review.
func (s *RiderService) Apply(ctx context.Context, in RiderApplication) (*models.Rider, error) {
	rider := &models.Rider{
		Email:     in.Email,
		Name:      in.Name,
		District:  in.District,
		Status:    models.RiderPending,
		CreatedAt: s.now(),
	}
	if err := s.riders.Create(ctx, rider); err != nil {
		return nil, err
	}
	return rider, nil
}
