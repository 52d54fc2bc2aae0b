package services

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/zapshift/parcel-server/internal/apperr"
	"github.com/zapshift/parcel-server/internal/db"
	"github.com/zapshift/parcel-server/internal/models"
)

type RegisterInput struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"max=120"`
	PhotoURL    string `json:"photoURL" validate:"omitempty,url"`
}

type UserService struct {
	users UserStore
	now   func() time.Time
	log   logrus.FieldLogger
}

func NewUserService(users UserStore, log logrus.FieldLogger) *UserService {
	return &UserService{users: users, now: time.Now, log: log}
}

// Search returns the newest users whose name or email contains text.
func (s *UserService) Search(ctx context.Context, text string) ([]models.User, error) {
	return s.users.List(ctx, db.UserFilter{SearchText: text})
}

// RoleOf returns the stored role for email, or the default user role when
// no such user exists.
func (s *UserService) RoleOf(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.RoleUser, nil
	}
	if err != nil {
		return "", err
	}
	if user.Role == "" {
		return models.RoleUser, nil
	}
	return user.Role, nil
}

// Register creates a user for an email seen for the first time. For a known
// email it returns the stored user and created=false.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (user *models.User, created bool, err error) {
	email := strings.TrimSpace(in.Email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, false, err
	}

	user = &models.User{
		Email:       email,
		DisplayName: in.DisplayName,
		PhotoURL:    in.PhotoURL,
		Role:        models.RoleUser,
		CreatedAt:   s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			// registered concurrently
			existing, findErr := s.users.FindByEmail(ctx, email)
			if findErr != nil {
				return nil, false, findErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	s.log.WithField("email", email).Info("user registered")
	return user, true, nil
}

func (s *UserService) ChangeRole(ctx context.Context, id, role string) (db.UpdateResult, error) {
	objID, err := db.ParseID(id)
	if err != nil {
		return db.UpdateResult{}, err
	}
	if !models.ValidRole(role) {
		return db.UpdateResult{}, apperr.WithDetails(apperr.ErrBadRequest, "unknown role "+role)
	}

	res, err := s.users.UpdateRole(ctx, objID, role)
	if err != nil {
		return db.UpdateResult{}, err
	}
	if res.MatchedCount == 0 {
		return res, apperr.WithDetails(apperr.ErrNotFound, "user "+id)
	}

	s.log.WithFields(logrus.Fields{"user_id": id, "role": role}).Info("user role changed")
	return res, nil
}
