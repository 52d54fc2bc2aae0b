// Package testutil provides in-memory stand-ins for the database, payment
// provider, identity provider and receipt storage.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zapshift/parcel-server/internal/apperr"
	"github.com/zapshift/parcel-server/internal/db"
	"github.com/zapshift/parcel-server/internal/models"
	"github.com/zapshift/parcel-server/internal/services"
)

// Store keeps every collection in memory and mirrors the constraints the
// Mongo indexes enforce.
type Store struct {
	mu       sync.Mutex
	users    []models.User
	parcels  []models.Parcel
	payments []models.Payment
	riders   []models.Rider

	// Fail makes the named operation return the given error.
	Fail map[string]error
}

func NewStore() *Store {
	return &Store{Fail: map[string]error{}}
}

func (s *Store) Stores() services.Stores {
	return services.Stores{
		Users:    UserStore{s},
		Parcels:  ParcelStore{s},
		Payments: PaymentStore{s},
		Riders:   RiderStore{s},
	}
}

func (s *Store) fail(op string) error {
	return s.Fail[op]
}

func (s *Store) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.User(nil), s.users...)
}

func (s *Store) Payments() []models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Payment(nil), s.payments...)
}

func (s *Store) Parcel(id primitive.ObjectID) (models.Parcel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.parcels {
		if p.ID == id {
			return p, true
		}
	}
	return models.Parcel{}, false
}

func (s *Store) Rider(id primitive.ObjectID) (models.Rider, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.riders {
		if r.ID == id {
			return r, true
		}
	}
	return models.Rider{}, false
}

func (s *Store) User(email string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, true
		}
	}
	return models.User{}, false
}

type UserStore struct{ s *Store }

func (u UserStore) List(_ context.Context, filter db.UserFilter) ([]models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if err := u.s.fail("users.List"); err != nil {
		return nil, err
	}

	text := strings.ToLower(strings.TrimSpace(filter.SearchText))
	out := []models.User{}
	for _, user := range u.s.users {
		if text == "" ||
			strings.Contains(strings.ToLower(user.DisplayName), text) ||
			strings.Contains(strings.ToLower(user.Email), text) {
			out = append(out, user)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	limit := int(filter.Limit)
	if limit <= 0 {
		limit = 5
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (u UserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if err := u.s.fail("users.FindByEmail"); err != nil {
		return nil, err
	}
	for _, user := range u.s.users {
		if user.Email == email {
			found := user
			return &found, nil
		}
	}
	return nil, apperr.WithDetails(apperr.ErrNotFound, "user "+email)
}

func (u UserStore) Create(_ context.Context, user *models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if err := u.s.fail("users.Create"); err != nil {
		return err
	}
	for _, existing := range u.s.users {
		if existing.Email == user.Email {
			return apperr.WithDetails(apperr.ErrConflict, "user "+user.Email)
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	u.s.users = append(u.s.users, *user)
	return nil
}

func (u UserStore) UpdateRole(_ context.Context, id primitive.ObjectID, role string) (db.UpdateResult, error) {
	return u.updateRole(func(user models.User) bool { return user.ID == id }, role)
}

func (u UserStore) UpdateRoleByEmail(_ context.Context, email, role string) (db.UpdateResult, error) {
	return u.updateRole(func(user models.User) bool { return user.Email == email }, role)
}

func (u UserStore) updateRole(match func(models.User) bool, role string) (db.UpdateResult, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if err := u.s.fail("users.UpdateRole"); err != nil {
		return db.UpdateResult{}, err
	}
	for i := range u.s.users {
		if match(u.s.users[i]) {
			res := db.UpdateResult{MatchedCount: 1}
			if u.s.users[i].Role != role {
				u.s.users[i].Role = role
				res.ModifiedCount = 1
			}
			return res, nil
		}
	}
	return db.UpdateResult{}, nil
}

type ParcelStore struct{ s *Store }

func (p ParcelStore) List(_ context.Context, filter db.ParcelFilter) ([]models.Parcel, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if err := p.s.fail("parcels.List"); err != nil {
		return nil, err
	}
	out := []models.Parcel{}
	for _, parcel := range p.s.parcels {
		if filter.SenderEmail != "" && parcel.SenderEmail != filter.SenderEmail {
			continue
		}
		if filter.DeliveryStatus != "" && parcel.DeliveryStatus != filter.DeliveryStatus {
			continue
		}
		out = append(out, parcel)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (p ParcelStore) Get(_ context.Context, id primitive.ObjectID) (*models.Parcel, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if err := p.s.fail("parcels.Get"); err != nil {
		return nil, err
	}
	for _, parcel := range p.s.parcels {
		if parcel.ID == id {
			found := parcel
			return &found, nil
		}
	}
	return nil, apperr.WithDetails(apperr.ErrNotFound, "parcel "+id.Hex())
}

func (p ParcelStore) Create(_ context.Context, parcel *models.Parcel) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if err := p.s.fail("parcels.Create"); err != nil {
		return err
	}
	if parcel.ID.IsZero() {
		parcel.ID = primitive.NewObjectID()
	}
	p.s.parcels = append(p.s.parcels, *parcel)
	return nil
}

func (p ParcelStore) Delete(_ context.Context, id primitive.ObjectID) (db.DeleteResult, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if err := p.s.fail("parcels.Delete"); err != nil {
		return db.DeleteResult{}, err
	}
	for i, parcel := range p.s.parcels {
		if parcel.ID == id {
			p.s.parcels = append(p.s.parcels[:i], p.s.parcels[i+1:]...)
			return db.DeleteResult{DeletedCount: 1}, nil
		}
	}
	return db.DeleteResult{}, nil
}

func (p ParcelStore) AssignRider(_ context.Context, id primitive.ObjectID, a db.RiderAssignment) (db.UpdateResult, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if err := p.s.fail("parcels.AssignRider"); err != nil {
		return db.UpdateResult{}, err
	}
	for i := range p.s.parcels {
		if p.s.parcels[i].ID == id {
			parcel := &p.s.parcels[i]
			parcel.DeliveryStatus = models.DeliveryRiderAssign
			parcel.RiderID = a.RiderID
			parcel.RiderName = a.RiderName
			parcel.RiderEmail = a.RiderEmail
			return db.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	return db.UpdateResult{}, nil
}

func (p ParcelStore) MarkPaid(_ context.Context, id primitive.ObjectID, trackingID string) (db.UpdateResult, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if err := p.s.fail("parcels.MarkPaid"); err != nil {
		return db.UpdateResult{}, err
	}
	for i := range p.s.parcels {
		parcel := &p.s.parcels[i]
		if parcel.ID == id && parcel.TrackingID == "" {
			parcel.PaymentStatus = models.PaymentPaid
			parcel.DeliveryStatus = models.DeliveryPendingPickup
			parcel.TrackingID = trackingID
			return db.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	return db.UpdateResult{}, nil
}

type PaymentStore struct{ s *Store }

func (p PaymentStore) List(_ context.Context, filter db.PaymentFilter) ([]models.Payment, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if err := p.s.fail("payments.List"); err != nil {
		return nil, err
	}
	out := []models.Payment{}
	for _, payment := range p.s.payments {
		if filter.SenderEmail != "" && payment.SenderEmail != filter.SenderEmail {
			continue
		}
		out = append(out, payment)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PaidAt.After(out[j].PaidAt) })
	return out, nil
}

func (p PaymentStore) FindByTransactionID(_ context.Context, transactionID string) (*models.Payment, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if err := p.s.fail("payments.FindByTransactionID"); err != nil {
		return nil, err
	}
	for _, payment := range p.s.payments {
		if payment.TransactionID == transactionID {
			found := payment
			return &found, nil
		}
	}
	return nil, apperr.WithDetails(apperr.ErrNotFound, "payment "+transactionID)
}

func (p PaymentStore) Create(_ context.Context, payment *models.Payment) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if err := p.s.fail("payments.Create"); err != nil {
		return err
	}
	for _, existing := range p.s.payments {
		if existing.TransactionID == payment.TransactionID {
			return apperr.WithDetails(apperr.ErrConflict, "payment "+payment.TransactionID)
		}
	}
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	p.s.payments = append(p.s.payments, *payment)
	return nil
}

type RiderStore struct{ s *Store }

func (r RiderStore) List(_ context.Context, filter db.RiderFilter) ([]models.Rider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("riders.List"); err != nil {
		return nil, err
	}
	out := []models.Rider{}
	for _, rider := range r.s.riders {
		if filter.Status != "" && rider.Status != filter.Status {
			continue
		}
		if filter.District != "" && rider.District != filter.District {
			continue
		}
		if filter.WorkStatus != "" && rider.WorkStatus != filter.WorkStatus {
			continue
		}
		out = append(out, rider)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r RiderStore) Get(_ context.Context, id primitive.ObjectID) (*models.Rider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("riders.Get"); err != nil {
		return nil, err
	}
	for _, rider := range r.s.riders {
		if rider.ID == id {
			found := rider
			return &found, nil
		}
	}
	return nil, apperr.WithDetails(apperr.ErrNotFound, "rider "+id.Hex())
}

func (r RiderStore) Create(_ context.Context, rider *models.Rider) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("riders.Create"); err != nil {
		return err
	}
	if rider.ID.IsZero() {
		rider.ID = primitive.NewObjectID()
	}
	r.s.riders = append(r.s.riders, *rider)
	return nil
}

func (r RiderStore) SetWorkStatus(_ context.Context, id primitive.ObjectID, workStatus string) (db.UpdateResult, error) {
	return r.update(id, "riders.SetWorkStatus", func(rider *models.Rider) {
		rider.WorkStatus = workStatus
	})
}

func (r RiderStore) SetStatus(_ context.Context, id primitive.ObjectID, status, workStatus string) (db.UpdateResult, error) {
	return r.update(id, "riders.SetStatus", func(rider *models.Rider) {
		rider.Status = status
		rider.WorkStatus = workStatus
	})
}

func (r RiderStore) update(id primitive.ObjectID, op string, apply func(*models.Rider)) (db.UpdateResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(op); err != nil {
		return db.UpdateResult{}, err
	}
	for i := range r.s.riders {
		if r.s.riders[i].ID == id {
			apply(&r.s.riders[i])
			return db.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	return db.UpdateResult{}, nil
}

// DirectTx runs workflow steps without a transaction.
type DirectTx struct{}

func (DirectTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (DirectTx) Transactional() bool { return false }
