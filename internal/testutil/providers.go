package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zapshift/parcel-server/internal/apperr"
	"github.com/zapshift/parcel-server/internal/checkout"
	"github.com/zapshift/parcel-server/internal/identity"
	"github.com/zapshift/parcel-server/internal/models"
)

// CheckoutProvider records created sessions and lets tests complete them.
type CheckoutProvider struct {
	mu       sync.Mutex
	sessions map[string]*checkout.Session
	seq      int
	Err      error
}

func NewCheckoutProvider() *CheckoutProvider {
	return &CheckoutProvider{sessions: map[string]*checkout.Session{}}
}

func (p *CheckoutProvider) CreateSession(_ context.Context, req checkout.SessionRequest) (*checkout.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	p.seq++
	id := fmt.Sprintf("cs_test_%d", p.seq)
	s := &checkout.Session{
		ID:            id,
		URL:           "https://checkout.example/pay/" + id,
		PaymentStatus: "unpaid",
		AmountTotal:   req.AmountCents,
		Currency:      req.Currency,
		CustomerEmail: req.CustomerEmail,
		Metadata: map[string]string{
			checkout.MetadataParcelID:   req.ParcelID,
			checkout.MetadataParcelName: req.ParcelName,
		},
	}
	p.sessions[id] = s
	copied := *s
	return &copied, nil
}

func (p *CheckoutProvider) GetSession(_ context.Context, id string) (*checkout.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	s, ok := p.sessions[id]
	if !ok {
		return nil, apperr.WithDetails(apperr.ErrNotFound, "checkout session "+id)
	}
	copied := *s
	return &copied, nil
}

// Pay marks a session as paid, the way the provider does once the
// customer completes checkout.
func (p *CheckoutProvider) Pay(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.sessions[id]
	s.PaymentStatus = checkout.StatusPaid
	s.TransactionID = "pi_" + strings.TrimPrefix(id, "cs_test_")
}

// Session returns the stored session, as the provider sees it.
func (p *CheckoutProvider) Session(id string) *checkout.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessions[id]
}

// Put registers a session directly.
func (p *CheckoutProvider) Put(s *checkout.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[s.ID] = s
}

// Verifier accepts the tokens in its map, keyed by token value.
type Verifier map[string]string

func (v Verifier) Verify(_ context.Context, idToken string) (*identity.Identity, error) {
	email, ok := v[idToken]
	if !ok {
		return nil, fmt.Errorf("unknown token")
	}
	return &identity.Identity{UID: email, Email: email}, nil
}

// Receipts keeps archived receipts in memory, keyed by transaction id.
type Receipts struct {
	mu       sync.Mutex
	Archived map[string]models.Payment
	Err      error
}

func NewReceipts() *Receipts {
	return &Receipts{Archived: map[string]models.Payment{}}
}

func (r *Receipts) Archive(_ context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Archived[payment.TransactionID] = *payment
	return nil
}

func (r *Receipts) PresignedURL(_ context.Context, payment *models.Payment, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.example/receipts/%s/%s.json?expires=%d",
		payment.TrackingID, payment.TransactionID, int(expiry.Seconds())), nil
}
