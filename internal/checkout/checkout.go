// Package checkout creates and reads hosted payment sessions.
package checkout

import (
	"context"
)

// StatusPaid is the payment status of a session whose payment completed.
const StatusPaid = "paid"

const (
	MetadataParcelID   = "parcelId"
	MetadataParcelName = "parcelName"
)

type SessionRequest struct {
	ParcelID      string
	ParcelName    string
	CustomerEmail string
	AmountCents   int64
	Currency      string
}

// Session is the provider-neutral view of a payment session.
type Session struct {
	ID            string
	URL           string
	TransactionID string
	PaymentStatus string
	AmountTotal   int64 // minor currency units
	Currency      string
	CustomerEmail string
	Metadata      map[string]string
}

type Provider interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
}
