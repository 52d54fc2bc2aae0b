package checkout

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/zapshift/parcel-server/internal/apperr"
)

// StripeProvider implements Provider with Stripe Checkout.
type StripeProvider struct {
	api        *client.API
	successURL string
	cancelURL  string
}

// NewStripeProvider builds a provider whose sessions return the customer to
// siteDomain after checkout.
func NewStripeProvider(secretKey, siteDomain string) *StripeProvider {
	return &StripeProvider{
		api:        client.New(secretKey, nil),
		successURL: SuccessURL(siteDomain),
		cancelURL:  CancelURL(siteDomain),
	}
}

// SuccessURL is where the customer lands after paying. Stripe substitutes
// the session id placeholder.
func SuccessURL(siteDomain string) string {
	return siteDomain + "/dashboard/payment-success?session_id={CHECKOUT_SESSION_ID}"
}

func CancelURL(siteDomain string) string {
	return siteDomain + "/dashboard/payment-cancelled"
}

func (p *StripeProvider) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := sessionParams(req, p.successURL, p.cancelURL)
	params.Context = ctx

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "stripe: create checkout session")
	}
	return fromStripe(s), nil
}

func (p *StripeProvider) GetSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.Get(id, params)
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
		return nil, apperr.WithDetails(apperr.ErrNotFound, "checkout session "+id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "stripe: retrieve checkout session %s", id)
	}
	return fromStripe(s), nil
}

func sessionParams(req SessionRequest, successURL, cancelURL string) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ParcelName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata(MetadataParcelID, req.ParcelID)
	params.AddMetadata(MetadataParcelName, req.ParcelName)
	return params
}

func fromStripe(s *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		CustomerEmail: s.CustomerEmail,
		Metadata:      s.Metadata,
	}
	if s.PaymentIntent != nil {
		out.TransactionID = s.PaymentIntent.ID
	}
	if out.CustomerEmail == "" && s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	return out
}
