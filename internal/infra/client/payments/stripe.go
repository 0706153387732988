package payments

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/sitehatch/sitehatch-backend/internal/application/interfaces"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// Stripe is the checkout-session client. The API key is process-global in the
// SDK, so construct this once at startup.
type Stripe struct{}

var _ interfaces.SessionSource = (*Stripe)(nil)

func NewStripe() *Stripe {
	stripe.Key = os.Getenv("STRIPE_KEY")
	stripe.SetHTTPClient(&http.Client{Timeout: 10 * time.Second})
	return &Stripe{}
}

func (s *Stripe) CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	params.Context = ctx
	return session.New(params)
}

func (s *Stripe) GetSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	return session.Get(sessionID, params)
}
