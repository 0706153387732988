package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sitehatch/sitehatch-backend/internal/application/commands/publish"
	"github.com/sitehatch/sitehatch-backend/internal/application/consts"
	"github.com/sitehatch/sitehatch-backend/internal/application/dto"
	"github.com/sitehatch/sitehatch-backend/internal/application/errs"
	"github.com/sitehatch/sitehatch-backend/internal/application/interfaces"
	"github.com/sitehatch/sitehatch-backend/internal/infra/auth"
	"github.com/sitehatch/sitehatch-backend/internal/infra/config"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db/repo"
	dbs "github.com/sitehatch/sitehatch-backend/pkg/db"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

type Payment struct {
	uowFactory *dbs.UOWFactory
	cfg        PaymentConfig
	appCfg     *config.AppConfig
	publisher  *publish.Publish
	sessions   interfaces.SessionSource
}

type PaymentConfig struct {
	webhookKey string
	returnURL  string
}

func NewPaymentConfig() PaymentConfig {
	return PaymentConfig{
		webhookKey: os.Getenv("STRIPE_WEBHOOK"),
		returnURL:  os.Getenv("STRIPE_RETURN_URL"),
	}
}

func NewPayment(uowFactory *dbs.UOWFactory, cfg PaymentConfig, appCfg *config.AppConfig, publisher *publish.Publish, sessions interfaces.SessionSource) *Payment {
	return &Payment{
		uowFactory: uowFactory,
		cfg:        cfg,
		appCfg:     appCfg,
		publisher:  publisher,
		sessions:   sessions,
	}
}

// CreateCheckout opens an embedded checkout session for a one-time website
// purchase and pins the session ID onto the website row.
func (c *Payment) CreateCheckout(ctx context.Context, req *dto.CheckoutRequest, identity *auth.Identity) (*dto.CheckoutResponse, error) {
	websiteID, err := uuid.Parse(req.WebsiteID)
	if err != nil {
		return nil, errs.InvalidInputError{Msg: "websiteId is not a valid identifier"}
	}

	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	websiteRepo := repo.NewWebsiteRepo(tx)
	website, err := websiteRepo.GetByID(ctx, websiteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errs.NotFoundError{Entity: "website", ID: websiteID.String()}
		}
		return nil, err
	}
	if identity != nil && website.UserID != identity.UserID {
		err = errs.UnauthorizedError{}
		return nil, err
	}
	if website.PaymentStatus == consts.PaymentStatusPaid {
		return &dto.CheckoutResponse{AlreadyPaid: true}, nil
	}

	returnURL := c.cfg.returnURL
	if returnURL == "" {
		returnURL = c.appCfg.BaseURL
	}
	params := &stripe.CheckoutSessionParams{
		UIMode:    stripe.String("embedded"),
		ReturnURL: stripe.String(returnURL + "/complete?session_id={CHECKOUT_SESSION_ID}"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(c.appCfg.Currency),
					UnitAmount: stripe.Int64(c.appCfg.PriceCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Website publishing"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		Metadata: map[string]string{
			"websiteId": website.ID.String(),
		},
	}

	slog.Info("creating checkout session", "websiteID", website.ID)
	s, sErr := c.sessions.CreateSession(ctx, params)
	if sErr != nil {
		err = errs.UpstreamError{Collaborator: "payment", Err: sErr}
		return nil, err
	}

	if err = websiteRepo.SetPaymentSession(ctx, website.ID, s.ID, c.appCfg.PriceCents); err != nil {
		return nil, err
	}

	return &dto.CheckoutResponse{
		SessionID:    s.ID,
		ClientSecret: s.ClientSecret,
	}, nil
}

// VerifyPayment checks a checkout session against the provider and, when it
// settled, records the payment and deploys the website. Safe to call again
// after success.
func (c *Payment) VerifyPayment(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error) {
	if req.SessionID == "" {
		return nil, errs.InvalidInputError{Msg: "sessionId is required"}
	}

	s, err := c.sessions.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, errs.UpstreamError{Collaborator: "payment", Err: err}
	}

	websiteID, err := c.websiteForSession(ctx, s)
	if err != nil {
		return nil, err
	}

	if s.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return &dto.VerifyPaymentResponse{
			PaymentStatus: consts.PaymentStatusPending,
		}, nil
	}

	if err := c.settle(ctx, websiteID, s.ID); err != nil {
		return nil, err
	}

	deployResp, err := c.publisher.DeployApproved(ctx, websiteID)
	if err != nil {
		// Payment is recorded; the deploy can be retried by verifying again
		// or by publishing directly.
		slog.Error("deploy after payment failed", "websiteID", websiteID, "err", err)
		return &dto.VerifyPaymentResponse{
			PaymentStatus: consts.PaymentStatusPaid,
			WebsiteStatus: consts.WebsiteStatusReady,
		}, nil
	}

	return &dto.VerifyPaymentResponse{
		PaymentStatus: consts.PaymentStatusPaid,
		WebsiteStatus: deployResp.Status,
		AlreadyDone:   deployResp.AlreadyDone,
		DeploymentURL: deployResp.DeploymentURL,
	}, nil
}

func (c *Payment) websiteForSession(ctx context.Context, s *stripe.CheckoutSession) (uuid.UUID, error) {
	if raw, ok := s.Metadata["websiteId"]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			return id, nil
		}
	}

	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return uuid.Nil, err
	}
	defer uow.Finalize(&err)

	website, err := repo.NewWebsiteRepo(tx).GetByPaymentSession(ctx, s.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errs.NotFoundError{Entity: "website", ID: s.ID}
		}
		return uuid.Nil, err
	}
	return website.ID, nil
}

func (c *Payment) settle(ctx context.Context, websiteID uuid.UUID, sessionID string) error {
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return err
	}
	defer uow.Finalize(&err)

	websiteRepo := repo.NewWebsiteRepo(tx)
	website, err := websiteRepo.GetByID(ctx, websiteID)
	if err != nil {
		return err
	}
	if website.PaymentStatus == consts.PaymentStatusPaid {
		return nil
	}

	if website.PaymentSessionID == nil || *website.PaymentSessionID != sessionID {
		if err = websiteRepo.SetPaymentSession(ctx, websiteID, sessionID, c.appCfg.PriceCents); err != nil {
			return err
		}
	}
	if err = websiteRepo.MarkPaid(ctx, websiteID, time.Now()); err != nil {
		return err
	}
	slog.Info("payment settled", "websiteID", websiteID, "session", sessionID)
	return nil
}

// Webhook handles provider callbacks. Without a signing secret configured
// events are acknowledged but never acted on.
func (c *Payment) Webhook(ctx context.Context, payload []byte, stripeHeader string) error {
	if c.cfg.webhookKey == "" {
		slog.Warn("webhook received but no signing secret is configured, ignoring")
		return nil
	}

	event, err := webhook.ConstructEvent(payload, stripeHeader, c.cfg.webhookKey)
	if err != nil {
		return errs.UnauthorizedError{}
	}

	slog.Info("handling payment event", "type", event.Type)

	switch event.Type {

	case "checkout.session.completed":
		return c.handleSessionCompleted(ctx, event)

	case "checkout.session.async_payment_failed", "checkout.session.expired":
		return c.handleSessionFailed(ctx, event)

	default:
		slog.Info("unhandled payment event", "type", event.Type)
		return nil
	}
}

func (c *Payment) handleSessionCompleted(ctx context.Context, event stripe.Event) error {
	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return fmt.Errorf("error parsing session, %v", err)
	}

	_, err := c.VerifyPayment(ctx, &dto.VerifyPaymentRequest{SessionID: s.ID})
	return err
}

func (c *Payment) handleSessionFailed(ctx context.Context, event stripe.Event) error {
	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return fmt.Errorf("error parsing session, %v", err)
	}

	websiteID, err := c.websiteForSession(ctx, &s)
	if err != nil {
		return err
	}

	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return err
	}
	defer uow.Finalize(&err)

	websiteRepo := repo.NewWebsiteRepo(tx)
	website, err := websiteRepo.GetByID(ctx, websiteID)
	if err != nil {
		return err
	}
	if website.PaymentStatus == consts.PaymentStatusPaid {
		slog.Info("ignoring failure event for settled payment", "websiteID", websiteID)
		return nil
	}

	if err = websiteRepo.MarkPaymentFailed(ctx, websiteID); err != nil {
		return err
	}
	slog.Info("payment marked failed", "websiteID", websiteID, "session", s.ID)
	return nil
}
