package payment

import (
	"context"
	"errors"
	"math"

	"storefront-be/internal/logger"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
	"go.uber.org/zap"
)

type stripeIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripeRefundAPI interface {
	New(params *stripe.RefundParams) (*stripe.Refund, error)
}

type stripeGateway struct {
	intents stripeIntentAPI
	refunds stripeRefundAPI
}

// NewStripeGateway constructs a Gateway backed by the Stripe API.
func NewStripeGateway(apiKey string) Gateway {
	if apiKey == "" {
		logger.L().Warn("Stripe API key is empty")
	}

	sc := client.New(apiKey, nil)
	return &stripeGateway{
		intents: sc.PaymentIntents,
		refunds: sc.Refunds,
	}
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromCents(cents int64) float64 {
	return float64(cents) / 100
}

func upstream(op string, err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		return &UpstreamError{Op: op, Message: se.Msg, Err: err}
	}
	return &UpstreamError{Op: op, Err: err}
}

func (g *stripeGateway) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*Intent, error) {
	log := logger.FromCtx(ctx).With(
		zap.Float64("amount", amount),
		zap.String("currency", currency),
	)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toCents(amount)),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.intents.New(params)
	if err != nil {
		log.Error("stripe: failed to create payment intent", zap.Error(err))
		return nil, upstream("create_intent", err)
	}

	log.Info("payment intent created", zap.String("intent_id", pi.ID))
	return intentFromStripe(pi), nil
}

func (g *stripeGateway) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.intents.Get(id, params)
	if err != nil {
		logger.FromCtx(ctx).Error("stripe: failed to retrieve payment intent",
			zap.String("intent_id", id),
			zap.Error(err),
		)
		return nil, upstream("retrieve_intent", err)
	}

	return intentFromStripe(pi), nil
}

func (g *stripeGateway) Refund(ctx context.Context, intentID string, amount *float64, reason string) (*RefundResult, error) {
	log := logger.FromCtx(ctx).With(zap.String("intent_id", intentID))

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
	}
	params.Context = ctx
	if amount != nil {
		params.Amount = stripe.Int64(toCents(*amount))
	}
	if reason != "" {
		params.Reason = stripe.String(reason)
	}

	ref, err := g.refunds.New(params)
	if err != nil {
		log.Error("stripe: refund failed", zap.Error(err))
		return nil, upstream("refund", err)
	}

	log.Info("refund processed",
		zap.String("refund_id", ref.ID),
		zap.String("status", string(ref.Status)),
	)

	return &RefundResult{
		ID:     ref.ID,
		Amount: fromCents(ref.Amount),
		Status: string(ref.Status),
		Reason: string(ref.Reason),
	}, nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       fromCents(pi.Amount),
		Currency:     string(pi.Currency),
		Created:      pi.Created,
		Metadata:     pi.Metadata,
	}
}

// VerifyWebhook checks the processor's signature over the raw payload and
// normalizes the event. Unsigned or tampered payloads are rejected.
func VerifyWebhook(payload []byte, sigHeader, secret string) (Event, error) {
	ev, err := webhook.ConstructEvent(payload, sigHeader, secret)
	if err != nil {
		return Event{}, ErrInvalidSignature
	}

	var intentID string
	if id, ok := ev.Data.Object["id"].(string); ok {
		intentID = id
	}

	return Event{
		Type:     string(ev.Type),
		IntentID: intentID,
	}, nil
}
