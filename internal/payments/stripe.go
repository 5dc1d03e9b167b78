package payments

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/coverwing/membership/config"
	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
)

// CheckoutSession is the slice of the provider's checkout object the
// application cares about.
type CheckoutSession struct {
	ID       string
	URL      string
	Complete bool
	Metadata map[string]string
}

type CheckoutParams struct {
	CustomerID   string
	Currency     string
	Amount       int64
	Description  string
	QuoteID      string
	MembershipID string
}

type StripeClient struct {
	sc            *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
}

func NewStripeClient(cfg config.StripeConfig) *StripeClient {
	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)
	return &StripeClient{
		sc:            sc,
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

func (c *StripeClient) CreateCustomer(ctx context.Context, email string) (string, error) {
	cust, err := c.sc.Customers.New(&stripe.CustomerParams{Email: stripe.String(email)})
	if err != nil {
		return "", err
	}
	return cust.ID, nil
}

func (c *StripeClient) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	sess, err := c.sc.CheckoutSessions.New(&stripe.CheckoutSessionParams{
		Customer:            stripe.String(params.CustomerID),
		SuccessURL:          stripe.String(c.successURL),
		CancelURL:           stripe.String(c.cancelURL),
		Mode:                stripe.String(string(stripe.CheckoutSessionModePayment)),
		AllowPromotionCodes: stripe.Bool(true),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(params.Currency)),
				UnitAmount: stripe.Int64(params.Amount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(params.Description),
				},
			},
		}},
		Metadata: map[string]string{
			"quote_id":      params.QuoteID,
			"membership_id": params.MembershipID,
		},
	})
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{
		ID:       sess.ID,
		URL:      sess.URL,
		Complete: sess.Status == stripe.CheckoutSessionStatusComplete,
		Metadata: sess.Metadata,
	}, nil
}

func (c *StripeClient) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	sess, err := c.sc.CheckoutSessions.Get(id, nil)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{
		ID:       sess.ID,
		URL:      sess.URL,
		Complete: sess.Status == stripe.CheckoutSessionStatusComplete,
		Metadata: sess.Metadata,
	}, nil
}

// VerifyWebhook checks the signature against the shared secret and returns
// the event type with the raw event object payload.
func (c *StripeClient) VerifyWebhook(payload []byte, signature string) (string, json.RawMessage, error) {
	event, err := webhook.ConstructEvent(payload, signature, c.webhookSecret)
	if err != nil {
		return "", nil, err
	}
	return string(event.Type), event.Data.Raw, nil
}
