package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"text/template"
	"time"

	"github.com/coverwing/membership/internal/domain"
	"github.com/coverwing/membership/internal/kafka"
	"github.com/coverwing/membership/internal/payments"
	"github.com/coverwing/membership/internal/repository"
	"github.com/coverwing/membership/internal/service/pricing"
)

type CheckoutUseCase interface {
	InitiateCheckout(ctx context.Context, email, quoteID string) (string, error)
	Confirm(ctx context.Context, checkoutSessionID string) (*domain.Membership, error)
	GenerateIfNotSent(ctx context.Context, quoteID string, force bool) error
	HandleWebhookEvent(ctx context.Context, payload []byte, signature string) error
}

// Payments is the provider surface the service needs; satisfied by
// payments.StripeClient.
type Payments interface {
	CreateCustomer(ctx context.Context, email string) (string, error)
	CreateCheckoutSession(ctx context.Context, params payments.CheckoutParams) (*payments.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*payments.CheckoutSession, error)
	VerifyWebhook(payload []byte, signature string) (string, json.RawMessage, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CheckoutService struct {
	payments           Payments
	quotes             repository.QuoteRepository
	memberships        repository.MembershipRepository
	customers          repository.CustomerRepository
	catalog            repository.CatalogRepository
	producer           Producer
	notificationsTopic string
	lineItemName       string
}

type CheckoutServiceOption func(*CheckoutService)

func WithLineItemName(name string) CheckoutServiceOption {
	return func(s *CheckoutService) {
		s.lineItemName = name
	}
}

func NewCheckoutService(
	payments Payments,
	quotes repository.QuoteRepository,
	memberships repository.MembershipRepository,
	customers repository.CustomerRepository,
	catalog repository.CatalogRepository,
	producer Producer,
	notificationsTopic string,
	opts ...CheckoutServiceOption,
) *CheckoutService {
	service := &CheckoutService{
		payments:           payments,
		quotes:             quotes,
		memberships:        memberships,
		customers:          customers,
		catalog:            catalog,
		producer:           producer,
		notificationsTopic: notificationsTopic,
		lineItemName:       "Insurance membership",
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// InitiateCheckout creates the provider checkout resource for a persisted
// quote and returns the redirect URL. The customer mapping is resolved
// first and created on miss; the unique constraint on email makes the
// create race-safe.
func (s *CheckoutService) InitiateCheckout(ctx context.Context, email, quoteID string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("%w: user has no email", domain.ErrCheckout)
	}

	quote, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("%w: quote %s not found", domain.ErrCheckout, quoteID)
		}
		return "", err
	}

	customer, err := s.ensureCustomer(ctx, email)
	if err != nil {
		return "", err
	}

	session, err := s.payments.CreateCheckoutSession(ctx, payments.CheckoutParams{
		CustomerID:   customer.StripeCustomerID,
		Currency:     quote.Currency,
		Amount:       quote.TotalPrice,
		Description:  s.lineItemName,
		QuoteID:      quote.ID,
		MembershipID: quote.MembershipID,
	})
	if err != nil {
		return "", err
	}
	if session.URL == "" {
		return "", fmt.Errorf("%w: checkout session %s has no redirect URL", domain.ErrCheckout, session.ID)
	}
	return session.URL, nil
}

// Confirm re-fetches the checkout session on return from payment, marks the
// membership paid and triggers the one automatic document dispatch.
func (s *CheckoutService) Confirm(ctx context.Context, checkoutSessionID string) (*domain.Membership, error) {
	session, err := s.payments.GetCheckoutSession(ctx, checkoutSessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCheckout, err)
	}
	if !session.Complete {
		return nil, fmt.Errorf("%w: session %s is not complete", domain.ErrCheckout, checkoutSessionID)
	}

	quoteID := session.Metadata["quote_id"]
	if quoteID == "" {
		return nil, fmt.Errorf("%w: session %s has no quote metadata", domain.ErrCheckout, checkoutSessionID)
	}
	return s.finalize(ctx, quoteID)
}

func (s *CheckoutService) finalize(ctx context.Context, quoteID string) (*domain.Membership, error) {
	quote, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	membership, err := s.memberships.GetByID(ctx, quote.MembershipID)
	if err != nil {
		return nil, err
	}

	if membership.Status == domain.MembershipStatusDraft {
		if membership, err = s.memberships.UpdateStatus(ctx, membership.ID, domain.MembershipStatusPaid); err != nil {
			return nil, err
		}
	}
	if err := s.GenerateIfNotSent(ctx, quoteID, false); err != nil {
		return nil, err
	}
	return s.memberships.GetByID(ctx, membership.ID)
}

// GenerateIfNotSent renders the membership certificate and dispatches it by
// email at most once automatically; force bypasses the marker for explicit
// "send it again" requests. Only paid-for memberships are eligible: drafts
// are refused even when forced. Safe to call repeatedly.
func (s *CheckoutService) GenerateIfNotSent(ctx context.Context, quoteID string, force bool) error {
	quote, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return err
	}
	membership, err := s.memberships.GetByID(ctx, quote.MembershipID)
	if err != nil {
		return err
	}
	if membership.Status == domain.MembershipStatusDraft {
		return fmt.Errorf("%w: membership %s has not been paid for", domain.ErrCheckout, membership.ID)
	}

	if !force {
		flipped, err := s.quotes.MarkDocumentSent(ctx, quoteID)
		if err != nil {
			return err
		}
		if !flipped {
			// Marker set but status still paid: an earlier dispatch stopped
			// before the promotion. Finish it so confirms converge on active.
			if membership.Status == domain.MembershipStatusPaid {
				_, err := s.memberships.UpdateStatus(ctx, membership.ID, domain.MembershipStatusActive)
				return err
			}
			return nil
		}
	}

	primary, err := s.memberships.GetPrimaryMember(ctx, membership.ID)
	if err != nil {
		return err
	}

	document, err := renderCertificate(membership, quote, primary)
	if err != nil {
		return err
	}

	if s.producer != nil && s.notificationsTopic != "" {
		event := kafka.MembershipEvent{
			Type:         "membership_confirmed",
			MembershipID: membership.ID,
			QuoteID:      quote.ID,
			Email:        primary.Email,
			Name:         primary.FirstName,
			Status:       string(membership.Status),
			TotalPrice:   quote.TotalPrice,
			Currency:     quote.Currency,
			Document:     document,
			OccurredAt:   time.Now(),
		}
		if err := s.producer.Publish(ctx, s.notificationsTopic, membership.ID, event); err != nil {
			return err
		}
	}

	if membership.Status == domain.MembershipStatusPaid {
		if _, err := s.memberships.UpdateStatus(ctx, membership.ID, domain.MembershipStatusActive); err != nil {
			return err
		}
	}
	return nil
}

// HandleWebhookEvent verifies the signature and dispatches on the closed
// event variant. Unknown types are ignored; known-but-unhandled types
// surface as ErrUnhandledEvent so the HTTP layer reports a handler error.
func (s *CheckoutService) HandleWebhookEvent(ctx context.Context, payload []byte, signature string) error {
	eventType, raw, err := s.payments.VerifyWebhook(payload, signature)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBadSignature, err)
	}

	switch ClassifyEvent(eventType) {
	case EventProductUpserted:
		var p struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Active bool   `json:"active"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		return s.catalog.UpsertProduct(ctx, &domain.Product{ID: p.ID, Name: p.Name, Active: p.Active})
	case EventProductDeleted:
		var p struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		return s.catalog.DeleteProduct(ctx, p.ID)
	case EventPriceUpserted:
		var p struct {
			ID         string `json:"id"`
			Product    string `json:"product"`
			Currency   string `json:"currency"`
			UnitAmount int64  `json:"unit_amount"`
			Active     bool   `json:"active"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		return s.catalog.UpsertPrice(ctx, &domain.Price{ID: p.ID, ProductID: p.Product, Currency: p.Currency, UnitAmount: p.UnitAmount, Active: p.Active})
	case EventPriceDeleted:
		var p struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		return s.catalog.DeletePrice(ctx, p.ID)
	case EventCheckoutCompleted:
		var sess struct {
			Metadata map[string]string `json:"metadata"`
		}
		if err := json.Unmarshal(raw, &sess); err != nil {
			return err
		}
		quoteID := sess.Metadata["quote_id"]
		if quoteID == "" {
			return errors.New("checkout.session.completed without quote metadata")
		}
		_, err := s.finalize(ctx, quoteID)
		return err
	case EventSubscriptionChanged:
		return fmt.Errorf("%w: %s", domain.ErrUnhandledEvent, eventType)
	}

	log.Printf("webhook: ignoring event type %s", eventType)
	return nil
}

func (s *CheckoutService) ensureCustomer(ctx context.Context, email string) (*domain.Customer, error) {
	customer, err := s.customers.GetByEmail(ctx, email)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	stripeID, err := s.payments.CreateCustomer(ctx, email)
	if err != nil {
		return nil, err
	}
	created := &domain.Customer{Email: email, StripeCustomerID: stripeID}
	if err := s.customers.Create(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

var certificateTmpl = template.Must(template.New("certificate").Parse(`Membership Certificate
======================

Member:     {{.Name}}
Membership: {{.MembershipID}}
Plan:       {{.MembershipType}} / {{.CoverageType}} / {{.DurationType}}
Total paid: {{.Symbol}}{{.Total}} ({{.Currency}}, minor units)

This certificate confirms active insurance membership.
`))

func renderCertificate(m *domain.Membership, q *domain.Quote, primary *domain.Member) (string, error) {
	var buf bytes.Buffer
	err := certificateTmpl.Execute(&buf, map[string]interface{}{
		"Name":           primary.FirstName + " " + primary.LastName,
		"MembershipID":   m.ID,
		"MembershipType": m.MembershipType,
		"CoverageType":   m.CoverageType,
		"DurationType":   m.DurationType,
		"Symbol":         pricing.CurrencySymbol(q.Currency),
		"Total":          q.TotalPrice,
		"Currency":       q.Currency,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

var _ CheckoutUseCase = (*CheckoutService)(nil)
