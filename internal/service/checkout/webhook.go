package checkout

import "strings"

// EventKind is the closed set of webhook event variants the service knows
// about. Classification is explicit so "irrelevant, ignore" and "known but
// unhandled" stay distinct outcomes.
type EventKind int

const (
	EventIgnored EventKind = iota
	EventProductUpserted
	EventProductDeleted
	EventPriceUpserted
	EventPriceDeleted
	EventCheckoutCompleted
	EventSubscriptionChanged
)

func ClassifyEvent(eventType string) EventKind {
	switch eventType {
	case "product.created", "product.updated":
		return EventProductUpserted
	case "product.deleted":
		return EventProductDeleted
	case "price.created", "price.updated":
		return EventPriceUpserted
	case "price.deleted":
		return EventPriceDeleted
	case "checkout.session.completed":
		return EventCheckoutCompleted
	}
	if strings.HasPrefix(eventType, "customer.subscription.") {
		return EventSubscriptionChanged
	}
	return EventIgnored
}
