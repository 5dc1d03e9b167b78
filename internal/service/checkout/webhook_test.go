package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyEvent(t *testing.T) {
	testCases := []struct {
		eventType string
		want      EventKind
	}{
		{"product.created", EventProductUpserted},
		{"product.updated", EventProductUpserted},
		{"product.deleted", EventProductDeleted},
		{"price.created", EventPriceUpserted},
		{"price.updated", EventPriceUpserted},
		{"price.deleted", EventPriceDeleted},
		{"checkout.session.completed", EventCheckoutCompleted},
		{"customer.subscription.created", EventSubscriptionChanged},
		{"customer.subscription.deleted", EventSubscriptionChanged},
		{"invoice.paid", EventIgnored},
		{"charge.refunded", EventIgnored},
		{"", EventIgnored},
	}

	for _, tc := range testCases {
		t.Run(tc.eventType, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyEvent(tc.eventType))
		})
	}
}
