package api

import (
	"github.com/coverwing/membership/internal/service/checkout"
	"github.com/coverwing/membership/internal/service/quote"
	"github.com/coverwing/membership/internal/service/rates"
	"github.com/gin-gonic/gin"
)

// NewRouter wires every handler group onto one engine.
func NewRouter(
	quoteSvc quote.QuoteUseCase,
	checkoutSvc checkout.CheckoutUseCase,
	ratesSvc rates.RatesUseCase,
	geo Geo,
	jobsToken string,
) *gin.Engine {
	router := gin.Default()

	NewSessionHandler(quoteSvc).Register(router.Group("/sessions"))
	NewQuoteHandler(quoteSvc).Register(router.Group("/quotes"))
	NewReferralHandler(quoteSvc).Register(router.Group("/referrals"))
	NewCheckoutHandler(checkoutSvc).Register(router.Group("/checkout"))
	NewWebhookHandler(checkoutSvc).Register(router.Group("/webhooks"))
	NewJobHandler(quoteSvc, ratesSvc, jobsToken).Register(router.Group("/jobs"))
	NewCountryHandler(geo).Register(router)

	return router
}
