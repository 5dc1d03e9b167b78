package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/coverwing/membership/internal/domain"
	"github.com/coverwing/membership/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	service checkout.CheckoutUseCase
}

func NewWebhookHandler(service checkout.CheckoutUseCase) *WebhookHandler {
	return &WebhookHandler{service: service}
}

func (h *WebhookHandler) Register(router *gin.RouterGroup) {
	router.POST("/stripe", h.stripe)
}

func (h *WebhookHandler) stripe(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	err = h.service.HandleWebhookEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		// Signature failures short-circuit with 400 and no processing;
		// everything the service does happens after verification.
		if errors.Is(err, domain.ErrBadSignature) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
			return
		}
		if errors.Is(err, domain.ErrUnhandledEvent) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
