package api

import (
	"net/http"

	"github.com/coverwing/membership/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	service checkout.CheckoutUseCase
}

type initiateCheckoutRequest struct {
	QuoteID string `json:"quote_id"`
	Email   string `json:"email"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

type confirmResponse struct {
	MembershipID string `json:"membership_id"`
	Status       string `json:"status"`
}

func NewCheckoutHandler(service checkout.CheckoutUseCase) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

func (h *CheckoutHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.initiate)
	router.GET("/confirm", h.confirm)
	router.POST("/resend/:quoteId", h.resend)
}

// initiate is terminal for the request: the client follows the returned URL
// to the payment provider and comes back via /confirm.
func (h *CheckoutHandler) initiate(c *gin.Context) {
	var req initiateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := h.service.InitiateCheckout(c.Request.Context(), req.Email, req.QuoteID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, checkoutResponse{URL: url})
}

func (h *CheckoutHandler) confirm(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	membership, err := h.service.Confirm(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, confirmResponse{
		MembershipID: membership.ID,
		Status:       string(membership.Status),
	})
}

// resend is the explicit "send it again" path and bypasses the one-dispatch
// guard.
func (h *CheckoutHandler) resend(c *gin.Context) {
	if err := h.service.GenerateIfNotSent(c.Request.Context(), c.Param("quoteId"), true); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": true})
}
