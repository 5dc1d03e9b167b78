package api

import (
	"net/http"

	"github.com/coverwing/membership/internal/service/quote"
	"github.com/gin-gonic/gin"
)

type ReferralHandler struct {
	service quote.QuoteUseCase
}

type referralResponse struct {
	Valid           bool `json:"valid"`
	DiscountPercent int  `json:"discount_percent"`
}

func NewReferralHandler(service quote.QuoteUseCase) *ReferralHandler {
	return &ReferralHandler{service: service}
}

func (h *ReferralHandler) Register(router *gin.RouterGroup) {
	router.GET("/:code", h.check)
}

// check reports invalid for unknown and inactive codes alike.
func (h *ReferralHandler) check(c *gin.Context) {
	code, err := h.service.CheckReferralCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	if code == nil {
		c.JSON(http.StatusOK, referralResponse{Valid: false})
		return
	}

	c.JSON(http.StatusOK, referralResponse{Valid: true, DiscountPercent: code.DiscountPercent})
}
