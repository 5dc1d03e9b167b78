package api

import (
	"net/http"
	"strings"

	"github.com/coverwing/membership/internal/service/quote"
	"github.com/coverwing/membership/internal/service/rates"
	"github.com/gin-gonic/gin"
)

// JobHandler exposes the scheduled jobs as HTTP entry points for an
// external cron, gated by a shared bearer token.
type JobHandler struct {
	quotes quote.QuoteUseCase
	rates  rates.RatesUseCase
	token  string
}

func NewJobHandler(quotes quote.QuoteUseCase, rates rates.RatesUseCase, token string) *JobHandler {
	return &JobHandler{quotes: quotes, rates: rates, token: token}
}

func (h *JobHandler) Register(router *gin.RouterGroup) {
	router.Use(h.authorize)
	router.POST("/followup-sweep", h.followupSweep)
	router.POST("/rates-refresh", h.ratesRefresh)
}

func (h *JobHandler) authorize(c *gin.Context) {
	auth := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || h.token == "" || token != h.token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (h *JobHandler) followupSweep(c *gin.Context) {
	flagged, err := h.quotes.FollowUpStaleDrafts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"flagged": len(flagged)})
}

func (h *JobHandler) ratesRefresh(c *gin.Context) {
	updated, err := h.rates.Refresh(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
