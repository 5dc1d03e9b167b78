package api

import (
	"net/http"
	"time"

	"github.com/coverwing/membership/internal/domain"
	"github.com/coverwing/membership/internal/service/quote"
	"github.com/gin-gonic/gin"
)

type QuoteHandler struct {
	service quote.QuoteUseCase
}

type quoteResponse struct {
	ID                   string `json:"id"`
	MembershipID         string `json:"membership_id"`
	BasePrice            int64  `json:"base_price"`
	MedicalLoadingPrice  int64  `json:"medical_loading_price"`
	CoverageLoadingPrice int64  `json:"coverage_loading_price"`
	DiscountAmount       int64  `json:"discount_amount"`
	TotalPrice           int64  `json:"total_price"`
	Currency             string `json:"currency"`
	CreatedAt            string `json:"created_at"`
}

func NewQuoteHandler(service quote.QuoteUseCase) *QuoteHandler {
	return &QuoteHandler{service: service}
}

func (h *QuoteHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.get)
}

func (h *QuoteHandler) create(c *gin.Context) {
	var req quote.CreateQuoteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q, err := h.service.CreateQuote(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toQuoteResponse(q))
}

func (h *QuoteHandler) get(c *gin.Context) {
	q, err := h.service.GetQuote(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toQuoteResponse(q))
}

func toQuoteResponse(q *domain.Quote) quoteResponse {
	return quoteResponse{
		ID:                   q.ID,
		MembershipID:         q.MembershipID,
		BasePrice:            q.BasePrice,
		MedicalLoadingPrice:  q.MedicalLoadingPrice,
		CoverageLoadingPrice: q.CoverageLoadingPrice,
		DiscountAmount:       q.DiscountAmount,
		TotalPrice:           q.TotalPrice,
		Currency:             q.Currency,
		CreatedAt:            q.CreatedAt.Format(time.RFC3339),
	}
}
