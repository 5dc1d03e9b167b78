package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coverwing/membership/internal/domain"
	"github.com/coverwing/membership/internal/service/quote"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestQuoteHandler_create(t *testing.T) {
	mockService := &MockQuoteUseCase{}
	handler := NewQuoteHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := quote.CreateQuoteInput{
		SessionID:      "session-1",
		MembershipType: domain.MembershipTypeIndividual,
		CoverageType:   domain.CoverageTypeEurope,
		DurationType:   domain.DurationTypeAnnual,
	}
	body, _ := json.Marshal(input)
	c.Request = httptest.NewRequest("POST", "/quotes", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	created := &domain.Quote{
		ID:           "q-1",
		MembershipID: "m-1",
		BasePrice:    1000,
		TotalPrice:   1000,
		Currency:     "GBP",
	}

	mockService.On("CreateQuote", c.Request.Context(), input).Return(created, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response quoteResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "q-1", response.ID)
	assert.Equal(t, int64(1000), response.TotalPrice)

	mockService.AssertExpectations(t)
}

func TestQuoteHandler_create_ValidationError(t *testing.T) {
	mockService := &MockQuoteUseCase{}
	handler := NewQuoteHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := quote.CreateQuoteInput{SessionID: "session-1"}
	body, _ := json.Marshal(input)
	c.Request = httptest.NewRequest("POST", "/quotes", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreateQuote", c.Request.Context(), input).
		Return(nil, domain.NewValidationError("members", "at least one member is required"))

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}

func TestQuoteHandler_get(t *testing.T) {
	mockService := &MockQuoteUseCase{}
	handler := NewQuoteHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "q-1"}}
	c.Request = httptest.NewRequest("GET", "/quotes/q-1", nil)

	mockService.On("GetQuote", c.Request.Context(), "q-1").
		Return(&domain.Quote{ID: "q-1", MembershipID: "m-1", TotalPrice: 900, Currency: "GBP"}, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response quoteResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, int64(900), response.TotalPrice)

	mockService.AssertExpectations(t)
}

func TestQuoteHandler_get_NotFound(t *testing.T) {
	mockService := &MockQuoteUseCase{}
	handler := NewQuoteHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	c.Request = httptest.NewRequest("GET", "/quotes/missing", nil)

	mockService.On("GetQuote", c.Request.Context(), "missing").Return(nil, domain.ErrNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}
