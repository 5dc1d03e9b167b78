package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coverwing/membership/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCheckoutUseCase is a mock implementation of checkout.CheckoutUseCase
type MockCheckoutUseCase struct {
	mock.Mock
}

func (m *MockCheckoutUseCase) InitiateCheckout(ctx context.Context, email, quoteID string) (string, error) {
	args := m.Called(ctx, email, quoteID)
	return args.String(0), args.Error(1)
}

func (m *MockCheckoutUseCase) Confirm(ctx context.Context, checkoutSessionID string) (*domain.Membership, error) {
	args := m.Called(ctx, checkoutSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Membership), args.Error(1)
}

func (m *MockCheckoutUseCase) GenerateIfNotSent(ctx context.Context, quoteID string, force bool) error {
	args := m.Called(ctx, quoteID, force)
	return args.Error(0)
}

func (m *MockCheckoutUseCase) HandleWebhookEvent(ctx context.Context, payload []byte, signature string) error {
	args := m.Called(ctx, payload, signature)
	return args.Error(0)
}

func TestCheckoutHandler_initiate(t *testing.T) {
	mockService := &MockCheckoutUseCase{}
	handler := NewCheckoutHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(initiateCheckoutRequest{QuoteID: "q-1", Email: "alice@example.com"})
	c.Request = httptest.NewRequest("POST", "/checkout", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("InitiateCheckout", c.Request.Context(), "alice@example.com", "q-1").
		Return("https://pay.example/cs_1", nil)

	handler.initiate(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response checkoutResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "https://pay.example/cs_1", response.URL)

	mockService.AssertExpectations(t)
}

func TestCheckoutHandler_initiate_CheckoutError(t *testing.T) {
	mockService := &MockCheckoutUseCase{}
	handler := NewCheckoutHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(initiateCheckoutRequest{QuoteID: "missing", Email: "alice@example.com"})
	c.Request = httptest.NewRequest("POST", "/checkout", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("InitiateCheckout", c.Request.Context(), "alice@example.com", "missing").
		Return("", domain.ErrCheckout)

	handler.initiate(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}

func TestCheckoutHandler_confirm(t *testing.T) {
	mockService := &MockCheckoutUseCase{}
	handler := NewCheckoutHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/checkout/confirm?session_id=cs_1", nil)

	membership := &domain.Membership{ID: "m-1", Status: domain.MembershipStatusActive}
	mockService.On("Confirm", c.Request.Context(), "cs_1").Return(membership, nil)

	handler.confirm(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response confirmResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "m-1", response.MembershipID)
	assert.Equal(t, string(domain.MembershipStatusActive), response.Status)

	mockService.AssertExpectations(t)
}

func TestCheckoutHandler_confirm_MissingSessionID(t *testing.T) {
	mockService := &MockCheckoutUseCase{}
	handler := NewCheckoutHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/checkout/confirm", nil)

	handler.confirm(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Confirm")
}

func TestCheckoutHandler_resend(t *testing.T) {
	mockService := &MockCheckoutUseCase{}
	handler := NewCheckoutHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "quoteId", Value: "q-1"}}
	c.Request = httptest.NewRequest("POST", "/checkout/resend/q-1", nil)

	mockService.On("GenerateIfNotSent", c.Request.Context(), "q-1", true).Return(nil)

	handler.resend(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}
