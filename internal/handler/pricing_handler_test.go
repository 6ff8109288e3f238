package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pricing-service/internal/entity"
	"pricing-service/internal/pricing"
	"pricing-service/internal/usecase"
	"pricing-service/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockQuoteUsecase struct {
	mock.Mock
}

func (m *mockQuoteUsecase) Quote(ctx context.Context, req usecase.QuoteRequest) (*usecase.QuoteResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.QuoteResponse), args.Error(1)
}

func (m *mockQuoteUsecase) LocalFee(ctx context.Context, price float64, platform int, category string) (*usecase.FeeResponse, error) {
	args := m.Called(ctx, price, platform, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.FeeResponse), args.Error(1)
}

func (m *mockQuoteUsecase) CustomsDuty(ctx context.Context, amountKRW float64, category string) (*usecase.DutyResponse, error) {
	args := m.Called(ctx, amountKRW, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.DutyResponse), args.Error(1)
}

func (m *mockQuoteUsecase) Commission(ctx context.Context, amount float64, userRate *float64) (*usecase.CommissionResponse, error) {
	args := m.Called(ctx, amount, userRate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CommissionResponse), args.Error(1)
}

func (m *mockQuoteUsecase) ExchangeRate(ctx context.Context) *usecase.ExchangeRateResponse {
	args := m.Called(ctx)
	return args.Get(0).(*usecase.ExchangeRateResponse)
}

func (m *mockQuoteUsecase) RefreshExchangeRate(ctx context.Context) (*usecase.ExchangeRateResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ExchangeRateResponse), args.Error(1)
}

func (m *mockQuoteUsecase) SetExchangeRate(ctx context.Context, rate float64) (*usecase.ExchangeRateResponse, error) {
	args := m.Called(ctx, rate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ExchangeRateResponse), args.Error(1)
}

func setupTestHandler() (*PricingHandler, *mockQuoteUsecase, *logrus.Logger, *test.Hook) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(mockQuoteUsecase)
	logger, hook := test.NewNullLogger()
	handler := NewPricingHandler(mockUsecase, logger)
	return handler, mockUsecase, logger, hook
}

func newContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, w
}

func TestGetTotalPrice_Success(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	expected := &usecase.QuoteResponse{Price: 9999, Platform: 1, Category: "가방", Total: 10799, TotalFormatted: "₩10,799"}
	mockUsecase.On("Quote", mock.Anything, usecase.QuoteRequest{Price: 9999, Platform: 1, Category: "가방"}).Return(expected, nil)

	c, w := newContext("GET", "/api/pricing/total?price=9999&platform=1&category=%EA%B0%80%EB%B0%A9", nil)
	handler.GetTotalPrice(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp usecase.QuoteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 10799.0, resp.Total)
	assert.Equal(t, "₩10,799", resp.TotalFormatted)

	mockUsecase.AssertExpectations(t)
}

func TestGetTotalPrice_CoercesPriceAndRate(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	rate := 9.5
	mockUsecase.On("Quote", mock.Anything, usecase.QuoteRequest{Price: 0, Platform: 2, ExchangeRate: &rate}).
		Return(&usecase.QuoteResponse{Platform: 2}, nil)

	c, w := newContext("GET", "/api/pricing/total?price=abc&platform=2&rate=9.5", nil)
	handler.GetTotalPrice(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUsecase.AssertExpectations(t)
}

func TestGetTotalPrice_MissingPlatform(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	c, w := newContext("GET", "/api/pricing/total?price=100", nil)
	handler.GetTotalPrice(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "missing required query parameter 'platform'", resp["error"])
	mockUsecase.AssertNotCalled(t, "Quote")
}

func TestGetTotalPrice_InvalidRate(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	c, w := newContext("GET", "/api/pricing/total?price=100&platform=1&rate=x", nil)
	handler.GetTotalPrice(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUsecase.AssertNotCalled(t, "Quote")
}

func TestGetTotalPrice_NegativePrice(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	mockUsecase.On("Quote", mock.Anything, mock.Anything).Return(nil, usecase.ErrNegativePrice)

	c, w := newContext("GET", "/api/pricing/total?price=-5&platform=1", nil)
	handler.GetTotalPrice(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, usecase.ErrNegativePrice.Error(), resp["error"])
}

func TestPostQuote_StringPrice(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	rate := 10.0
	mockUsecase.On("Quote", mock.Anything, usecase.QuoteRequest{Price: 9999, Platform: 1, Category: "의류", ExchangeRate: &rate}).
		Return(&usecase.QuoteResponse{Total: 145128}, nil)

	body := []byte(`{"price":"9999","platform":1,"category":"의류","exchange_rate":10}`)
	c, w := newContext("POST", "/api/pricing/quote", body)
	handler.PostQuote(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUsecase.AssertExpectations(t)
}

func TestPostQuote_NumericPrice(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	mockUsecase.On("Quote", mock.Anything, usecase.QuoteRequest{Price: 250000, Platform: 3, Category: "시계"}).
		Return(&usecase.QuoteResponse{}, nil)

	body := []byte(`{"price":250000,"platform":3,"category":"시계"}`)
	c, w := newContext("POST", "/api/pricing/quote", body)
	handler.PostQuote(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUsecase.AssertExpectations(t)
}

func TestPostQuote_InvalidBody(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	c, w := newContext("POST", "/api/pricing/quote", []byte(`{"price":100}`))
	handler.PostQuote(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUsecase.AssertNotCalled(t, "Quote")
}

func TestPostQuote_NonPositiveRate(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	c, w := newContext("POST", "/api/pricing/quote", []byte(`{"price":100,"platform":1,"exchange_rate":-1}`))
	handler.PostQuote(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUsecase.AssertNotCalled(t, "Quote")
}

func TestGetLocalFee(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	mockUsecase.On("LocalFee", mock.Anything, 50000.0, 1, "").
		Return(&usecase.FeeResponse{Price: 50000, Platform: 1, LocalFee: 4800}, nil)

	c, w := newContext("GET", "/api/pricing/local-fee?price=50000&platform=1", nil)
	handler.GetLocalFee(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp usecase.FeeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4800.0, resp.LocalFee)
}

func TestGetCustomsDuty(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	mockUsecase.On("CustomsDuty", mock.Anything, 2000000.0, "가방").
		Return(&usecase.DutyResponse{AmountKRW: 2000000, Category: "가방", CustomsDuty: 160000}, nil)

	c, w := newContext("GET", "/api/pricing/customs?amount=2000000&category=%EA%B0%80%EB%B0%A9", nil)
	handler.GetCustomsDuty(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp usecase.DutyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 160000.0, resp.CustomsDuty)
}

func TestGetCommission_NegotiationRequired(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	mockUsecase.On("Commission", mock.Anything, 60000000.0, (*float64)(nil)).
		Return(nil, pricing.ErrNegotiationRequired)

	c, w := newContext("GET", "/api/pricing/commission?amount=60000000", nil)
	handler.GetCommission(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["negotiation_required"])
}

func TestGetCommission_UserRate(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	rate := 3.0
	mockUsecase.On("Commission", mock.Anything, 1000000.0, &rate).
		Return(&usecase.CommissionResponse{Amount: 1000000, Fee: 30000, VAT: 2727}, nil)

	c, w := newContext("GET", "/api/pricing/commission?amount=1000000&rate=3", nil)
	handler.GetCommission(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUsecase.AssertExpectations(t)
}

func TestGetExchangeRate(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	mockUsecase.On("ExchangeRate", mock.Anything).Return(&usecase.ExchangeRateResponse{Rate: 9.4312, Source: "currencyfreaks"})

	c, w := newContext("GET", "/api/data/exchange-rate", nil)
	handler.GetExchangeRate(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp usecase.ExchangeRateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 9.4312, resp.Rate)
}

func TestRefreshExchangeRate_Error(t *testing.T) {
	handler, mockUsecase, _, hook := setupTestHandler()

	mockUsecase.On("RefreshExchangeRate", mock.Anything).Return(nil, errors.New("upstream down"))

	c, w := newContext("POST", "/api/data/exchange-rate/refresh", nil)
	handler.RefreshExchangeRate(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "Failed to refresh exchange rate", hook.LastEntry().Message)
}

func TestSetExchangeRate(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	mockUsecase.On("SetExchangeRate", mock.Anything, 9.1).Return(&usecase.ExchangeRateResponse{Rate: 9.1, Source: "manual"}, nil)

	c, w := newContext("PUT", "/api/data/exchange-rate", []byte(`{"rate":9.1}`))
	handler.SetExchangeRate(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUsecase.AssertExpectations(t)
}

func TestSetExchangeRate_Invalid(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	c, w := newContext("PUT", "/api/data/exchange-rate", []byte(`{"rate":0}`))
	handler.SetExchangeRate(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUsecase.AssertNotCalled(t, "SetExchangeRate")
}

func TestRegister_Routes(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	mockUsecase.On("ExchangeRate", mock.Anything).Return(&usecase.ExchangeRateResponse{Rate: 0.9, Source: "default"})

	r := gin.New()
	handler.Register(r)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/data/exchange-rate", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rate":0.9,"source":"default"}`, w.Body.String())
}

func TestRawPrice_UnmarshalJSON(t *testing.T) {
	var body QuoteRequest
	require.NoError(t, json.Unmarshal([]byte(`{"price":"12abc","platform":1}`), &body))
	assert.Equal(t, RawPrice("12abc"), body.Price)

	require.NoError(t, json.Unmarshal([]byte(`{"price":1.5e3,"platform":1}`), &body))
	assert.Equal(t, RawPrice("1.5e3"), body.Price)
	assert.Equal(t, 1500.0, pricing.ParsePrice(string(body.Price)))
}

func TestPostQuote_PlatformZero(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	mockUsecase.On("Quote", mock.Anything, usecase.QuoteRequest{Price: 100, Platform: 0}).
		Return(&usecase.QuoteResponse{Price: 100}, nil)

	c, w := newContext("POST", "/api/pricing/quote", []byte(`{"price":100,"platform":0}`))
	handler.PostQuote(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUsecase.AssertExpectations(t)
}

type fixedRates struct {
	rate float64
}

func (f fixedRates) Rate(ctx context.Context) float64                { return f.rate }
func (f fixedRates) Refresh(ctx context.Context) error               { return nil }
func (f fixedRates) SetRate(ctx context.Context, rate float64) error { return nil }
func (f fixedRates) Snapshot() entity.ExchangeRate {
	return entity.ExchangeRate{Pair: entity.PairJPYKRW, Rate: decimal.NewFromFloat(f.rate), Source: "default"}
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()
	uc := usecase.NewPricingUsecase(fixedRates{rate: 10}, metrics.Nop(), logger)
	r := gin.New()
	NewPricingHandler(uc, logger).Register(r)
	return r
}

func TestRouter_NonFiniteResults(t *testing.T) {
	r := setupRouter()

	cases := map[string]string{
		"overflowing total":        "/api/pricing/total?price=1e308&platform=1&rate=10",
		"overflowing price":        "/api/pricing/total?price=1e400&platform=1",
		"infinite commission rate": "/api/pricing/commission?amount=1000&rate=Inf",
		"overflowing commission":   "/api/pricing/commission?amount=1000&rate=1e308",
	}
	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", target, nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestRouter_CustomsWithoutCategory(t *testing.T) {
	r := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/pricing/customs?amount=500000", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp usecase.DutyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 500000.0, resp.AmountKRW)
	assert.Equal(t, 0.0, resp.CustomsDuty)
	assert.False(t, resp.DutyOutOfPolicy)
}

func TestRouter_QuoteUsesProviderRate(t *testing.T) {
	r := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/pricing/total?price=9999&platform=1&category=%EA%B0%80%EB%B0%A9", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp usecase.QuoteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 127429.0, resp.Total)
	assert.Equal(t, "₩127,429", resp.TotalFormatted)
}
