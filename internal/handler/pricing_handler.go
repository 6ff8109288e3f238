package handler

import (
	"errors"
	"net/http"
	"strconv"

	"pricing-service/internal/pricing"
	"pricing-service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PricingHandler struct {
	usecase usecase.QuoteUsecase
	logger  *logrus.Logger
}

func NewPricingHandler(usecase usecase.QuoteUsecase, logger *logrus.Logger) *PricingHandler {
	return &PricingHandler{
		usecase: usecase,
		logger:  logger,
	}
}

func (h *PricingHandler) Register(r gin.IRouter) {
	data := r.Group("/api/data")
	data.GET("/exchange-rate", h.GetExchangeRate)
	data.POST("/exchange-rate/refresh", h.RefreshExchangeRate)
	data.PUT("/exchange-rate", h.SetExchangeRate)

	p := r.Group("/api/pricing")
	p.GET("/total", h.GetTotalPrice)
	p.POST("/quote", h.PostQuote)
	p.GET("/local-fee", h.GetLocalFee)
	p.GET("/customs", h.GetCustomsDuty)
	p.GET("/commission", h.GetCommission)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrNegativePrice),
		errors.Is(err, usecase.ErrInvalidPrice),
		errors.Is(err, usecase.ErrInvalidRate):
		return http.StatusBadRequest
	case errors.Is(err, pricing.ErrNegotiationRequired):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *PricingHandler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).Errorf("Request %s failed", c.FullPath())
	} else {
		h.logger.WithError(err).Debugf("Rejected request %s", c.FullPath())
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// queryFloat parses an optional positive-rate style parameter. A missing
// parameter yields nil.
func queryFloat(c *gin.Context, name string) (*float64, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid '" + name + "' parameter, must be a number"})
		return nil, false
	}
	return &v, true
}

func queryPlatform(c *gin.Context) (int, bool) {
	raw := c.Query("platform")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter 'platform'"})
		return 0, false
	}
	platform, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'platform' parameter, must be an integer"})
		return 0, false
	}
	return platform, true
}

func (h *PricingHandler) GetTotalPrice(c *gin.Context) {
	platform, ok := queryPlatform(c)
	if !ok {
		return
	}
	rate, ok := queryFloat(c, "rate")
	if !ok {
		return
	}

	resp, err := h.usecase.Quote(c.Request.Context(), usecase.QuoteRequest{
		Price:        pricing.ParsePrice(c.Query("price")),
		Platform:     platform,
		Category:     c.Query("category"),
		ExchangeRate: rate,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PricingHandler) PostQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Debug("Invalid quote body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	resp, err := h.usecase.Quote(c.Request.Context(), usecase.QuoteRequest{
		Price:        pricing.ParsePrice(string(req.Price)),
		Platform:     *req.Platform,
		Category:     req.Category,
		ExchangeRate: req.ExchangeRate,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PricingHandler) GetLocalFee(c *gin.Context) {
	platform, ok := queryPlatform(c)
	if !ok {
		return
	}

	resp, err := h.usecase.LocalFee(c.Request.Context(), pricing.ParsePrice(c.Query("price")), platform, c.Query("category"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PricingHandler) GetCustomsDuty(c *gin.Context) {
	resp, err := h.usecase.CustomsDuty(c.Request.Context(), pricing.ParsePrice(c.Query("amount")), c.Query("category"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PricingHandler) GetCommission(c *gin.Context) {
	userRate, ok := queryFloat(c, "rate")
	if !ok {
		return
	}

	resp, err := h.usecase.Commission(c.Request.Context(), pricing.ParsePrice(c.Query("amount")), userRate)
	if err != nil {
		if errors.Is(err, pricing.ErrNegotiationRequired) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "negotiation_required": true})
			return
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PricingHandler) GetExchangeRate(c *gin.Context) {
	c.JSON(http.StatusOK, h.usecase.ExchangeRate(c.Request.Context()))
}

func (h *PricingHandler) RefreshExchangeRate(c *gin.Context) {
	resp, err := h.usecase.RefreshExchangeRate(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to refresh exchange rate")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch exchange rate"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PricingHandler) SetExchangeRate(c *gin.Context) {
	var req SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'rate', must be a positive number"})
		return
	}

	resp, err := h.usecase.SetExchangeRate(c.Request.Context(), req.Rate)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
