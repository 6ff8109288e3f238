package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"

	"pricing-service/internal/entity"
	"pricing-service/internal/pricing"
	"pricing-service/internal/service"
	"pricing-service/pkg/metrics"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	ErrNegativePrice = errors.New("price must not be negative")
	ErrInvalidPrice  = errors.New("price must be a finite number")
	ErrInvalidRate   = errors.New("exchange rate must be a positive number")
)

type PricingUsecase struct {
	rates   service.ExchangeRateService
	metrics *metrics.Metrics
	printer *message.Printer
	logger  *logrus.Logger
}

func NewPricingUsecase(rates service.ExchangeRateService, m *metrics.Metrics, logger *logrus.Logger) *PricingUsecase {
	if m == nil {
		m = metrics.Nop()
	}
	return &PricingUsecase{
		rates:   rates,
		metrics: m,
		printer: message.NewPrinter(language.Korean),
		logger:  logger,
	}
}

func (uc *PricingUsecase) formatKRW(v float64) string {
	return uc.printer.Sprintf("₩%d", int64(v))
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func validPrice(v float64) error {
	if !finite(v) {
		return ErrInvalidPrice
	}
	if v < 0 {
		return ErrNegativePrice
	}
	return nil
}

func (uc *PricingUsecase) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	if err := validPrice(req.Price); err != nil {
		return nil, err
	}

	rate := 0.0
	if req.ExchangeRate != nil {
		rate = *req.ExchangeRate
		if rate <= 0 || !finite(rate) {
			return nil, ErrInvalidRate
		}
	} else {
		rate = uc.rates.Rate(ctx)
	}

	platform := entity.Platform(req.Platform)
	if !platform.Valid() {
		uc.logger.Warnf("Unknown platform %d, local fee will be 0", req.Platform)
	}
	category := entity.ParseCategory(req.Category)

	q := pricing.Quote(req.Price, platform, category, rate)
	if !finite(q.Total) {
		uc.logger.WithFields(logrus.Fields{
			"price": req.Price,
			"rate":  rate,
		}).Warn("Landed price overflows, rejecting quote")
		return nil, ErrInvalidPrice
	}
	uc.metrics.Quotes.WithLabelValues(platform.String()).Inc()

	if q.DutyOutOfPolicy {
		uc.logger.WithFields(logrus.Fields{
			"amount_krw": q.AmountKRW,
			"category":   req.Category,
		}).Warn("Amount is past the customs schedule, duty reported as 0")
	}

	uc.logger.WithFields(logrus.Fields{
		"price":    q.Price,
		"platform": platform.String(),
		"category": category.String(),
		"rate":     rate,
		"total":    q.Total,
	}).Debug("Quoted landed price")

	return &QuoteResponse{
		Price:           q.Price,
		Platform:        req.Platform,
		PlatformName:    platform.String(),
		Category:        req.Category,
		ExchangeRate:    rate,
		LocalFee:        q.LocalFee,
		AmountKRW:       q.AmountKRW,
		CustomsDuty:     q.CustomsDuty,
		DutyOutOfPolicy: q.DutyOutOfPolicy,
		Total:           q.Total,
		TotalFormatted:  uc.formatKRW(q.Total),
	}, nil
}

func (uc *PricingUsecase) LocalFee(ctx context.Context, price float64, platform int, category string) (*FeeResponse, error) {
	if err := validPrice(price); err != nil {
		return nil, err
	}

	return &FeeResponse{
		Price:    price,
		Platform: platform,
		Category: category,
		LocalFee: pricing.LocalFee(price, entity.Platform(platform), entity.ParseCategory(category)),
	}, nil
}

func (uc *PricingUsecase) CustomsDuty(ctx context.Context, amountKRW float64, category string) (*DutyResponse, error) {
	if err := validPrice(amountKRW); err != nil {
		return nil, err
	}

	c := entity.ParseCategory(category)
	resp := &DutyResponse{
		AmountKRW:       amountKRW,
		Category:        category,
		CustomsDuty:     pricing.CustomsDuty(amountKRW, c),
		DutyOutOfPolicy: pricing.CustomsOutOfPolicy(amountKRW, c),
	}
	if resp.DutyOutOfPolicy {
		uc.logger.WithField("amount_krw", amountKRW).Warn("Amount is past the customs schedule, duty reported as 0")
	}
	return resp, nil
}

func (uc *PricingUsecase) Commission(ctx context.Context, amount float64, userRate *float64) (*CommissionResponse, error) {
	if err := validPrice(amount); err != nil {
		return nil, err
	}
	if userRate != nil && (*userRate < 0 || !finite(*userRate)) {
		return nil, fmt.Errorf("%w: commission rate %v", ErrInvalidRate, *userRate)
	}

	fee, err := pricing.CommissionFee(amount, userRate)
	if err != nil {
		uc.logger.WithField("amount", amount).Info("Commission needs separate negotiation")
		return nil, err
	}
	if !finite(fee) {
		return nil, ErrInvalidPrice
	}

	return &CommissionResponse{
		Amount:       amount,
		Fee:          fee,
		VAT:          pricing.CommissionVAT(fee),
		FeeFormatted: uc.formatKRW(fee),
	}, nil
}

func rateResponse(rate entity.ExchangeRate) *ExchangeRateResponse {
	resp := &ExchangeRateResponse{Rate: rate.Float(), Source: rate.Source}
	if !rate.FetchedAt.IsZero() {
		at := rate.FetchedAt
		resp.FetchedAt = &at
	}
	return resp
}

func (uc *PricingUsecase) ExchangeRate(ctx context.Context) *ExchangeRateResponse {
	// Rate kicks off a lazy refresh when the cached value expired.
	uc.rates.Rate(ctx)
	return rateResponse(uc.rates.Snapshot())
}

func (uc *PricingUsecase) RefreshExchangeRate(ctx context.Context) (*ExchangeRateResponse, error) {
	uc.logger.Info("Refreshing exchange rate on request...")
	if err := uc.rates.Refresh(ctx); err != nil {
		return nil, err
	}
	return rateResponse(uc.rates.Snapshot()), nil
}

func (uc *PricingUsecase) SetExchangeRate(ctx context.Context, rate float64) (*ExchangeRateResponse, error) {
	if rate <= 0 || !finite(rate) {
		return nil, ErrInvalidRate
	}
	if err := uc.rates.SetRate(ctx, rate); err != nil {
		return nil, err
	}
	return rateResponse(uc.rates.Snapshot()), nil
}
