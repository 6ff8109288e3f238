package usecase

import "context"

type QuoteUsecase interface {
	Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error)
	LocalFee(ctx context.Context, price float64, platform int, category string) (*FeeResponse, error)
	CustomsDuty(ctx context.Context, amountKRW float64, category string) (*DutyResponse, error)
	Commission(ctx context.Context, amount float64, userRate *float64) (*CommissionResponse, error)

	ExchangeRate(ctx context.Context) *ExchangeRateResponse
	RefreshExchangeRate(ctx context.Context) (*ExchangeRateResponse, error)
	SetExchangeRate(ctx context.Context, rate float64) (*ExchangeRateResponse, error)
}
