package service

import (
	"context"

	"pricing-service/internal/entity"
)

// RateProvider supplies the JPY to KRW rate used for landed prices. Rate
// never fails; it falls back to the last known or default rate.
type RateProvider interface {
	Rate(ctx context.Context) float64
}

type ExchangeRateService interface {
	RateProvider
	Refresh(ctx context.Context) error
	SetRate(ctx context.Context, rate float64) error
	Snapshot() entity.ExchangeRate
}
