package postgres

import (
	"context"

	"pricing-service/internal/entity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type RateRepository interface {
	StoreRate(ctx context.Context, rate entity.ExchangeRate) error
	StoreRates(ctx context.Context, rates []entity.ExchangeRate) error
	GetLatestRate(ctx context.Context, pair string) (*entity.ExchangeRate, error)
}

type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}
