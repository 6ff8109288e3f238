package postgres

import (
	"context"
	"errors"
	"fmt"

	"pricing-service/internal/entity"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const ratesTable = "exchange_rates"

var (
	psql        = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	ErrNotFound = errors.New("not found")
)

type PostgresRepo struct {
	pool   Pool
	logger *logrus.Logger
}

func NewPostgresRepo(pool Pool, logger *logrus.Logger) *PostgresRepo {
	return &PostgresRepo{
		pool:   pool,
		logger: logger,
	}
}

func insertRate(rate entity.ExchangeRate) (string, []any, error) {
	return psql.Insert(ratesTable).
		Columns("pair", "rate", "source", "fetched_at").
		Values(rate.Pair, rate.Rate, rate.Source, rate.FetchedAt).
		ToSql()
}

func (r *PostgresRepo) StoreRate(ctx context.Context, rate entity.ExchangeRate) error {
	query, args, err := insertRate(rate)
	if err != nil {
		return fmt.Errorf("build insert for %s: %w", rate.Pair, err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		r.logger.WithError(err).WithField("pair", rate.Pair).Error("Failed to store exchange rate")
		return fmt.Errorf("insert rate: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"pair": rate.Pair,
		"rate": rate.Rate.String(),
	}).Debug("Stored exchange rate snapshot")
	return nil
}

func (r *PostgresRepo) StoreRates(ctx context.Context, rates []entity.ExchangeRate) error {
	if len(rates) == 0 {
		return nil
	}

	r.logger.Infof("Start storing %d exchange rate snapshots", len(rates))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.WithError(err).Error("Failed to begin transaction")
		return fmt.Errorf("begin tx: %w", err)
	}

	batch := &pgx.Batch{}
	for _, rate := range rates {
		query, args, err := insertRate(rate)
		if err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("build insert for %s: %w", rate.Pair, err)
		}
		batch.Queue(query, args...)
	}

	br := tx.SendBatch(ctx, batch)

	var batchErrs error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			batchErrs = multierr.Append(batchErrs, err)
			r.logger.WithError(err).Errorf("Failed batch exec for rate %d", i)
		}
	}

	if err := br.Close(); err != nil {
		batchErrs = multierr.Append(batchErrs, err)
		r.logger.WithError(err).Error("Failed to close batch results")
	}

	if batchErrs != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			r.logger.WithError(rbErr).Error("Failed to rollback tx after batch errors")
		}
		return fmt.Errorf("batch exec/close errors: %w", batchErrs)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.WithError(err).Error("Failed to commit tx")
		return fmt.Errorf("commit tx: %w", err)
	}

	r.logger.Info("Successfully stored exchange rate snapshots")
	return nil
}

func (r *PostgresRepo) GetLatestRate(ctx context.Context, pair string) (*entity.ExchangeRate, error) {
	query, args, err := psql.
		Select("id", "pair", "rate::text", "source", "fetched_at").
		From(ratesTable).
		Where(sq.Eq{"pair": pair}).
		OrderBy("fetched_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		r.logger.WithError(err).Error("Failed to build select query")
		return nil, fmt.Errorf("build select: %w", err)
	}

	var (
		rate     entity.ExchangeRate
		rateText string
	)
	err = r.pool.QueryRow(ctx, query, args...).
		Scan(
			&rate.ID,
			&rate.Pair,
			&rateText,
			&rate.Source,
			&rate.FetchedAt,
		)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.WithError(err).WithField("pair", pair).Error("Failed to query latest rate")
		return nil, fmt.Errorf("query latest rate: %w", err)
	}

	rate.Rate, err = decimal.NewFromString(rateText)
	if err != nil {
		return nil, fmt.Errorf("parse stored rate %q: %w", rateText, err)
	}

	r.logger.WithFields(logrus.Fields{
		"pair":       rate.Pair,
		"rate":       rate.Rate.String(),
		"fetched_at": rate.FetchedAt,
	}).Info("Restored latest exchange rate")

	return &rate, nil
}
