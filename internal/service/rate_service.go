package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pricing-service/internal/adapter/currencyfreaks"
	"pricing-service/internal/adapter/postgres"
	"pricing-service/internal/entity"
	"pricing-service/pkg/metrics"

	"github.com/patrickmn/go-cache"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"
)

const (
	freshKey      = "rate:fresh"
	lastKey       = "rate:last"
	refreshingKey = "rate:refreshing"

	sourceAPI     = "currencyfreaks"
	sourceDefault = "default"
	sourceManual  = "manual"

	backgroundRefreshTimeout = 20 * time.Second
	refreshCooldown          = 30 * time.Second
)

type RateOptions struct {
	DefaultRate    float64
	Markup         float64
	CacheTTL       time.Duration
	WarmupAttempts uint64
}

type RateService struct {
	client  currencyfreaks.RatesClient
	repo    postgres.RateRepository
	cache   *cache.Cache
	group   singleflight.Group
	opts    RateOptions
	metrics *metrics.Metrics
	logger  *logrus.Logger
	now     func() time.Time
}

// NewRateService builds the rate provider. repo may be nil, in which case
// snapshots are kept in memory only.
func NewRateService(client currencyfreaks.RatesClient, repo postgres.RateRepository, opts RateOptions, m *metrics.Metrics, logger *logrus.Logger) *RateService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.WarmupAttempts == 0 {
		opts.WarmupAttempts = 1
	}
	if m == nil {
		m = metrics.Nop()
	}
	m.ExchangeRate.Set(opts.DefaultRate)

	return &RateService{
		client:  client,
		repo:    repo,
		cache:   cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		opts:    opts,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *RateService) Rate(ctx context.Context) float64 {
	if v, ok := s.cache.Get(freshKey); ok {
		return v.(entity.ExchangeRate).Float()
	}

	// Add fails while the key is present, so at most one lazy refresh
	// starts per cooldown window.
	if err := s.cache.Add(refreshingKey, struct{}{}, refreshCooldown); err == nil {
		go s.backgroundRefresh(context.WithoutCancel(ctx))
	}

	return s.Snapshot().Float()
}

func (s *RateService) backgroundRefresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, backgroundRefreshTimeout)
	defer cancel()

	if err := s.Refresh(ctx); err != nil {
		s.logger.WithError(err).Debug("Background rate refresh failed")
	}
}

// Snapshot returns the last known rate, or the configured default when no
// rate has been fetched or restored yet.
func (s *RateService) Snapshot() entity.ExchangeRate {
	if v, ok := s.cache.Get(lastKey); ok {
		return v.(entity.ExchangeRate)
	}
	return entity.ExchangeRate{
		Pair:   entity.PairJPYKRW,
		Rate:   decimal.NewFromFloat(s.opts.DefaultRate),
		Source: sourceDefault,
	}
}

// Refresh fetches the latest rate. Concurrent callers share one request.
// On failure the previous rate stays in effect.
func (s *RateService) Refresh(ctx context.Context) error {
	_, err, _ := s.group.Do("refresh", func() (any, error) {
		return nil, s.refresh(ctx)
	})
	return err
}

func (s *RateService) refresh(ctx context.Context) error {
	latest, err := s.client.FetchLatest(ctx)
	if err != nil {
		s.metrics.RateRefresh.WithLabelValues("error").Inc()
		s.logger.WithError(err).Warnf("Failed to fetch exchange rate, keeping %s", s.Snapshot().Rate)
		return fmt.Errorf("fetch rates: %w", err)
	}

	cross, err := latest.Cross("JPY", "KRW")
	if err != nil {
		s.metrics.RateRefresh.WithLabelValues("error").Inc()
		s.logger.WithError(err).Warn("Rates response has no usable JPY/KRW pair")
		return fmt.Errorf("derive JPY/KRW: %w", err)
	}
	cross = cross.Add(decimal.NewFromFloat(s.opts.Markup))
	if !cross.IsPositive() {
		s.metrics.RateRefresh.WithLabelValues("error").Inc()
		return fmt.Errorf("derived rate %s is not positive", cross)
	}

	at := s.now().UTC()
	rate := entity.ExchangeRate{Pair: entity.PairJPYKRW, Rate: cross, Source: sourceAPI, FetchedAt: at}
	s.remember(rate)
	s.metrics.RateRefresh.WithLabelValues("ok").Inc()

	s.logger.WithFields(logrus.Fields{
		"pair": rate.Pair,
		"rate": rate.Rate.String(),
		"base": latest.Base,
	}).Info("Exchange rate updated")

	s.persist(ctx, snapshotsOf(rate, latest))
	return nil
}

// snapshotsOf returns the derived rate followed by the raw quotes it was
// derived from.
func snapshotsOf(rate entity.ExchangeRate, latest *currencyfreaks.LatestRates) []entity.ExchangeRate {
	out := []entity.ExchangeRate{rate}
	for _, code := range []string{"KRW", "JPY"} {
		v, err := latest.Get(code)
		if err != nil || latest.Base == "" {
			continue
		}
		out = append(out, entity.ExchangeRate{
			Pair:      latest.Base + "/" + code,
			Rate:      v,
			Source:    rate.Source,
			FetchedAt: rate.FetchedAt,
		})
	}
	return out
}

func (s *RateService) persist(ctx context.Context, rates []entity.ExchangeRate) {
	if s.repo == nil {
		return
	}
	if err := s.repo.StoreRates(ctx, rates); err != nil {
		s.logger.WithError(err).Error("Failed to store exchange rate snapshot")
	}
}

func (s *RateService) remember(rate entity.ExchangeRate) {
	s.cache.Set(freshKey, rate, cache.DefaultExpiration)
	s.cache.Set(lastKey, rate, cache.NoExpiration)
	s.metrics.ExchangeRate.Set(rate.Float())
}

// SetRate pins rate as the current rate until the cache expires.
func (s *RateService) SetRate(ctx context.Context, rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("rate must be positive, got %v", rate)
	}

	snapshot := entity.ExchangeRate{
		Pair:      entity.PairJPYKRW,
		Rate:      decimal.NewFromFloat(rate),
		Source:    sourceManual,
		FetchedAt: s.now().UTC(),
	}
	s.remember(snapshot)
	s.logger.Infof("Exchange rate manually set to %v", rate)

	if s.repo != nil {
		if err := s.repo.StoreRate(ctx, snapshot); err != nil {
			return fmt.Errorf("store manual rate: %w", err)
		}
	}
	return nil
}

// WarmUp restores the latest stored rate and then fetches a fresh one,
// retrying with exponential backoff.
func (s *RateService) WarmUp(ctx context.Context) error {
	var errs error

	if s.repo != nil {
		stored, err := s.repo.GetLatestRate(ctx, entity.PairJPYKRW)
		switch {
		case err == nil:
			s.cache.Set(lastKey, *stored, cache.NoExpiration)
			s.metrics.ExchangeRate.Set(stored.Float())
			s.logger.Infof("Restored exchange rate %s from %s", stored.Rate, stored.FetchedAt.Format(time.RFC3339))
		case errors.Is(err, postgres.ErrNotFound):
			s.logger.Debug("No stored exchange rate to restore")
		default:
			errs = multierr.Append(errs, fmt.Errorf("restore rate: %w", err))
		}
	}

	backoff := retry.WithMaxRetries(s.opts.WarmupAttempts-1, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.Refresh(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		errs = multierr.Append(errs, err)
	}

	return errs
}
