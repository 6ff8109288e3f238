package currencyfreaks

import "context"

type RatesClient interface {
	FetchLatest(ctx context.Context) (*LatestRates, error)
}
