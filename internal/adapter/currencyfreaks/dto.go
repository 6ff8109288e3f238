package currencyfreaks

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type LatestRates struct {
	Date  string            `json:"date"`
	Base  string            `json:"base"`
	Rates map[string]string `json:"rates"`
}

// Get returns the rate of code against the response base currency.
func (l LatestRates) Get(code string) (decimal.Decimal, error) {
	raw, ok := l.Rates[strings.ToUpper(code)]
	if !ok {
		return decimal.Zero, fmt.Errorf("rate %s missing from response", code)
	}
	value, err := decimal.NewFromString(strings.Replace(raw, ",", ".", -1))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse rate %s: %w", code, err)
	}
	return value, nil
}

// Cross returns how many units of quote one unit of base buys.
func (l LatestRates) Cross(base, quote string) (decimal.Decimal, error) {
	b, err := l.Get(base)
	if err != nil {
		return decimal.Zero, err
	}
	q, err := l.Get(quote)
	if err != nil {
		return decimal.Zero, err
	}
	if b.IsZero() {
		return decimal.Zero, fmt.Errorf("rate %s is zero", base)
	}
	return q.Div(b), nil
}
