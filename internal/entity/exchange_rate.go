package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const PairJPYKRW = "JPY/KRW"

type ExchangeRate struct {
	ID        int64           `db:"id" json:"id,omitempty"`
	Pair      string          `db:"pair" json:"pair"`
	Rate      decimal.Decimal `db:"rate" json:"rate"`
	Source    string          `db:"source" json:"source,omitempty"`
	FetchedAt time.Time       `db:"fetched_at" json:"fetched_at"`
}

func (r ExchangeRate) Float() float64 {
	f, _ := r.Rate.Float64()
	return f
}
