package handler

import "encoding/json"

// RawPrice accepts a JSON number or string and keeps its raw text so it can
// be coerced with pricing.ParsePrice.
type RawPrice string

func (p *RawPrice) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = RawPrice(s)
		return nil
	}
	*p = RawPrice(b)
	return nil
}

type QuoteRequest struct {
	Price        RawPrice `json:"price"`
	Platform     *int     `json:"platform" binding:"required"`
	Category     string   `json:"category"`
	ExchangeRate *float64 `json:"exchange_rate" binding:"omitempty,gt=0"`
}

type SetRateRequest struct {
	Rate float64 `json:"rate" binding:"required,gt=0"`
}
