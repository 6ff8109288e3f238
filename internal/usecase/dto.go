package usecase

import "time"

type QuoteRequest struct {
	Price        float64
	Platform     int
	Category     string
	ExchangeRate *float64
}

type QuoteResponse struct {
	Price           float64 `json:"price"`
	Platform        int     `json:"platform"`
	PlatformName    string  `json:"platform_name"`
	Category        string  `json:"category"`
	ExchangeRate    float64 `json:"exchange_rate"`
	LocalFee        float64 `json:"local_fee"`
	AmountKRW       float64 `json:"amount_krw"`
	CustomsDuty     float64 `json:"customs_duty"`
	DutyOutOfPolicy bool    `json:"duty_out_of_policy,omitempty"`
	Total           float64 `json:"total"`
	TotalFormatted  string  `json:"total_formatted"`
}

type FeeResponse struct {
	Price    float64 `json:"price"`
	Platform int     `json:"platform"`
	Category string  `json:"category"`
	LocalFee float64 `json:"local_fee"`
}

type DutyResponse struct {
	AmountKRW       float64 `json:"amount_krw"`
	Category        string  `json:"category"`
	CustomsDuty     float64 `json:"customs_duty"`
	DutyOutOfPolicy bool    `json:"duty_out_of_policy,omitempty"`
}

type CommissionResponse struct {
	Amount       float64 `json:"amount"`
	Fee          float64 `json:"fee"`
	VAT          float64 `json:"vat"`
	FeeFormatted string  `json:"fee_formatted"`
}

type ExchangeRateResponse struct {
	Rate      float64    `json:"rate"`
	Source    string     `json:"source"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
}
