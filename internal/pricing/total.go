package pricing

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"pricing-service/internal/entity"
)

// Breakdown carries every intermediate value of a landed price calculation.
type Breakdown struct {
	Price           float64
	Platform        entity.Platform
	Category        entity.Category
	ExchangeRate    float64
	LocalFee        float64
	AmountKRW       float64
	CustomsDuty     float64
	DutyOutOfPolicy bool
	Total           float64
}

// Quote converts price plus the marketplace fee to KRW at rate and adds
// customs duty.
func Quote(price float64, platform entity.Platform, category entity.Category, rate float64) Breakdown {
	if math.IsNaN(price) {
		price = 0
	}

	localFee := LocalFee(price, platform, category)
	amountKRW := (price + localFee) * rate
	duty, outOfPolicy := customsDuty(amountKRW, category)

	return Breakdown{
		Price:           price,
		Platform:        platform,
		Category:        category,
		ExchangeRate:    rate,
		LocalFee:        localFee,
		AmountKRW:       amountKRW,
		CustomsDuty:     duty,
		DutyOutOfPolicy: outOfPolicy,
		Total:           round(amountKRW + duty),
	}
}

func TotalPrice(price float64, platform entity.Platform, category entity.Category, rate float64) float64 {
	return Quote(price, platform, category, rate).Total
}

var leadingFloat = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// ParsePrice reads the leading decimal number of raw and ignores whatever
// follows it. Anything unparsable, including NaN, reads as 0. Literals past
// the float64 range read as ±Inf.
func ParsePrice(raw string) float64 {
	raw = strings.TrimSpace(raw)
	m := leadingFloat.FindString(raw)
	if m == "" {
		if strings.HasPrefix(raw, "Infinity") || strings.HasPrefix(raw, "+Infinity") {
			return math.Inf(1)
		}
		if strings.HasPrefix(raw, "-Infinity") {
			return math.Inf(-1)
		}
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	if math.IsNaN(v) {
		return 0
	}
	return v
}
