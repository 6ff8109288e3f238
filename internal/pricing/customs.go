package pricing

import "pricing-service/internal/entity"

const (
	customsFlatLimit   = 2000000
	customsPolicyLimit = 1000000000
)

// CustomsDuty returns the import duty, VAT excluded, for an amount already
// converted to KRW and including the local fee.
func CustomsDuty(amountKRW float64, category entity.Category) float64 {
	duty, _ := customsDuty(amountKRW, category)
	return duty
}

// CustomsOutOfPolicy reports whether amountKRW falls past the published
// duty schedule, in which case CustomsDuty yields 0.
func CustomsOutOfPolicy(amountKRW float64, category entity.Category) bool {
	_, out := customsDuty(amountKRW, category)
	return out
}

func customsDuty(amountKRW float64, category entity.Category) (float64, bool) {
	if isFalsy(amountKRW) || category == entity.CategoryNone {
		return 0, false
	}

	if category == entity.CategoryClothing || category == entity.CategoryShoes {
		return round(amountKRW * 0.23), false
	}

	if amountKRW <= customsFlatLimit {
		return round(amountKRW * 0.08), false
	}

	if amountKRW < customsPolicyLimit {
		baseCustoms := amountKRW * 0.08
		excess := (baseCustoms + amountKRW - customsFlatLimit) * 0.2
		superExcess := excess * 0.3
		return round((baseCustoms+amountKRW+excess+superExcess)*1.1 - amountKRW), false
	}

	return 0, true
}
