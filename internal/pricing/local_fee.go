package pricing

import "pricing-service/internal/entity"

type feeTier struct {
	below float64
	fee   float64
}

var ecoAucTiers = []feeTier{
	{below: 10000, fee: 1800},
	{below: 50000, fee: 2800},
	{below: 100000, fee: 4800},
	{below: 1000000, fee: 8800},
}

const ecoAucTopFee = 10800

// LocalFee returns the source marketplace fee for price, in the source
// currency. A zero or NaN price is always free.
func LocalFee(price float64, platform entity.Platform, category entity.Category) float64 {
	if isFalsy(price) {
		return 0
	}

	switch platform {
	case entity.PlatformEcoAuc:
		for _, tier := range ecoAucTiers {
			if price < tier.below {
				return tier.fee
			}
		}
		return ecoAucTopFee
	case entity.PlatformBrandAuc:
		if price < 100000 {
			return round(price*0.11 + 1990)
		}
		return round(price*0.077 + 1990)
	case entity.PlatformStarBuyers:
		baseFee := price * 0.05
		vat := baseFee * 0.1
		insurance := (baseFee + vat) * 0.005
		return round((baseFee + vat + insurance + starBuyersCategoryFee(price, category)) * 1.1)
	default:
		return 0
	}
}

func starBuyersCategoryFee(price float64, category entity.Category) float64 {
	switch category {
	case entity.CategoryBag:
		return 2900
	case entity.CategoryWatch:
		return 2700
	case entity.CategoryJewelry:
		return 500 + price*0.05
	case entity.CategoryAccessory, entity.CategoryClothing:
		return 2000 + price*0.05
	default:
		return 0
	}
}
