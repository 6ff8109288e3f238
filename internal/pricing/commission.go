package pricing

import (
	"errors"
	"math"
)

// ErrNegotiationRequired is returned for amounts above the published
// commission schedule.
var ErrNegotiationRequired = errors.New("commission requires separate negotiation")

type commissionBand struct {
	width float64
	rate  float64
}

var commissionBands = []commissionBand{
	{width: 5000000, rate: 0.1},
	{width: 5000000, rate: 0.07},
	{width: 40000000, rate: 0.05},
}

// CommissionFee returns the platform commission on a KRW amount. A non-nil
// userRate is a percentage that replaces the banded schedule.
func CommissionFee(amount float64, userRate *float64) (float64, error) {
	if isFalsy(amount) {
		return 0, nil
	}

	if userRate != nil {
		return round(amount * (*userRate / 100)), nil
	}

	var fee float64
	rest := amount
	for _, band := range commissionBands {
		if rest <= band.width {
			return round(fee + rest*band.rate), nil
		}
		fee += band.width * band.rate
		rest -= band.width
	}
	return 0, ErrNegotiationRequired
}

// CommissionVAT is the VAT share already included in a commission fee.
func CommissionVAT(fee float64) float64 {
	if math.IsNaN(fee) {
		return 0
	}
	return round(fee / 1.1 * 0.1)
}
