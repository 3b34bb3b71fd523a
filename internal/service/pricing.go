package service

import (
	"github.com/shopspring/decimal"

	"registration-service/internal/models"
)

// PriceForParticipant computes a participant's entry price. A caller-supplied
// already-adjusted price wins when present; otherwise the price follows the
// eligibility result, with discounted entries priced at zero.
func PriceForParticipant(distance *models.Distance, adjusted *decimal.Decimal, freeEntry FreeEntry) decimal.Decimal {
	if adjusted != nil && !adjusted.IsNegative() {
		return *adjusted
	}
	if freeEntry.Free {
		return decimal.Zero
	}
	return distance.Price
}

// AddTempLicenseFee adds the event's temporary license fee when the
// participant needs one.
func AddTempLicenseFee(amount decimal.Decimal, needsTempLicense bool, fee decimal.Decimal) decimal.Decimal {
	if !needsTempLicense {
		return amount
	}
	return amount.Add(fee)
}

// MerchandiseLineTotal prices one merchandise line.
func MerchandiseLineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// OrderTotal sums participant amounts, merchandise totals and license fees
// into the order's total. Decimal arithmetic keeps repeated additions free of
// rounding drift.
func OrderTotal(participantAmounts, merchandiseTotals, licenseFees []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range participantAmounts {
		total = total.Add(amount)
	}
	for _, amount := range merchandiseTotals {
		total = total.Add(amount)
	}
	for _, fee := range licenseFees {
		total = total.Add(fee)
	}
	return total
}
