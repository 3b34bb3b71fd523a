package service

import (
	"testing"

	"registration-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPriceForParticipant(t *testing.T) {
	distance := &models.Distance{Price: decimal.RequireFromString("350.00")}

	// No adjustment, no discount: distance price.
	price := PriceForParticipant(distance, nil, FreeEntry{})
	assert.True(t, price.Equal(decimal.RequireFromString("350.00")))

	// A client-supplied adjusted price is used as-is, even over a discount.
	adjusted := decimal.RequireFromString("175.00")
	price = PriceForParticipant(distance, &adjusted, FreeEntry{Free: true})
	assert.True(t, price.Equal(adjusted))

	// Zero is a legitimate adjusted price.
	zero := decimal.Zero
	price = PriceForParticipant(distance, &zero, FreeEntry{})
	assert.True(t, price.IsZero())

	// A negative adjustment is ignored.
	negative := decimal.RequireFromString("-10.00")
	price = PriceForParticipant(distance, &negative, FreeEntry{})
	assert.True(t, price.Equal(distance.Price))

	// Discounted entries are priced at zero.
	price = PriceForParticipant(distance, nil, FreeEntry{Free: true, Reason: "senior"})
	assert.True(t, price.IsZero())
}

func TestAddTempLicenseFee(t *testing.T) {
	amount := decimal.RequireFromString("350.00")
	fee := decimal.RequireFromString("50.00")

	assert.True(t, AddTempLicenseFee(amount, false, fee).Equal(amount))
	assert.True(t, AddTempLicenseFee(amount, true, fee).Equal(decimal.RequireFromString("400.00")))

	// A free entry still pays the license fee.
	assert.True(t, AddTempLicenseFee(decimal.Zero, true, fee).Equal(fee))
}

func TestMerchandiseLineTotal(t *testing.T) {
	total := MerchandiseLineTotal(decimal.RequireFromString("199.99"), 3)
	assert.True(t, total.Equal(decimal.RequireFromString("599.97")))
}

func TestOrderTotalNoDrift(t *testing.T) {
	// Repeated addition of 0.10 stays exact.
	amounts := make([]decimal.Decimal, 100)
	tenCents := decimal.RequireFromString("0.10")
	for i := range amounts {
		amounts[i] = tenCents
	}

	total := OrderTotal(amounts, nil, nil)
	assert.True(t, total.Equal(decimal.RequireFromString("10.00")))
}

func TestOrderTotalSumsAllComponents(t *testing.T) {
	participants := []decimal.Decimal{
		decimal.RequireFromString("350.00"),
		decimal.Zero,
	}
	merchandise := []decimal.Decimal{decimal.RequireFromString("599.97")}
	fees := []decimal.Decimal{decimal.RequireFromString("50.00")}

	total := OrderTotal(participants, merchandise, fees)
	assert.True(t, total.Equal(decimal.RequireFromString("999.97")))

	assert.True(t, OrderTotal(nil, nil, nil).IsZero())
}
