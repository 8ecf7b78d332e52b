package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestUnitPrice(t *testing.T) {
	l := Line{
		BasePrice:   d(10),
		SizeDelta:   d(2),
		ExtraDeltas: []decimal.Decimal{d(0.5), d(1.5)},
		Quantity:    1,
	}
	assert.True(t, UnitPrice(l).Equal(d(14)))
}

func TestSubTotal_Empty(t *testing.T) {
	assert.True(t, SubTotal(nil).IsZero())
	assert.True(t, SubTotal([]Line{}).IsZero())
}

func TestOrderTotals(t *testing.T) {
	// Two products, quantities 2 and 1, base prices $10 and $15, one
	// +$2 size on the first: (10+2)*2 + 15 = 39, grand total 44.
	lines := []Line{
		{BasePrice: d(10), SizeDelta: d(2), Quantity: 2},
		{BasePrice: d(15), Quantity: 1},
	}
	sub := SubTotal(lines)
	assert.True(t, sub.Equal(d(39)), "got %s", sub)
	assert.True(t, GrandTotal(sub).Equal(d(44)))
}

func TestGrandTotalIsSubTotalPlusFee(t *testing.T) {
	for _, sub := range []decimal.Decimal{d(0.01), d(12.75), d(199)} {
		assert.True(t, GrandTotal(sub).Equal(sub.Add(DeliveryFee)))
	}
}
