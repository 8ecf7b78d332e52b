// Package pricing computes cart totals. All amounts are decimal dollars;
// conversion to integer cents happens only at the payment gateway
// boundary.
package pricing

import "github.com/shopspring/decimal"

// DeliveryFee is flat per order.
var DeliveryFee = decimal.NewFromInt(5)

// Line is one cart entry after its product, size and extras have been
// resolved against the database.
type Line struct {
	BasePrice   decimal.Decimal
	SizeDelta   decimal.Decimal
	ExtraDeltas []decimal.Decimal
	Quantity    int
}

// UnitPrice is base price plus the size delta plus every extra delta.
func UnitPrice(l Line) decimal.Decimal {
	price := l.BasePrice.Add(l.SizeDelta)
	for _, d := range l.ExtraDeltas {
		price = price.Add(d)
	}
	return price
}

func LineTotal(l Line) decimal.Decimal {
	return UnitPrice(l).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func SubTotal(lines []Line) decimal.Decimal {
	var total decimal.Decimal
	for _, l := range lines {
		total = total.Add(LineTotal(l))
	}
	return total
}

func GrandTotal(subTotal decimal.Decimal) decimal.Decimal {
	return subTotal.Add(DeliveryFee)
}
