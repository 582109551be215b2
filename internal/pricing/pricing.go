// Package pricing holds the money math: line totals, the per-order
// delivery fee banded by Australian postcode, and cart totals.
// All amounts are fixed-point decimals; float64 never touches a price.
package pricing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Line is one priced cart or order line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
	Weeks     int
}

// LineTotal returns unit * qty * weeks rounded half-up at the cent.
func LineTotal(unit decimal.Decimal, qty, weeks int) decimal.Decimal {
	return unit.
		Mul(decimal.NewFromInt(int64(qty))).
		Mul(decimal.NewFromInt(int64(weeks))).
		Round(2)
}

// deliveryBand maps an inclusive postcode range to a flat fee.
type deliveryBand struct {
	lo, hi int
	fee    decimal.Decimal
}

var deliveryBands = []deliveryBand{
	{1, 999, decimal.NewFromInt(40)},
	{1000, 2999, decimal.NewFromInt(10)},
	{3000, 3999, decimal.NewFromInt(15)},
	{4000, 4999, decimal.NewFromInt(20)},
	{5000, 5999, decimal.NewFromInt(25)},
	{6000, 6999, decimal.NewFromInt(30)},
	{7000, 7999, decimal.NewFromInt(35)},
	{8000, 8999, decimal.NewFromInt(45)},
	{9000, 9999, decimal.NewFromInt(50)},
}

// remoteFee covers anything outside 1-9999 or unparseable input.
var remoteFee = decimal.NewFromInt(150)

// DeliveryCost maps a postcode to its band fee. An empty postcode costs
// nothing (no delivery estimate yet); anything outside the bands gets the
// remote catch-all fee.
func DeliveryCost(postcode string) decimal.Decimal {
	pc := strings.TrimSpace(postcode)
	if pc == "" {
		return decimal.Zero
	}
	n, err := strconv.Atoi(pc)
	if err != nil {
		return remoteFee
	}
	for _, b := range deliveryBands {
		if n >= b.lo && n <= b.hi {
			return b.fee
		}
	}
	return remoteFee
}

// CartTotal sums all line totals and adds the delivery fee once per order.
func CartTotal(lines []Line, postcode string) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineTotal(l.UnitPrice, l.Quantity, l.Weeks))
	}
	return total.Add(DeliveryCost(postcode)).Round(2)
}
