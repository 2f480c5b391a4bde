// Package finance holds the pure monetary arithmetic: line totals, Swedish
// VAT and the ROT deduction. No I/O, no persistence.
package finance

import "github.com/shopspring/decimal"

// StandardVATRate is the Swedish standard VAT rate (25%). It is not
// configurable per invoice.
var StandardVATRate = decimal.NewFromFloat(0.25)

// Line is the quantity/price pair a total is derived from.
type Line struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// LineTotal returns quantity * unitPrice.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice)
}

// Subtotal sums the line totals.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(LineTotal(l.Quantity, l.UnitPrice))
	}
	return sum
}

// VAT returns the VAT portion for a subtotal at the standard rate.
func VAT(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(StandardVATRate)
}

// Total returns subtotal + VAT for the given lines.
func Total(lines []Line) decimal.Decimal {
	sub := Subtotal(lines)
	return sub.Add(VAT(sub))
}

// PayableAfterROT returns the customer-payable figure after the declared ROT
// deduction. The bound 0 <= rotAmount <= totalAmount is the caller's
// responsibility; the primitive itself does not reject out-of-range input.
func PayableAfterROT(totalAmount, rotAmount decimal.Decimal) decimal.Decimal {
	return totalAmount.Sub(rotAmount)
}
