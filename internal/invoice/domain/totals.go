package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidUnitPrice = errors.New("invalid_unit_price")
	ErrInvalidDiscount  = errors.New("invalid_discount")
	ErrInvalidTaxRate   = errors.New("invalid_tax_rate")
)

var oneHundred = decimal.NewFromInt(100)

// Totals is the result of a full invoice recalculation.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// CalculateTotals recomputes every item total from quantity and unit price,
// sums the subtotal, applies the discount before tax, and taxes the
// discounted amount. Monetary results are rounded half-up to two decimals at
// the point of total computation, not at intermediate steps. The function is
// pure apart from rewriting each item's Total.
func CalculateTotals(items []InvoiceItem, discountPercent, taxRate decimal.Decimal) (Totals, error) {
	if discountPercent.IsNegative() || discountPercent.GreaterThan(oneHundred) {
		return Totals{}, ErrInvalidDiscount
	}
	if taxRate.IsNegative() {
		return Totals{}, ErrInvalidTaxRate
	}

	subtotal := decimal.Zero
	for idx := range items {
		item := &items[idx]
		if !item.Quantity.IsPositive() {
			return Totals{}, ErrInvalidQuantity
		}
		if item.UnitPrice.IsNegative() {
			return Totals{}, ErrInvalidUnitPrice
		}
		item.Total = item.Quantity.Mul(item.UnitPrice)
		subtotal = subtotal.Add(item.Total)
	}

	discountAmount := subtotal.Mul(discountPercent).Div(oneHundred)
	taxable := subtotal.Sub(discountAmount)
	taxAmount := taxable.Mul(taxRate).Div(oneHundred)
	total := taxable.Add(taxAmount)

	return Totals{
		Subtotal:       roundMoney(subtotal),
		DiscountAmount: roundMoney(discountAmount),
		TaxAmount:      roundMoney(taxAmount),
		Total:          roundMoney(total),
	}, nil
}

// ApplyTotals writes a recalculation result back onto the invoice.
func (i *Invoice) ApplyTotals(t Totals) {
	i.Subtotal = t.Subtotal
	i.DiscountAmount = t.DiscountAmount
	i.TaxAmount = t.TaxAmount
	i.Total = t.Total
}

// roundMoney rounds half-up to two decimal places. decimal.Round rounds half
// away from zero, which matches half-up for the non-negative amounts here.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
