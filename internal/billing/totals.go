package billing

import (
	"strings"

	"github.com/shopspring/decimal"

	"agency-workers/internal/common/errors"
	"agency-workers/internal/models"
)

// Discount is the customer-invoice reduction.
type Discount struct {
	Type  string
	Value decimal.Decimal
}

// Adjustment is the remit reduction.
type Adjustment struct {
	Type  string
	Value decimal.Decimal
}

type InvoiceSummary struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountValue decimal.Decimal `json:"discountValue"`
	VATAmount     decimal.Decimal `json:"vatAmount"`
	Total         decimal.Decimal `json:"total"`
}

type RemitSummary struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Deduction decimal.Decimal `json:"deduction"`
	Total     decimal.Decimal `json:"total"`
}

// NormalizeDiscountType maps "" to flat and rejects anything unknown.
func NormalizeDiscountType(t string) (string, error) {
	return normalizeType("discount", t, models.DiscountFlat)
}

// NormalizeAdjustmentType maps "" to percentage and rejects anything unknown.
func NormalizeAdjustmentType(t string) (string, error) {
	return normalizeType("adjustment", t, models.DiscountPercentage)
}

func normalizeType(kind, t, fallback string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "":
		return fallback, nil
	case models.DiscountFlat:
		return models.DiscountFlat, nil
	case models.DiscountPercentage:
		return models.DiscountPercentage, nil
	}
	return "", errors.NewInvalidAdjustmentTypeError(kind, t)
}

// Sum adds fees.
func Sum(fees []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, f := range fees {
		total = total.Add(f)
	}
	return total
}

func reduction(kind string, value, subtotal decimal.Decimal) decimal.Decimal {
	if kind == models.DiscountPercentage {
		return subtotal.Mul(value).Div(hundred)
	}
	return value
}

// InvoiceTotals applies the discount and VAT to the fee subtotal. VAT is
// charged on the subtotal before the discount, and the total is not clamped.
func InvoiceTotals(fees []decimal.Decimal, discount Discount, vatPercent decimal.Decimal) InvoiceSummary {
	subtotal := Sum(fees)
	kind := discount.Type
	if kind == "" {
		kind = models.DiscountFlat
	}
	discountValue := reduction(kind, discount.Value, subtotal)
	vatAmount := subtotal.Mul(vatPercent).Div(hundred)

	return InvoiceSummary{
		Subtotal:      subtotal,
		DiscountValue: discountValue,
		VATAmount:     vatAmount,
		Total:         subtotal.Sub(discountValue).Add(vatAmount),
	}
}

// RemitTotals applies the adjustment to the fee subtotal, clamping at zero.
func RemitTotals(fees []decimal.Decimal, adjustment Adjustment) RemitSummary {
	subtotal := Sum(fees)
	kind := adjustment.Type
	if kind == "" {
		kind = models.DiscountPercentage
	}
	deduction := reduction(kind, adjustment.Value, subtotal)

	total := subtotal.Sub(deduction)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return RemitSummary{Subtotal: subtotal, Deduction: deduction, Total: total}
}

// LineFees extracts the stored amounts of invoice lines.
func LineFees(lines []models.InvoiceLine) []decimal.Decimal {
	fees := make([]decimal.Decimal, 0, len(lines))
	for _, l := range lines {
		fees = append(fees, l.Amount.Decimal)
	}
	return fees
}

// Money rounds to pence for storage and comparison.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
