package documents

import (
	"fmt"
	"io"

	"agency-workers/internal/billing"
	"agency-workers/internal/models"
)

// RenderRemit lays out an agent remit with the invoice layout. The
// adjustment replaces discount and VAT, and the total never goes below zero.
func RenderRemit(w io.Writer, r models.RemitInvoice, opts Options) (billing.RemitSummary, error) {
	summary := RemitSummary(r)

	to := party{title: "REMIT TO", name: r.RemitTo.Name}
	if r.RemitTo.Email != "" {
		to.lines = append(to.lines, "Email: "+r.RemitTo.Email)
	}
	if r.RemitTo.Organization != "" {
		to.lines = append(to.lines, r.RemitTo.Organization)
	}
	if r.RemitTo.Location != "" {
		to.lines = append(to.lines, "Address: "+r.RemitTo.Location)
	}

	s := sheet{
		from: issuerParty("REMIT FROM", opts.issuer(r.Issuer)),
		details: party{title: "REMIT DETAILS", lines: []string{
			"Semester: " + r.Semester,
			"Course: " + r.Course,
			"Period: " + JoinNonEmpty(" / ", r.Year, r.Session),
			fmt.Sprintf("No of Students: %d", noOfStudents(r.NoOfStudents, r.Students)),
			"Date: " + opts.dateOf(r.CreatedAt),
			"Reference: " + r.Reference,
		}},
		to:         to,
		bank:       r.Bank,
		lines:      r.Students,
		totals:     remitTotalLines(r, summary, opts.symbol()),
		grandTotal: FormatMoney(opts.symbol(), summary.Total),
	}

	if err := opts.render(w, s); err != nil {
		return summary, err
	}
	return summary, nil
}

// RemitSummary recomputes a remit's totals from its lines. An unset
// adjustment type is a percentage.
func RemitSummary(r models.RemitInvoice) billing.RemitSummary {
	kind := models.DiscountPercentage
	if r.AdjustmentType == models.DiscountFlat {
		kind = models.DiscountFlat
	}
	return billing.RemitTotals(
		billing.LineFees(r.Students),
		billing.Adjustment{Type: kind, Value: r.AdjustmentBalance.Decimal},
	)
}

func remitTotalLines(r models.RemitInvoice, summary billing.RemitSummary, symbol string) []totalLine {
	out := []totalLine{{label: "Subtotal:", value: FormatMoney(symbol, summary.Subtotal)}}
	if r.AdjustmentBalance.IsPositive() {
		kind := r.AdjustmentType
		if kind == "" {
			kind = models.DiscountPercentage
		}
		out = append(out, totalLine{
			label: fmt.Sprintf("Adjustment (%s):", percentLabel(kind, r.AdjustmentBalance.Decimal)),
			value: "-" + FormatMoney(symbol, summary.Deduction),
		})
	}
	return out
}
