package documents

import (
	"fmt"
	"io"

	"agency-workers/internal/billing"
	"agency-workers/internal/models"
)

// RenderInvoice lays out a customer invoice. Totals are recomputed from the
// line amounts; the stored totalAmount is not consulted. The recomputed
// summary is returned so callers can reconcile it.
func RenderInvoice(w io.Writer, inv models.Invoice, opts Options) (billing.InvoiceSummary, error) {
	summary := InvoiceSummary(inv)
	s := sheet{
		from: issuerParty("INVOICE FROM", opts.issuer(inv.Issuer)),
		details: party{title: "INVOICE DETAILS", lines: []string{
			"Semester: " + inv.Semester,
			fmt.Sprintf("No of Students: %d", noOfStudents(inv.NoOfStudents, inv.Students)),
			"Date: " + opts.dateOf(inv.CreatedAt),
			"Reference: " + inv.Reference,
		}},
		to: party{
			title: "INVOICE TO",
			name:  inv.Customer.Name,
			lines: []string{"Email: " + inv.Customer.Email, "Address: " + inv.Customer.Address},
		},
		bank:       inv.Bank,
		lines:      inv.Students,
		totals:     invoiceTotalLines(inv, summary, opts.symbol()),
		grandTotal: FormatMoney(opts.symbol(), summary.Total),
	}
	if inv.DiscountMsg != "" {
		s.note = "Discount Note: " + inv.DiscountMsg
	}

	if err := opts.render(w, s); err != nil {
		return summary, err
	}
	return summary, nil
}

// InvoiceSummary recomputes an invoice's totals from its lines. Unknown
// discount types are treated as flat.
func InvoiceSummary(inv models.Invoice) billing.InvoiceSummary {
	kind := models.DiscountFlat
	if inv.DiscountType == models.DiscountPercentage {
		kind = models.DiscountPercentage
	}
	return billing.InvoiceTotals(
		billing.LineFees(inv.Students),
		billing.Discount{Type: kind, Value: inv.DiscountAmount.Decimal},
		inv.VAT.Decimal,
	)
}

func invoiceTotalLines(inv models.Invoice, summary billing.InvoiceSummary, symbol string) []totalLine {
	out := []totalLine{{label: "Subtotal:", value: FormatMoney(symbol, summary.Subtotal)}}
	if inv.DiscountAmount.IsPositive() {
		out = append(out, totalLine{
			label: fmt.Sprintf("Discount (%s):", percentLabel(inv.DiscountType, inv.DiscountAmount.Decimal)),
			value: "-" + FormatMoney(symbol, summary.DiscountValue),
		})
	}
	if inv.VAT.IsPositive() {
		out = append(out, totalLine{
			label: fmt.Sprintf("VAT (%s%%):", inv.VAT.String()),
			value: FormatMoney(symbol, summary.VATAmount),
		})
	}
	return out
}

func noOfStudents(stored int, lines []models.InvoiceLine) int {
	if stored > 0 {
		return stored
	}
	return len(lines)
}
