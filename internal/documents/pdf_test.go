package documents

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-workers/internal/models"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{0, 161, 133, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testLines(n int, amount int64) []models.InvoiceLine {
	lines := make([]models.InvoiceLine, n)
	for i := range lines {
		lines[i] = models.InvoiceLine{
			RefID:       fmt.Sprintf("STU-%03d", i),
			CollegeRoll: fmt.Sprintf("R%03d", i),
			FirstName:   "Student",
			LastName:    fmt.Sprint(i),
			Course:      "BSc Business Management",
			Amount:      models.AmountFromInt(amount),
		}
	}
	return lines
}

func testOptions() Options {
	return Options{
		CurrencySymbol: "£",
		Issuer:         models.Issuer{CompanyName: "Fallback Ltd"},
		Now:            func() time.Time { return time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC) },
	}
}

func testInvoice() models.Invoice {
	return models.Invoice{
		ID:             "inv1",
		Reference:      "INV-0001",
		Customer:       models.Customer{Name: "Kingston College", Email: "finance@kc.ac.uk", Address: "1 High St"},
		Bank:           models.Bank{SortCode: "12-34-56", AccountNo: "12345678", Beneficiary: "Agency Ltd"},
		Semester:       "January 2025",
		Students:       testLines(4, 100),
		DiscountType:   models.DiscountFlat,
		DiscountAmount: models.AmountFromInt(50),
		DiscountMsg:    "Loyalty",
		VAT:            models.AmountFromInt(10),
		TotalAmount:    models.AmountFromInt(999),
		CreatedAt:      "2025-03-21T10:00:00.000Z",
		Issuer: models.Issuer{
			CompanyName: "Agency Ltd", CompanyEmail: "hello@agency.test",
			CompanyCity: "London", CompanyPostalCode: "E1 6AN", CompanyCountry: "UK", CompanyVatNo: "GB123",
		},
	}
}

func TestRenderInvoice_RecomputesTotals(t *testing.T) {
	var buf bytes.Buffer
	summary, err := RenderInvoice(&buf, testInvoice(), testOptions())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.True(t, summary.Subtotal.Equal(decimal.NewFromInt(400)))
	assert.True(t, summary.DiscountValue.Equal(decimal.NewFromInt(50)))
	assert.True(t, summary.VATAmount.Equal(decimal.NewFromInt(40)))
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(390)), "stored 999 is ignored")
}

func TestRenderInvoice_ManyLinesAndLogo(t *testing.T) {
	inv := testInvoice()
	inv.Students = testLines(80, 25)
	inv.Issuer = models.Issuer{}

	opts := testOptions()
	opts.Logo = testPNG(t)

	var buf bytes.Buffer
	summary, err := RenderInvoice(&buf, inv, opts)
	require.NoError(t, err)
	assert.True(t, summary.Subtotal.Equal(decimal.NewFromInt(2000)))
	assert.Greater(t, bytes.Count(buf.Bytes(), []byte("/Type /Page\n")), 1, "long tables continue on a new page")
}

func TestRenderInvoice_BrokenLogoIsSkipped(t *testing.T) {
	opts := testOptions()
	opts.Logo = append([]byte("\x89PNG\r\n\x1a\n"), []byte("not really a png")...)

	var buf bytes.Buffer
	_, err := RenderInvoice(&buf, testInvoice(), opts)
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}

func TestInvoiceTotalLines(t *testing.T) {
	inv := testInvoice()
	inv.DiscountType = models.DiscountPercentage
	inv.DiscountAmount = models.AmountFromInt(10)
	lines := invoiceTotalLines(inv, InvoiceSummary(inv), "£")

	require.Len(t, lines, 3)
	assert.Equal(t, totalLine{"Subtotal:", "£400.00"}, lines[0])
	assert.Equal(t, totalLine{"Discount (10%):", "-£40.00"}, lines[1])
	assert.Equal(t, totalLine{"VAT (10%):", "£40.00"}, lines[2])

	inv.DiscountAmount = models.Amount{}
	inv.VAT = models.Amount{}
	assert.Len(t, invoiceTotalLines(inv, InvoiceSummary(inv), "£"), 1)
}

func TestIssuerParty(t *testing.T) {
	p := issuerParty("INVOICE FROM", testInvoice().Issuer)
	assert.Equal(t, "Agency Ltd", p.name)
	assert.Equal(t, []string{
		"Email: hello@agency.test",
		"London, E1 6AN",
		"UK",
		"VAT reg no: GB123",
	}, p.lines)

	opts := testOptions()
	assert.Equal(t, "Fallback Ltd", opts.issuer(models.Issuer{}).CompanyName)
	assert.Equal(t, "2nd Jan, 2025", opts.dateOf("garbage"))
	assert.Equal(t, "21st Mar, 2025", opts.dateOf("2025-03-21T10:00:00.000Z"))
}

func TestRenderRemit(t *testing.T) {
	r := models.RemitInvoice{
		Reference:         "RM-7",
		RemitTo:           models.Agent{ID: "a1", Name: "Global Ed", Email: "ops@global.test"},
		Students:          testLines(2, 100),
		AdjustmentBalance: models.AmountFromInt(150),
		TotalAmount:       models.AmountFromInt(50),
	}

	var buf bytes.Buffer
	summary, err := RenderRemit(&buf, r, testOptions())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.True(t, summary.Deduction.Equal(decimal.NewFromInt(300)), "empty type is a percentage")
	assert.True(t, summary.Total.IsZero())

	lines := remitTotalLines(r, summary, "£")
	require.Len(t, lines, 2)
	assert.Equal(t, "Adjustment (150%):", lines[1].label)

	r.AdjustmentType = models.DiscountFlat
	r.AdjustmentBalance = models.AmountFromInt(20)
	summary = RemitSummary(r)
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(180)))
	assert.Equal(t, "Adjustment (Flat):", remitTotalLines(r, summary, "£")[1].label)
}
