package documents

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"agency-workers/internal/models"
)

// Options carries what the stored document does not: the issuer fallback,
// the logo and the currency symbol.
type Options struct {
	CurrencySymbol string
	Issuer         models.Issuer
	Logo           []byte
	Now            func() time.Time
}

func (o Options) symbol() string {
	if o.CurrencySymbol == "" {
		return "£"
	}
	return o.CurrencySymbol
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) issuer(stored models.Issuer) models.Issuer {
	if stored.IsZero() {
		return o.Issuer
	}
	return stored
}

// dateOf formats createdAt, falling back to today.
func (o Options) dateOf(createdAt string) string {
	if t, ok := ParseTimestamp(createdAt); ok {
		return FormatDate(t)
	}
	return FormatDate(o.now())
}

type party struct {
	title string
	name  string
	lines []string
}

type totalLine struct {
	label string
	value string
}

// sheet is the layout shared by invoices and remits.
type sheet struct {
	from       party
	details    party
	to         party
	bank       models.Bank
	lines      []models.InvoiceLine
	totals     []totalLine
	grandTotal string
	note       string
}

const (
	pageMargin = 15.0
	contentW   = 180.0
	lineH      = 5.0
	rowH       = 11.0
)

var (
	colW     = [4]float64{9, 45, 90, 36}
	brand    = [3]int{0, 161, 133}
	shade    = [3]int{243, 243, 243}
	subtle   = [3]int{110, 110, 110}
	logoMaxW = 40.0
)

func issuerParty(title string, iss models.Issuer) party {
	p := party{title: title, name: iss.CompanyName}
	if iss.CompanyEmail != "" {
		p.lines = append(p.lines, "Email: "+iss.CompanyEmail)
	}
	if iss.CompanyAddress != "" {
		p.lines = append(p.lines, "Address: "+iss.CompanyAddress)
	}
	if loc := JoinNonEmpty(", ", iss.CompanyCity, iss.CompanyState, iss.CompanyPostalCode); loc != "" {
		p.lines = append(p.lines, loc)
	}
	if iss.CompanyCountry != "" {
		p.lines = append(p.lines, iss.CompanyCountry)
	}
	if iss.CompanyVatNo != "" {
		p.lines = append(p.lines, "VAT reg no: "+iss.CompanyVatNo)
	}
	return p
}

func percentLabel(kind string, value decimal.Decimal) string {
	if kind == models.DiscountPercentage {
		return value.String() + "%"
	}
	return "Flat"
}

func (o Options) render(w io.Writer, s sheet) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	_, pageH := pdf.GetPageSize()
	pdf.AddPage()

	o.drawLogo(pdf)

	y := pdf.GetY()
	y = drawColumns(pdf, tr, y, s.from, s.details)
	payment := party{title: "PAYMENT INFORMATION"}
	if s.bank != (models.Bank{}) {
		payment.lines = []string{
			"Sort Code: " + s.bank.SortCode,
			"Account No: " + s.bank.AccountNo,
			"Beneficiary: " + s.bank.Beneficiary,
		}
	}
	y = drawColumns(pdf, tr, y+4, s.to, payment)

	pdf.SetXY(pageMargin, y+6)
	drawTableHeader(pdf)
	for i, line := range s.lines {
		if pdf.GetY()+rowH > pageH-pageMargin {
			pdf.AddPage()
			drawTableHeader(pdf)
		}
		drawRow(pdf, tr, i, line, o.symbol())
	}

	if pdf.GetY()+float64(len(s.totals)+2)*7+10 > pageH-pageMargin {
		pdf.AddPage()
	}
	drawTotals(pdf, tr, s)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("layout pdf: %w", err)
	}
	return pdf.Output(w)
}

func (o Options) drawLogo(pdf *gofpdf.Fpdf) {
	typ, ok := LogoType(o.Logo)
	if !ok {
		pdf.Ln(4)
		return
	}
	opt := gofpdf.ImageOptions{ImageType: typ, ReadDpi: true}
	info := pdf.RegisterImageOptionsReader("logo", opt, bytes.NewReader(o.Logo))
	if pdf.Err() || info == nil {
		// a broken logo should not cost the document
		pdf.ClearError()
		pdf.Ln(4)
		return
	}
	h := logoMaxW * info.Height() / info.Width()
	pdf.ImageOptions("logo", pageMargin, pageMargin, logoMaxW, h, false, opt, 0, "")
	pdf.SetY(pageMargin + h + 6)
}

// drawColumns prints two parties side by side and returns the lower bottom.
func drawColumns(pdf *gofpdf.Fpdf, tr func(string) string, top float64, left, right party) float64 {
	leftEnd := drawParty(pdf, tr, pageMargin, top, 100, left)
	rightEnd := drawParty(pdf, tr, pageMargin+110, top, 70, right)
	if rightEnd > leftEnd {
		return rightEnd
	}
	return leftEnd
}

func drawParty(pdf *gofpdf.Fpdf, tr func(string) string, x, y, width float64, p party) float64 {
	pdf.SetXY(x, y)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(brand[0], brand[1], brand[2])
	pdf.CellFormat(width, 6, tr(p.title), "", 2, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	if p.name != "" {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(width, lineH, tr(p.name), "", 2, "L", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 9)
	for _, l := range p.lines {
		pdf.CellFormat(width, lineH, tr(l), "", 2, "L", false, 0, "")
	}
	return pdf.GetY()
}

func drawTableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetX(pageMargin)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(brand[0], brand[1], brand[2])
	pdf.SetTextColor(255, 255, 255)
	headers := [4]string{"SL", "REFERENCE", "NAME", "AMOUNT"}
	aligns := [4]string{"C", "L", "L", "R"}
	for i, h := range headers {
		ln := 0
		if i == len(headers)-1 {
			ln = 1
		}
		pdf.CellFormat(colW[i], 8, h, "", ln, aligns[i], true, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
}

func drawRow(pdf *gofpdf.Fpdf, tr func(string) string, index int, line models.InvoiceLine, symbol string) {
	x, y := pageMargin, pdf.GetY()
	if index%2 != 0 {
		pdf.SetFillColor(shade[0], shade[1], shade[2])
		pdf.Rect(x, y, contentW, rowH, "F")
	}

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(x, y)
	pdf.CellFormat(colW[0], rowH, fmt.Sprint(index+1), "", 0, "C", false, 0, "")

	twoLine(pdf, tr, x+colW[0], y, colW[1], line.RefID, line.CollegeRoll)
	twoLine(pdf, tr, x+colW[0]+colW[1], y, colW[2], line.Name(), line.Course)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(x+colW[0]+colW[1]+colW[2], y)
	pdf.CellFormat(colW[3], rowH, tr(FormatMoney(symbol, line.Amount.Decimal)), "", 0, "R", false, 0, "")
	pdf.SetXY(x, y+rowH)
}

func twoLine(pdf *gofpdf.Fpdf, tr func(string) string, x, y, width float64, primary, secondary string) {
	pdf.SetXY(x, y+0.5)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(width, lineH, tr(primary), "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(subtle[0], subtle[1], subtle[2])
	pdf.CellFormat(width, lineH, tr(secondary), "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func drawTotals(pdf *gofpdf.Fpdf, tr func(string) string, s sheet) {
	top := pdf.GetY() + 6
	labelX := pageMargin + 100.0

	if s.note != "" {
		pdf.SetXY(pageMargin, top)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(90, 4, tr(s.note), "", "L", false)
	}

	pdf.SetXY(labelX, top)
	pdf.SetFont("Helvetica", "", 9)
	for _, t := range s.totals {
		pdf.SetX(labelX)
		pdf.CellFormat(44, 7, tr(t.label), "", 0, "L", false, 0, "")
		pdf.CellFormat(36, 7, tr(t.value), "", 1, "R", false, 0, "")
	}

	pdf.SetX(labelX)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(brand[0], brand[1], brand[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(44, 9, "TOTAL:", "", 0, "L", true, 0, "")
	pdf.CellFormat(36, 9, tr(s.grandTotal), "", 1, "R", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
}
