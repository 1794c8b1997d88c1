// Package documents renders invoices and remits to PDF and student lists to
// XLSX.
package documents

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts the date formats the API emits.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate prints "2nd Jan, 2006".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%s %s, %d", ordinal(t.Day()), t.Format("Jan"), t.Year())
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// FormatMoney prints two decimals with the currency symbol after any sign.
func FormatMoney(symbol string, d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + symbol + d.Abs().StringFixed(2)
	}
	return symbol + d.StringFixed(2)
}

// JoinNonEmpty joins the non-blank parts.
func JoinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func fileName(prefix, reference, ext string) string {
	ref := unsafeFileChars.ReplaceAllString(strings.TrimSpace(reference), "_")
	if ref == "" {
		ref = "draft"
	}
	return prefix + "_" + ref + ext
}

// InvoiceFileName is invoice_<reference>.pdf.
func InvoiceFileName(reference string) string { return fileName("invoice", reference, ".pdf") }

func RemitFileName(reference string) string { return fileName("remit", reference, ".pdf") }

// LogoType sniffs an image for gofpdf. Only PNG and JPEG are embedded.
func LogoType(data []byte) (string, bool) {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG", true
	case "image/jpeg":
		return "JPG", true
	}
	return "", false
}
