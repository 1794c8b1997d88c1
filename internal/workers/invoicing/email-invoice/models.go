// internal/workers/invoicing/email-invoice/models.go
package emailinvoice

type Input struct {
	InvoiceID string   `json:"invoiceId"`
	To        []string `json:"to,omitempty"`
	Message   string   `json:"message,omitempty"`
}

type Output struct {
	MessageID  string   `json:"messageId"`
	Recipients []string `json:"recipients"`
	FileName   string   `json:"fileName"`
}
