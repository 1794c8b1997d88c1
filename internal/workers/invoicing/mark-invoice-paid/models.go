// internal/workers/invoicing/mark-invoice-paid/models.go
package markinvoicepaid

import "agency-workers/internal/models"

type Input struct {
	Session   models.SessionContext `json:"session"`
	InvoiceID string                `json:"invoiceId"`
}

type Output struct {
	InvoiceID string `json:"invoiceId"`
	Reference string `json:"invoiceReference"`
	Status    string `json:"invoiceStatus"`
}
