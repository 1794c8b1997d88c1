// internal/workers/invoicing/export-invoice-accounting/models.go
package exportinvoiceaccounting

import "agency-workers/internal/models"

type Input struct {
	Session   models.SessionContext `json:"session"`
	InvoiceID string                `json:"invoiceId"`
}

type Output struct {
	InvoiceID       string `json:"invoiceId"`
	Reference       string `json:"invoiceReference"`
	Exported        bool   `json:"exported"`
	Skipped         bool   `json:"exportSkipped"`
	TransactionDate string `json:"transactionDate,omitempty"`
	Amount          string `json:"exportedAmount,omitempty"`
}
