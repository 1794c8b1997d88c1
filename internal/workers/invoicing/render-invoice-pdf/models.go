// internal/workers/invoicing/render-invoice-pdf/models.go
package renderinvoicepdf

type Input struct {
	InvoiceID string `json:"invoiceId"`
}

type Output struct {
	FilePath    string `json:"filePath"`
	FileName    string `json:"fileName"`
	SizeBytes   int64  `json:"sizeBytes"`
	TotalAmount string `json:"totalAmount"`
	StoredTotal string `json:"storedTotal"`
	Drift       string `json:"totalDrift"`
}
