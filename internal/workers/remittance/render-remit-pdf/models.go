// internal/workers/remittance/render-remit-pdf/models.go
package renderremitpdf

type Input struct {
	RemitID string `json:"remitId"`
}

type Output struct {
	FilePath    string `json:"filePath"`
	FileName    string `json:"fileName"`
	SizeBytes   int64  `json:"sizeBytes"`
	TotalAmount string `json:"totalAmount"`
	StoredTotal string `json:"storedTotal"`
	Drift       string `json:"totalDrift"`
}
