// internal/workers/remittance/mark-remit-paid/models.go
package markremitpaid

import "agency-workers/internal/models"

type Input struct {
	Session models.SessionContext `json:"session"`
	RemitID string                `json:"remitId"`
}

type Output struct {
	RemitID   string `json:"remitId"`
	Reference string `json:"remitReference"`
	Status    string `json:"remitStatus"`
}
