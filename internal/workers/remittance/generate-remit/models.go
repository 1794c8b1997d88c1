// internal/workers/remittance/generate-remit/models.go
package generateremit

import "agency-workers/internal/models"

type Input struct {
	Session          models.SessionContext `json:"session"`
	AgentID          string                `json:"agentId"`
	CourseRelationID string                `json:"courseRelationId"`
	Year             string                `json:"year,omitempty"`
	SessionName      string                `json:"sessionName,omitempty"`
	StudentIDs       []string              `json:"studentIds"`
	BankID           string                `json:"bankId,omitempty"`
	AdjustmentType   string                `json:"adjustmentType,omitempty"`
	AdjustmentValue  models.Amount         `json:"adjustmentBalance"`
}

type Output struct {
	RemitID      string `json:"remitId"`
	Reference    string `json:"remitReference"`
	NoOfStudents int    `json:"noOfStudents"`
	Subtotal     string `json:"subtotal"`
	Deduction    string `json:"deduction"`
	TotalAmount  string `json:"totalAmount"`
}

// Event is the remit.generated payload.
type Event struct {
	RemitID          string `json:"remitId"`
	Reference        string `json:"reference"`
	AgentID          string `json:"agentId"`
	CourseRelationID string `json:"courseRelationId"`
	Year             string `json:"year"`
	Session          string `json:"session"`
	NoOfStudents     int    `json:"noOfStudents"`
	TotalAmount      string `json:"totalAmount"`
	CreatedBy        string `json:"createdBy"`
}
