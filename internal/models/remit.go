package models

import (
	"bytes"
	"encoding/json"
)

// Agent is the populated remitTo party of a remit invoice.
type Agent struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Location     string `json:"location,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// UnmarshalJSON accepts the bare agent id as well as the populated user.
func (a *Agent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Agent{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		*a = Agent{}
		return json.Unmarshal(data, &a.ID)
	}
	type plain Agent
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Agent(p)
	return nil
}

// RemitInvoice is an agent payout report.
type RemitInvoice struct {
	ID                string            `json:"_id"`
	Reference         string            `json:"reference"`
	Status            string            `json:"status"`
	RemitTo           Agent             `json:"remitTo"`
	Bank              Bank              `json:"bank"`
	CourseRelation    CourseRelationRef `json:"courseRelationId"`
	CreatedBy         Creator           `json:"createdBy"`
	Year              string            `json:"year"`
	Session           string            `json:"session"`
	Semester          string            `json:"semester"`
	Course            string            `json:"course"`
	NoOfStudents      int               `json:"noOfStudents"`
	Students          []InvoiceLine     `json:"students"`
	AdjustmentType    string            `json:"adjustmentType"`
	AdjustmentBalance Amount            `json:"adjustmentBalance"`
	TotalAmount       Amount            `json:"totalAmount"`
	CreatedAt         string            `json:"createdAt,omitempty"`
	Issuer
}

func (r RemitInvoice) IsPaid() bool { return r.Status == StatusPaid }
