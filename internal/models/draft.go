package models

// InvoiceDraft is the body of POST /invoice.
type InvoiceDraft struct {
	Status           string        `json:"status"`
	Customer         string        `json:"customer"`
	Bank             string        `json:"bank"`
	Students         []InvoiceLine `json:"students"`
	NoOfStudents     int           `json:"noOfStudents"`
	CourseRelationID string        `json:"courseRelationId"`
	TotalAmount      Amount        `json:"totalAmount"`
	CreatedBy        string        `json:"createdBy"`
	Year             string        `json:"year"`
	Session          string        `json:"session"`
	Semester         string        `json:"semester"`
	Institute        string        `json:"institute"`
	DiscountType     string        `json:"discountType"`
	DiscountAmount   Amount        `json:"discountAmount"`
	DiscountMsg      string        `json:"discountMsg,omitempty"`
	VAT              Amount        `json:"vat"`
}

// RemitDraft is the body of POST /remit-invoice.
type RemitDraft struct {
	RemitTo           string        `json:"remitTo"`
	NoOfStudents      int           `json:"noOfStudents"`
	CourseRelationID  string        `json:"courseRelationId"`
	TotalAmount       Amount        `json:"totalAmount"`
	AdjustmentType    string        `json:"adjustmentType"`
	AdjustmentBalance Amount        `json:"adjustmentBalance"`
	CreatedBy         string        `json:"createdBy"`
	Year              string        `json:"year"`
	Session           string        `json:"session"`
	Semester          string        `json:"semester"`
	Course            string        `json:"course"`
	Students          []InvoiceLine `json:"students"`
	Status            string        `json:"status"`
	Bank              string        `json:"bank,omitempty"`
}
