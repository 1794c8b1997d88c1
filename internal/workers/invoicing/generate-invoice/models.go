// internal/workers/invoicing/generate-invoice/models.go
package generateinvoice

import "agency-workers/internal/models"

type Input struct {
	Session          models.SessionContext `json:"session"`
	CourseRelationID string                `json:"courseRelationId"`
	Year             string                `json:"year,omitempty"`
	SessionName      string                `json:"sessionName,omitempty"`
	StudentIDs       []string              `json:"studentIds"`
	CustomerID       string                `json:"customerId"`
	BankID           string                `json:"bankId"`
	DiscountType     string                `json:"discountType,omitempty"`
	DiscountAmount   models.Amount         `json:"discountAmount"`
	DiscountMsg      string                `json:"discountMsg,omitempty"`
	VAT              models.Amount         `json:"vat"`
}

type Output struct {
	InvoiceID    string `json:"invoiceId"`
	Reference    string `json:"invoiceReference"`
	NoOfStudents int    `json:"noOfStudents"`
	Subtotal     string `json:"subtotal"`
	Discount     string `json:"discountValue"`
	VATAmount    string `json:"vatAmount"`
	TotalAmount  string `json:"totalAmount"`
}

// Event is the invoice.generated payload.
type Event struct {
	InvoiceID        string `json:"invoiceId"`
	Reference        string `json:"reference"`
	CourseRelationID string `json:"courseRelationId"`
	Year             string `json:"year"`
	Session          string `json:"session"`
	NoOfStudents     int    `json:"noOfStudents"`
	TotalAmount      string `json:"totalAmount"`
	CreatedBy        string `json:"createdBy"`
}
