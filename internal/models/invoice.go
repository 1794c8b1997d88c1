package models

import "encoding/json"

const (
	StatusDue       = "due"
	StatusPaid      = "paid"
	StatusAvailable = "available"
)

const (
	DiscountFlat       = "flat"
	DiscountPercentage = "percentage"
)

type Customer struct {
	ID      string `json:"_id,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

func (c *Customer) UnmarshalJSON(data []byte) error {
	*c = Customer{}
	return idOrObject(data, &c.ID, func(b []byte) error {
		type plain Customer
		return json.Unmarshal(b, (*plain)(c))
	})
}

type Bank struct {
	ID          string `json:"_id,omitempty"`
	Name        string `json:"name,omitempty"`
	SortCode    string `json:"sortCode,omitempty"`
	AccountNo   string `json:"accountNo,omitempty"`
	Beneficiary string `json:"beneficiary,omitempty"`
}

func (b *Bank) UnmarshalJSON(data []byte) error {
	*b = Bank{}
	return idOrObject(data, &b.ID, func(raw []byte) error {
		type plain Bank
		return json.Unmarshal(raw, (*plain)(b))
	})
}

// InvoiceLine is one billed student as stored on an invoice or remit.
type InvoiceLine struct {
	CollegeRoll string `json:"collegeRoll"`
	RefID       string `json:"refId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Course      string `json:"course"`
	Amount      Amount `json:"amount"`
}

func (l InvoiceLine) Name() string {
	return Student{FirstName: l.FirstName, LastName: l.LastName}.FullName()
}

type Creator struct {
	ID     string `json:"_id,omitempty"`
	Name   string `json:"name,omitempty"`
	ImgURL string `json:"imgUrl,omitempty"`
}

func (c *Creator) UnmarshalJSON(data []byte) error {
	*c = Creator{}
	return idOrObject(data, &c.ID, func(b []byte) error {
		type plain Creator
		return json.Unmarshal(b, (*plain)(c))
	})
}

// Issuer is the company printed in the "from" block.
type Issuer struct {
	CompanyName       string `json:"companyName,omitempty"`
	CompanyAddress    string `json:"companyAddress,omitempty"`
	CompanyEmail      string `json:"companyEmail,omitempty"`
	CompanyVatNo      string `json:"companyVatNo,omitempty"`
	CompanyCountry    string `json:"companyCountry,omitempty"`
	CompanyCity       string `json:"companyCity,omitempty"`
	CompanyPostalCode string `json:"companyPostalCode,omitempty"`
	CompanyState      string `json:"companyState,omitempty"`
}

// IsZero reports whether no issuer details were stored.
func (i Issuer) IsZero() bool {
	return i == (Issuer{})
}

// Invoice is a customer invoice as returned by GET /invoice/:id.
type Invoice struct {
	ID             string            `json:"_id"`
	Reference      string            `json:"reference"`
	Status         string            `json:"status"`
	Exported       bool              `json:"exported"`
	Customer       Customer          `json:"customer"`
	Bank           Bank              `json:"bank"`
	CourseRelation CourseRelationRef `json:"courseRelationId"`
	CreatedBy      Creator           `json:"createdBy"`
	Date           string            `json:"date,omitempty"`
	Year           string            `json:"year"`
	Session        string            `json:"session"`
	Semester       string            `json:"semester"`
	NoOfStudents   int               `json:"noOfStudents"`
	Students       []InvoiceLine     `json:"students"`
	DiscountType   string            `json:"discountType"`
	DiscountAmount Amount            `json:"discountAmount"`
	DiscountMsg    string            `json:"discountMsg,omitempty"`
	VAT            Amount            `json:"vat"`
	TotalAmount    Amount            `json:"totalAmount"`
	CreatedAt      string            `json:"createdAt,omitempty"`
	Issuer
}

func (inv Invoice) IsPaid() bool { return inv.Status == StatusPaid }

// StudentRefs lists the refIds of the billed students, in order.
func (inv Invoice) StudentRefs() []string {
	refs := make([]string, 0, len(inv.Students))
	for _, s := range inv.Students {
		refs = append(refs, s.RefID)
	}
	return refs
}

// InvoiceFilter is the query accepted by GET /invoice.
type InvoiceFilter struct {
	Page       int    `json:"page,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Status     string `json:"status,omitempty"`
	Customer   string `json:"customer,omitempty"`
	SearchTerm string `json:"searchTerm,omitempty"`
	FromDate   string `json:"fromDate,omitempty"`
	ToDate     string `json:"toDate,omitempty"`
}
