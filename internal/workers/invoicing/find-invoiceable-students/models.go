// internal/workers/invoicing/find-invoiceable-students/models.go
package findinvoiceablestudents

type Input struct {
	CourseRelationID string `json:"courseRelationId"`
	Year             string `json:"year,omitempty"`
	SessionName      string `json:"sessionName,omitempty"`
	PaymentStatus    string `json:"paymentStatus,omitempty"`
	SearchQuery      string `json:"searchQuery,omitempty"`
}

// Candidate is a student that can be added to an invoice, priced.
type Candidate struct {
	StudentID   string `json:"studentId"`
	RefID       string `json:"refId"`
	CollegeRoll string `json:"collegeRoll,omitempty"`
	Name        string `json:"name"`
	Choice      string `json:"choice"`
	Fee         string `json:"fee"`
}

type Output struct {
	Year        string      `json:"year"`
	SessionName string      `json:"sessionName"`
	Candidates  []Candidate `json:"candidates"`
	Skipped     []string    `json:"skippedStudentIds,omitempty"`
	Total       int         `json:"candidateCount"`
}
