// internal/workers/remittance/find-remittable-students/models.go
package findremittablestudents

type Input struct {
	AgentID            string `json:"agentId"`
	CourseRelationID   string `json:"courseRelationId"`
	Year               string `json:"year,omitempty"`
	SessionName        string `json:"sessionName,omitempty"`
	AgentPaymentStatus string `json:"agentPaymentStatus,omitempty"`
	SearchQuery        string `json:"searchQuery,omitempty"`
}

type Candidate struct {
	StudentID   string `json:"studentId"`
	RefID       string `json:"refId"`
	CollegeRoll string `json:"collegeRoll,omitempty"`
	Name        string `json:"name"`
	Choice      string `json:"choice"`
	Fee         string `json:"fee"`
}

type Output struct {
	AgentID     string      `json:"agentId"`
	Year        string      `json:"year"`
	SessionName string      `json:"sessionName"`
	Candidates  []Candidate `json:"candidates"`
	Skipped     []string    `json:"skippedStudentIds,omitempty"`
	Total       int         `json:"candidateCount"`
}
