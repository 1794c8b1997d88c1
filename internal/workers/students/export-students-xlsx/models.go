// internal/workers/students/export-students-xlsx/models.go
package exportstudentsxlsx

type Input struct {
	SearchQuery       string `json:"searchQuery,omitempty"`
	Status            string `json:"status,omitempty"`
	ApplicationCourse string `json:"applicationCourse,omitempty"`
	PaymentStatus     string `json:"paymentStatus,omitempty"`
	Year              string `json:"year,omitempty"`
	SessionName       string `json:"sessionName,omitempty"`
}

type Output struct {
	FilePath  string `json:"filePath"`
	FileName  string `json:"fileName"`
	SizeBytes int64  `json:"sizeBytes"`
	Students  int    `json:"studentCount"`
	Truncated bool   `json:"truncated"`
}
