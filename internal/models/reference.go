package models

// Reference data served with ?limit=all&status=1.
type Institute struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Status int    `json:"status,omitempty"`
}

type Term struct {
	ID     string `json:"_id"`
	Term   string `json:"term"`
	Status int    `json:"status,omitempty"`
}

type Course struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Status int    `json:"status,omitempty"`
}

// AcademicYear is served by /academic-years, which uses "id" rather than "_id".
type AcademicYear struct {
	ID           string `json:"id"`
	AcademicYear string `json:"academic_year"`
	Status       int    `json:"status,omitempty"`
}
