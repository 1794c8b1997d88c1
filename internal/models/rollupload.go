package models

import (
	"bytes"
	"encoding/json"
)

// Row statuses for a roll CSV upload.
const (
	RowPending    = "pending"
	RowFound      = "found"
	RowError      = "error"
	RowProcessing = "processing"
	RowCompleted  = "completed"
	RowDuplicate  = "duplicate"
)

const (
	DuplicatePhone = "phone"
	DuplicateEmail = "email"
	DuplicateBoth  = "both"
)

// RollRow is one CSV line stored on the upload.
type RollRow struct {
	ID            string     `json:"_id,omitempty"`
	TempID        string     `json:"tempId"`
	RegNo         string     `json:"regNo"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone"`
	Email         string     `json:"email,omitempty"`
	StudentID     StudentRef `json:"studentId"`
	Status        string     `json:"status,omitempty"`
	Message       string     `json:"message,omitempty"`
	DuplicateType string     `json:"duplicateType,omitempty"`
}

// Eligible reports whether the row may be approved.
func (r RollRow) Eligible() bool {
	return r.Status == RowFound && r.StudentID.ID != ""
}

// StudentRef is the matched student of a row. It is sent as a bare id and
// comes back populated.
type StudentRef struct {
	ID      string
	Student *Student
}

func (r StudentRef) IsZero() bool { return r.ID == "" }

func (r StudentRef) MarshalJSON() ([]byte, error) {
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

func (r *StudentRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = StudentRef{}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	var st Student
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	r.ID = st.ID
	r.Student = &st
	return nil
}

// RollUpload is the single active upload held under /csv.
type RollUpload struct {
	ID          string    `json:"_id"`
	StudentData []RollRow `json:"studentData"`
	CreatedAt   string    `json:"createdAt,omitempty"`
}

// Row finds a row by tempId.
func (u RollUpload) Row(tempID string) (RollRow, int, bool) {
	for i, r := range u.StudentData {
		if r.TempID == tempID {
			return r, i, true
		}
	}
	return RollRow{}, -1, false
}
