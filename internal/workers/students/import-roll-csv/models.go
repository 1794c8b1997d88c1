// internal/workers/students/import-roll-csv/models.go
package importrollcsv

import "agency-workers/internal/models"

type Input struct {
	Session  models.SessionContext `json:"session"`
	CSV      string                `json:"csv"`
	FileName string                `json:"fileName,omitempty"`
}

type Output struct {
	UploadID string           `json:"uploadId"`
	Rows     []models.RollRow `json:"rows"`
	Summary  map[string]int   `json:"rowSummary"`
	Total    int              `json:"rowCount"`
}
