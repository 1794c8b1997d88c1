// internal/workers/students/review-roll-update/models.go
package reviewrollupdate

import "agency-workers/internal/models"

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

type Input struct {
	Session  models.SessionContext `json:"session"`
	UploadID string                `json:"uploadId"`
	Action   string                `json:"action"`
	TempIDs  []string              `json:"tempIds"`
}

type Output struct {
	UploadID      string   `json:"uploadId"`
	Approved      []string `json:"approvedStudentIds,omitempty"`
	Removed       []string `json:"removedTempIds"`
	Remaining     int      `json:"remainingRows"`
	UploadDeleted bool     `json:"uploadDeleted"`
}
