package agencyapi

import (
	"context"
	"net/http"
	"net/url"

	"agency-workers/internal/models"
)

// rollRowUpload is a row as sent to POST /csv. studentId is omitted for
// unmatched rows.
type rollRowUpload struct {
	TempID    string `json:"tempId"`
	RegNo     string `json:"regNo"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	StudentID string `json:"studentId,omitempty"`
}

func (c *Client) CreateRollUpload(ctx context.Context, rows []models.RollRow) (*models.RollUpload, error) {
	data := make([]rollRowUpload, 0, len(rows))
	for _, r := range rows {
		data = append(data, rollRowUpload{
			TempID:    r.TempID,
			RegNo:     r.RegNo,
			Name:      r.Name,
			Phone:     r.Phone,
			Email:     r.Email,
			StudentID: r.StudentID.ID,
		})
	}
	body := map[string]interface{}{"studentData": data}
	return sendItem[models.RollUpload](ctx, c, http.MethodPost, "/csv", body, rollUploadSchema)
}

// GetActiveRollUpload returns the pending upload, or nil when there is none.
func (c *Client) GetActiveRollUpload(ctx context.Context) (*models.RollUpload, error) {
	items, _, err := getList[models.RollUpload](ctx, c, "/csv", nil, rollUploadListSchema)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// RemoveRollRow drops one row from the upload.
func (c *Client) RemoveRollRow(ctx context.Context, uploadID, tempID string) error {
	return c.send(ctx, http.MethodPatch, "/csv/"+url.PathEscape(uploadID), map[string]string{"tempId": tempID})
}

func (c *Client) DeleteRollUpload(ctx context.Context, uploadID string) error {
	return c.send(ctx, http.MethodDelete, "/csv/"+url.PathEscape(uploadID), nil)
}
