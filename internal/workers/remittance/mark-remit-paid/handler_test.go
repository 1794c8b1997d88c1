package markremitpaid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-workers/internal/common/errors"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/models"
)

type fakeAPI struct {
	remit   models.RemitInvoice
	updates []map[string]interface{}
}

func (f *fakeAPI) GetRemit(_ context.Context, id string) (*models.RemitInvoice, error) {
	if f.remit.ID != id {
		return nil, errors.NewResourceNotFoundError("/remit-invoice/"+id, "")
	}
	r := f.remit
	return &r, nil
}

func (f *fakeAPI) UpdateRemit(_ context.Context, _ string, fields map[string]interface{}) error {
	f.updates = append(f.updates, fields)
	return nil
}

func TestExecute(t *testing.T) {
	api := &fakeAPI{remit: models.RemitInvoice{ID: "rem1", Reference: "REM-1", Status: models.StatusDue}}
	h := NewHandler(LoadConfig(nil), api, logger.NewTestLogger(t))

	session := models.SessionContext{UserID: "u1", Privileges: []string{models.PrivilegeRemitUpdate}}
	out, err := h.Execute(context.Background(), &Input{Session: session, RemitID: "rem1"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, out.Status)
	assert.Equal(t, []map[string]interface{}{{"status": "paid"}}, api.updates)

	// a paid remit is locked
	api.remit.Status = models.StatusPaid
	_, err = h.Execute(context.Background(), &Input{Session: session, RemitID: "rem1"})
	assert.Equal(t, string(errors.ErrCodeInvoiceLocked), errors.Code(err))
	assert.Len(t, api.updates, 1)
}

func TestExecute_RequiresRemitUpdate(t *testing.T) {
	api := &fakeAPI{remit: models.RemitInvoice{ID: "rem1", Status: models.StatusDue}}
	h := NewHandler(LoadConfig(nil), api, logger.NewTestLogger(t))

	creator := models.SessionContext{UserID: "u2", Privileges: []string{models.PrivilegeRemitCreate}}
	_, err := h.Execute(context.Background(), &Input{Session: creator, RemitID: "rem1"})
	assert.Equal(t, string(errors.ErrCodePermissionDenied), errors.Code(err))
	assert.Empty(t, api.updates)
}

func TestInputSchema(t *testing.T) {
	assert.True(t, inputSchema.Validate(`{"session":{"userId":"u1"},"remitId":"rem1"}`).Valid)
	assert.False(t, inputSchema.Validate(`{"session":{"userId":"u1"}}`).Valid)
}
