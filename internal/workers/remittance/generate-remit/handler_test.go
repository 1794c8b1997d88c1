package generateremit

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-workers/internal/agencyapi"
	"agency-workers/internal/common/errors"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/common/metrics"
	"agency-workers/internal/models"
	"agency-workers/internal/reconciliation"
)

type fakeAPI struct {
	agentCourse *models.AgentCourse
	students    map[string]models.Student
	drafts      []*models.RemitDraft
	createErr   error
}

func (f *fakeAPI) GetCourseRelation(_ context.Context, id string) (*models.CourseRelation, error) {
	if id != "cr1" {
		return nil, errors.NewResourceNotFoundError("/course-relations/"+id, "")
	}
	return &models.CourseRelation{
		ID:                  "cr1",
		Course:              models.Ref{ID: "c1", Name: "BSc Business"},
		Term:                models.Ref{ID: "t1", Name: "January 2025"},
		LocalAmount:         models.AmountFromInt(4000),
		InternationalAmount: models.AmountFromInt(8000),
		Years: []models.CourseYear{{Year: "Year 1", Sessions: []models.Session{
			{SessionName: "Session 1", Type: models.RatePercentage, Rate: rate(10)},
		}}},
	}, nil
}

func (f *fakeAPI) GetAgentCourse(_ context.Context, agentID, courseRelationID string) (*models.AgentCourse, error) {
	if f.agentCourse == nil {
		return nil, errors.NewResourceNotFoundError("agent course", agentID)
	}
	return f.agentCourse, nil
}

func (f *fakeAPI) GetStudent(_ context.Context, id string) (*models.Student, error) {
	st, ok := f.students[id]
	if !ok {
		return nil, errors.NewResourceNotFoundError("/students/"+id, "")
	}
	return &st, nil
}

func (f *fakeAPI) CreateRemit(_ context.Context, draft *models.RemitDraft) (*agencyapi.Created, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.drafts = append(f.drafts, draft)
	return &agencyapi.Created{ID: "rem1", Reference: "REM-0001"}, nil
}

type fakeAudit struct{ entries []reconciliation.Entry }

func (f *fakeAudit) Record(_ context.Context, e reconciliation.Entry) (reconciliation.Entry, error) {
	f.entries = append(f.entries, e)
	return e, nil
}

type fakeEvents struct{ types []string }

func (f *fakeEvents) Publish(_ context.Context, eventType string, _ interface{}) (string, error) {
	f.types = append(f.types, eventType)
	return "msg", nil
}

func rate(v int64) *models.Amount {
	a := models.NewAmount(decimal.NewFromInt(v))
	return &a
}

func newAPI() *fakeAPI {
	app := func(choice string) []models.Application {
		return []models.Application{{CourseRelation: models.CourseRelationRef{ID: "cr1"}, Choice: choice}}
	}
	return &fakeAPI{
		agentCourse: &models.AgentCourse{ID: "ac1", Year: []models.Session{
			{SessionName: "Session 1", Type: models.RatePercentage, Rate: rate(5)},
		}},
		students: map[string]models.Student{
			"s1": {ID: "s1", RefID: "REF-1", Applications: app(models.ChoiceLocal)},
			"s2": {ID: "s2", RefID: "REF-2", Applications: app(models.ChoiceInternational)},
		},
	}
}

func validInput() *Input {
	return &Input{
		Session:          models.SessionContext{UserID: "u1", Privileges: []string{models.PrivilegeRemitCreate}},
		AgentID:          "agent1",
		CourseRelationID: "cr1",
		StudentIDs:       []string{"s1", "s2"},
		BankID:           "bank1",
		AdjustmentValue:  models.AmountFromInt(10),
	}
}

func TestExecute(t *testing.T) {
	api := newAPI()
	audit := &fakeAudit{}
	events := &fakeEvents{}
	h := NewHandler(LoadConfig(nil), api, audit, events, logger.NewTestLogger(t))
	before := testutil.ToFloat64(metrics.DocumentsGenerated.WithLabelValues(reconciliation.KindRemit))

	out, err := h.Execute(context.Background(), validInput())
	require.NoError(t, err)

	// 5% of 4000 and 8000, then a 10% percentage adjustment by default
	assert.Equal(t, "600.00", out.Subtotal)
	assert.Equal(t, "60.00", out.Deduction)
	assert.Equal(t, "540.00", out.TotalAmount)
	assert.Equal(t, "REM-0001", out.Reference)

	require.Len(t, api.drafts, 1)
	d := api.drafts[0]
	assert.Equal(t, "agent1", d.RemitTo)
	assert.Equal(t, models.DiscountPercentage, d.AdjustmentType)
	assert.Equal(t, "bank1", d.Bank)
	assert.Equal(t, "u1", d.CreatedBy)
	assert.Equal(t, "BSc Business", d.Course)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, reconciliation.KindRemit, audit.entries[0].Kind)
	assert.Equal(t, "60", audit.entries[0].Deduction.String())
	assert.Equal(t, []string{EventType}, events.types)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.DocumentsGenerated.WithLabelValues(reconciliation.KindRemit)))
}

func TestExecute_FlatAdjustmentClampsAtZero(t *testing.T) {
	api := newAPI()
	h := NewHandler(LoadConfig(nil), api, nil, nil, logger.NewTestLogger(t))

	in := validInput()
	in.AdjustmentType = models.DiscountFlat
	in.AdjustmentValue = models.AmountFromInt(1000)

	out, err := h.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", out.Deduction)
	assert.Equal(t, "0.00", out.TotalAmount)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Input)
		api    func(*fakeAPI)
		code   errors.ErrorCode
	}{
		{name: "missing privilege", modify: func(in *Input) { in.Session.Privileges = []string{models.PrivilegeInvoiceCreate} }, code: errors.ErrCodePermissionDenied},
		{name: "no agent", modify: func(in *Input) { in.AgentID = "" }, code: errors.ErrCodeAgentRequired},
		{name: "agent course missing", api: func(f *fakeAPI) { f.agentCourse = nil }, code: errors.ErrCodeAgentCourseNotFound},
		{name: "no students", modify: func(in *Input) { in.StudentIDs = nil }, code: errors.ErrCodeNoStudentsSelected},
		{name: "duplicate", modify: func(in *Input) { in.StudentIDs = []string{"s2", "s2"} }, code: errors.ErrCodeStudentAlreadyAdded},
		{name: "bad adjustment", modify: func(in *Input) { in.AdjustmentType = "bonus" }, code: errors.ErrCodeInvalidAdjustmentType},
		{name: "api error", api: func(f *fakeAPI) { f.createErr = errors.NewAPITimeoutError("POST", "/remit-invoice") }, code: errors.ErrCodeAPITimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newAPI()
			if tt.api != nil {
				tt.api(api)
			}
			in := validInput()
			if tt.modify != nil {
				tt.modify(in)
			}
			audit := &fakeAudit{}
			h := NewHandler(LoadConfig(nil), api, audit, nil, logger.NewTestLogger(t))

			_, err := h.Execute(context.Background(), in)
			require.Error(t, err)
			assert.Equal(t, string(tt.code), errors.Code(err))
			assert.Empty(t, audit.entries)
		})
	}
}

func TestInputSchema(t *testing.T) {
	assert.True(t, inputSchema.Validate(`{"session":{"userId":"u1"},"agentId":"a","courseRelationId":"cr1","studentIds":["s1"],"adjustmentBalance":5}`).Valid)
	assert.False(t, inputSchema.Validate(`{"session":{"userId":"u1"},"courseRelationId":"cr1","studentIds":["s1"]}`).Valid)
}
