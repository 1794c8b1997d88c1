package findinvoiceablestudents

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-workers/internal/agencyapi"
	"agency-workers/internal/common/errors"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/models"
)

type fakeAPI struct {
	relation *models.CourseRelation
	students []models.Student
	filter   agencyapi.StudentFilter
	err      error
}

func (f *fakeAPI) GetCourseRelation(_ context.Context, id string) (*models.CourseRelation, error) {
	if f.relation == nil || f.relation.ID != id {
		return nil, errors.NewResourceNotFoundError("/course-relations/"+id, "")
	}
	return f.relation, nil
}

func (f *fakeAPI) ListStudents(_ context.Context, filter agencyapi.StudentFilter) ([]models.Student, agencyapi.Page, error) {
	f.filter = filter
	return f.students, agencyapi.Page{}, f.err
}

func relation() *models.CourseRelation {
	rate := models.NewAmount(decimal.NewFromInt(10))
	return &models.CourseRelation{
		ID:                  "cr1",
		Course:              models.Ref{ID: "c1", Name: "BSc Business"},
		LocalAmount:         models.AmountFromInt(4000),
		InternationalAmount: models.AmountFromInt(8000),
		Years: []models.CourseYear{{Year: "Year 1", Sessions: []models.Session{
			{SessionName: "Session 1", Type: models.RatePercentage, Rate: &rate},
			{SessionName: "Session 3", Type: models.RatePercentage, Rate: &rate},
		}}},
	}
}

func student(id, choice string, invoiced bool, withApplication bool) models.Student {
	st := models.Student{
		ID: id, RefID: "REF-" + id, FirstName: "Stu", LastName: id,
		Accounts: []models.Account{{
			CourseRelation: models.CourseRelationRef{ID: "cr1"},
			Years: []models.PaymentYear{{Year: "Year 1", Sessions: []models.PaymentSession{
				{SessionName: "Session 1", Invoice: invoiced},
				{SessionName: "Session 3"},
			}}},
		}},
	}
	if withApplication {
		st.Applications = []models.Application{{CourseRelation: models.CourseRelationRef{ID: "cr1"}, Choice: choice}}
	}
	return st
}

func TestExecute_DefaultsPeriodAndPricesCandidates(t *testing.T) {
	api := &fakeAPI{
		relation: relation(),
		students: []models.Student{
			student("s1", models.ChoiceLocal, false, true),
			student("s2", models.ChoiceInternational, false, true),
			student("done", models.ChoiceLocal, true, true),
			student("noapp", models.ChoiceLocal, false, false),
		},
	}
	h := NewHandler(LoadConfig(nil), api, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{CourseRelationID: "cr1"})
	require.NoError(t, err)

	assert.Equal(t, "Year 1", out.Year)
	assert.Equal(t, "Session 1", out.SessionName)
	assert.Equal(t, models.StatusDue, api.filter.PaymentStatus)
	assert.Equal(t, "cr1", api.filter.ApplicationCourse)
	assert.Equal(t, "Session 1", api.filter.Session)

	require.Len(t, out.Candidates, 2)
	assert.Equal(t, "s1", out.Candidates[0].StudentID)
	assert.Equal(t, "100.00", out.Candidates[0].Fee)
	assert.Equal(t, "200.00", out.Candidates[1].Fee)
	assert.Equal(t, "Stu s2", out.Candidates[1].Name)
	assert.Equal(t, []string{"noapp"}, out.Skipped)
	assert.Equal(t, 2, out.Total)
}

func TestExecute_LaterSessionUsesHalfRate(t *testing.T) {
	api := &fakeAPI{relation: relation(), students: []models.Student{student("s1", models.ChoiceLocal, true, true)}}
	h := NewHandler(LoadConfig(nil), api, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{
		CourseRelationID: "cr1", Year: "Year 1", SessionName: "Session 3", PaymentStatus: models.StatusPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, api.filter.PaymentStatus)
	require.Len(t, out.Candidates, 1)
	assert.Equal(t, "200.00", out.Candidates[0].Fee)
}

func TestExecute_Errors(t *testing.T) {
	log := logger.NewTestLogger(t)

	_, err := NewHandler(LoadConfig(nil), &fakeAPI{}, log).Execute(context.Background(), &Input{CourseRelationID: "cr1"})
	assert.Equal(t, string(errors.ErrCodeResourceNotFound), errors.Code(err))

	api := &fakeAPI{relation: relation(), students: []models.Student{student("s1", models.ChoiceLocal, false, true)}}
	_, err = NewHandler(LoadConfig(nil), api, log).Execute(context.Background(), &Input{
		CourseRelationID: "cr1", Year: "Year 1", SessionName: "Session 9",
	})
	assert.Equal(t, string(errors.ErrCodeSessionNotFound), errors.Code(err))

	api.err = errors.NewAPITimeoutError("GET", "/students")
	_, err = NewHandler(LoadConfig(nil), api, log).Execute(context.Background(), &Input{CourseRelationID: "cr1"})
	assert.Equal(t, string(errors.ErrCodeAPITimeout), errors.Code(err))
}

func TestInputSchema(t *testing.T) {
	assert.True(t, inputSchema.Validate(`{"courseRelationId":"cr1","paymentStatus":"due"}`).Valid)
	assert.False(t, inputSchema.Validate(`{"courseRelationId":""}`).Valid)
	assert.False(t, inputSchema.Validate(`{"courseRelationId":"cr1","paymentStatus":"maybe"}`).Valid)
}
