package billing

import (
	"github.com/shopspring/decimal"

	"agency-workers/internal/common/errors"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/models"
)

type RemitParams struct {
	AdjustmentType  string
	AdjustmentValue decimal.Decimal
	BankID          string
	CreatedBy       string
}

// RemitBuilder prices students with the agent's own session rates.
// Percentage rates are not pro-rated here.
type RemitBuilder struct {
	relation  models.CourseRelation
	agentID   string
	year      string
	session   string
	rate      models.Session
	rateFound bool
	selection *Selection
	log       logger.Logger
}

// NewRemitBuilder requires an agent and that agent's course configuration.
// The session rate is picked by session name only; agent courses are not
// split by year.
func NewRemitBuilder(relation *models.CourseRelation, agentID string, agentCourse *models.AgentCourse, year, session string, log logger.Logger) (*RemitBuilder, error) {
	if agentID == "" {
		return nil, errors.NewAgentRequiredError()
	}
	if relation == nil || relation.ID == "" {
		return nil, errors.NewNoCourseRelationError()
	}
	if agentCourse == nil {
		return nil, errors.NewAgentCourseNotFoundError(agentID, relation.ID)
	}
	year, session = relation.ResolvePeriod(year, session)
	rate, ok := agentCourse.FindSession(session)

	return &RemitBuilder{
		relation:  *relation,
		agentID:   agentID,
		year:      year,
		session:   session,
		rate:      rate,
		rateFound: ok,
		selection: NewSelection(),
		log:       log,
	}, nil
}

func (b *RemitBuilder) Period() (year, session string) { return b.year, b.session }

func (b *RemitBuilder) Selection() *Selection { return b.selection }

func (b *RemitBuilder) Quote(st models.Student) (Row, error) {
	if !b.rateFound {
		return Row{}, errors.NewAgentSessionNotFoundError(b.session)
	}
	app, ok := st.ApplicationFor(b.relation.ID)
	if !ok {
		return Row{}, errors.NewApplicationNotFoundError(st.ID)
	}
	if !HasRate(b.rate) {
		b.log.Warn("Agent session rate missing, fee defaults to zero", map[string]interface{}{
			"agentId":          b.agentID,
			"courseRelationId": b.relation.ID,
			"session":          b.session,
		})
	}

	base := b.relation.BaseAmount(app.Choice).Decimal
	fee := Money(CalculateSessionFee(b.rate, base, ProrationNone))
	return newRow(st, b.relation, fee, b.year, b.session), nil
}

func (b *RemitBuilder) Add(st models.Student) error {
	row, err := b.Quote(st)
	if err != nil {
		return err
	}
	return addRow(b.selection, row)
}

func (b *RemitBuilder) Build(p RemitParams) (*models.RemitDraft, RemitSummary, error) {
	checked := b.selection.Checked()
	if len(checked) == 0 {
		return nil, RemitSummary{}, errors.NewNoStudentsSelectedError()
	}
	adjustmentType, err := NormalizeAdjustmentType(p.AdjustmentType)
	if err != nil {
		return nil, RemitSummary{}, err
	}

	summary := RemitTotals(b.selection.Fees(), Adjustment{Type: adjustmentType, Value: p.AdjustmentValue})

	return &models.RemitDraft{
		RemitTo:           b.agentID,
		NoOfStudents:      len(checked),
		CourseRelationID:  b.relation.ID,
		TotalAmount:       models.NewAmount(Money(summary.Total)),
		AdjustmentType:    adjustmentType,
		AdjustmentBalance: models.NewAmount(p.AdjustmentValue),
		CreatedBy:         p.CreatedBy,
		Year:              b.year,
		Session:           b.session,
		Semester:          b.relation.Term.Name,
		Course:            b.relation.Course.Name,
		Students:          lines(checked),
		Status:            models.StatusDue,
		Bank:              p.BankID,
	}, summary, nil
}
