package billing

import (
	stderrors "errors"

	"github.com/shopspring/decimal"

	"agency-workers/internal/common/errors"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/models"
)

// InvoiceParams are the form values that accompany an invoice selection.
type InvoiceParams struct {
	CustomerID     string
	BankID         string
	DiscountType   string
	DiscountAmount decimal.Decimal
	DiscountMsg    string
	VAT            decimal.Decimal
	Status         string
	CreatedBy      string
}

// InvoiceBuilder prices students against a course relation session and
// assembles the POST /invoice body from the checked selection.
type InvoiceBuilder struct {
	relation  models.CourseRelation
	year      string
	session   string
	rate      models.Session
	rateFound bool
	selection *Selection
	log       logger.Logger
}

// NewInvoiceBuilder resolves the period (first year and first session when
// unset) and looks up its rate. A missing rate is reported by Quote, not here,
// so that an empty course schedule can still be browsed.
func NewInvoiceBuilder(relation *models.CourseRelation, year, session string, log logger.Logger) (*InvoiceBuilder, error) {
	if relation == nil || relation.ID == "" {
		return nil, errors.NewNoCourseRelationError()
	}
	year, session = relation.ResolvePeriod(year, session)
	rate, ok := relation.FindSession(year, session)

	return &InvoiceBuilder{
		relation:  *relation,
		year:      year,
		session:   session,
		rate:      rate,
		rateFound: ok,
		selection: NewSelection(),
		log:       log,
	}, nil
}

func (b *InvoiceBuilder) Period() (year, session string) { return b.year, b.session }

func (b *InvoiceBuilder) Selection() *Selection { return b.selection }

// Quote prices a student without selecting them.
func (b *InvoiceBuilder) Quote(st models.Student) (Row, error) {
	if !b.rateFound {
		return Row{}, errors.NewSessionNotFoundError(b.year, b.session)
	}
	app, ok := st.ApplicationFor(b.relation.ID)
	if !ok {
		return Row{}, errors.NewApplicationNotFoundError(st.ID)
	}
	if !HasRate(b.rate) {
		b.log.Warn("Session rate missing, fee defaults to zero", map[string]interface{}{
			"courseRelationId": b.relation.ID,
			"year":             b.year,
			"session":          b.session,
		})
	}

	base := b.relation.BaseAmount(app.Choice).Decimal
	fee := Money(CalculateSessionFee(b.rate, base, ProrationEarlySessions))
	return newRow(st, b.relation, fee, b.year, b.session), nil
}

// Add quotes the student and puts them in the selection.
func (b *InvoiceBuilder) Add(st models.Student) error {
	row, err := b.Quote(st)
	if err != nil {
		return err
	}
	return addRow(b.selection, row)
}

// Build totals the checked rows and produces the draft. The selection is
// left intact; call MarkSubmitted on it once the draft has been accepted.
func (b *InvoiceBuilder) Build(p InvoiceParams) (*models.InvoiceDraft, InvoiceSummary, error) {
	checked := b.selection.Checked()
	if len(checked) == 0 {
		return nil, InvoiceSummary{}, errors.NewNoStudentsSelectedError()
	}
	discountType, err := NormalizeDiscountType(p.DiscountType)
	if err != nil {
		return nil, InvoiceSummary{}, err
	}

	summary := InvoiceTotals(b.selection.Fees(), Discount{Type: discountType, Value: p.DiscountAmount}, p.VAT)

	status := p.Status
	if status == "" {
		status = models.StatusDue
	}

	return &models.InvoiceDraft{
		Status:           status,
		Customer:         p.CustomerID,
		Bank:             p.BankID,
		Students:         lines(checked),
		NoOfStudents:     len(checked),
		CourseRelationID: b.relation.ID,
		TotalAmount:      models.NewAmount(Money(summary.Total)),
		CreatedBy:        p.CreatedBy,
		Year:             b.year,
		Session:          b.session,
		Semester:         b.relation.Term.Name,
		Institute:        b.relation.Institute.ID,
		DiscountType:     discountType,
		DiscountAmount:   models.NewAmount(p.DiscountAmount),
		DiscountMsg:      p.DiscountMsg,
		VAT:              models.NewAmount(p.VAT),
	}, summary, nil
}

func newRow(st models.Student, relation models.CourseRelation, fee decimal.Decimal, year, session string) Row {
	return Row{
		StudentID: st.ID,
		Line: models.InvoiceLine{
			CollegeRoll: st.CollegeRoll,
			RefID:       st.RefID,
			FirstName:   st.FirstName,
			LastName:    st.LastName,
			Course:      relation.Course.Name,
			Amount:      models.NewAmount(fee),
		},
		Fee:              fee,
		CourseRelationID: relation.ID,
		Year:             year,
		Session:          session,
	}
}

func addRow(sel *Selection, row Row) error {
	if err := sel.Add(row); err != nil {
		if stderrors.Is(err, ErrAlreadySelected) {
			return errors.NewStudentAlreadySelectedError(row.StudentID)
		}
		return err
	}
	return nil
}

func lines(rows []Row) []models.InvoiceLine {
	out := make([]models.InvoiceLine, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Line)
	}
	return out
}
