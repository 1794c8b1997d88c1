package billing

import "agency-workers/internal/models"

// InvoiceableFilter narrows a /students result to those that can still be
// invoiced for a course relation and period.
type InvoiceableFilter struct {
	CourseRelationID string
	Year             string
	Session          string
}

func (f InvoiceableFilter) Match(st models.Student) bool {
	if f.CourseRelationID != "" {
		found := false
		for _, acc := range st.Accounts {
			if acc.CourseRelation.ID == f.CourseRelationID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	invoiced := func(_ models.PaymentYear, s models.PaymentSession) bool { return s.Invoice }
	for _, acc := range st.Accounts {
		if models.AnyPeriod(acc.Years, f.Year, f.Session, invoiced) {
			return false
		}
	}

	if f.Year == "" && f.Session == "" {
		return true
	}
	for _, acc := range st.Accounts {
		if models.AnyPeriod(acc.Years, f.Year, f.Session, nil) {
			return true
		}
	}
	return false
}

// RemittableFilter is the agent-payment counterpart of InvoiceableFilter.
// Already remitted periods only disqualify a student when listing available
// students; paid and due listings want to see them.
type RemittableFilter struct {
	CourseRelationID string
	Year             string
	Session          string
	Status           string
}

func (f RemittableFilter) Match(st models.Student) bool {
	if f.CourseRelationID != "" {
		found := false
		for _, p := range st.AgentPayments {
			if p.CourseRelationID == f.CourseRelationID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.Status == models.StatusAvailable {
		remitted := func(_ models.PaymentYear, s models.PaymentSession) bool { return s.Remit }
		for _, p := range st.AgentPayments {
			if models.AnyPeriod(p.Years, f.Year, f.Session, remitted) {
				return false
			}
		}
	}

	if f.Year == "" && f.Session == "" {
		return true
	}
	for _, p := range st.AgentPayments {
		if models.AnyPeriod(p.Years, f.Year, f.Session, nil) {
			return true
		}
	}
	return false
}

// Filter keeps the students match accepts.
func Filter(students []models.Student, match func(models.Student) bool) []models.Student {
	out := make([]models.Student, 0, len(students))
	for _, st := range students {
		if match(st) {
			out = append(out, st)
		}
	}
	return out
}
