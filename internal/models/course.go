package models

const (
	RateFlat       = "flat"
	RatePercentage = "percentage"
)

// Session is a billing sub-period within a course year.
type Session struct {
	SessionName string  `json:"sessionName"`
	Rate        *Amount `json:"rate"`
	Type        string  `json:"type"`
	InvoiceDate string  `json:"invoiceDate,omitempty"`
}

type CourseYear struct {
	Year     string    `json:"year"`
	Sessions []Session `json:"sessions"`
}

// CourseRelation links an institute, course and term with its fee schedule.
type CourseRelation struct {
	ID                  string       `json:"_id"`
	Institute           Ref          `json:"institute"`
	Course              Ref          `json:"course"`
	Term                Ref          `json:"term"`
	LocalAmount         Amount       `json:"local_amount"`
	InternationalAmount Amount       `json:"international_amount"`
	Years               []CourseYear `json:"years"`
	Status              int          `json:"status,omitempty"`
}

// BaseAmount picks the fee base for an application choice. Anything other
// than "Local" is charged the international amount.
func (cr CourseRelation) BaseAmount(choice string) Amount {
	if choice == ChoiceLocal {
		return cr.LocalAmount
	}
	return cr.InternationalAmount
}

// ResolvePeriod fills in defaults the way the invoice form does: the first
// year when none is given, then that year's first session.
func (cr CourseRelation) ResolvePeriod(year, session string) (string, string) {
	if year == "" && len(cr.Years) > 0 {
		year = cr.Years[0].Year
	}
	if session == "" {
		if y, ok := cr.FindYear(year); ok && len(y.Sessions) > 0 {
			session = y.Sessions[0].SessionName
		}
	}
	return year, session
}

func (cr CourseRelation) FindYear(year string) (CourseYear, bool) {
	for _, y := range cr.Years {
		if y.Year == year {
			return y, true
		}
	}
	return CourseYear{}, false
}

// FindSession looks up the session rate for a year/session pair.
func (cr CourseRelation) FindSession(year, session string) (Session, bool) {
	y, ok := cr.FindYear(year)
	if !ok {
		return Session{}, false
	}
	for _, s := range y.Sessions {
		if s.SessionName == session {
			return s, true
		}
	}
	return Session{}, false
}

// AgentCourse carries per-agent session rates for one course relation.
type AgentCourse struct {
	ID               string    `json:"_id"`
	AgentID          Ref       `json:"agentId"`
	CourseRelationID Ref       `json:"courseRelationId"`
	Year             []Session `json:"year"`
}

func (ac AgentCourse) FindSession(session string) (Session, bool) {
	for _, s := range ac.Year {
		if s.SessionName == session {
			return s, true
		}
	}
	return Session{}, false
}
