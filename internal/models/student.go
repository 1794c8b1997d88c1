package models

// Student mirrors the /students resource. Only the fields the workers read are
// decoded; the API sends many more.
type Student struct {
	ID             string         `json:"_id"`
	RefID          string         `json:"refId"`
	CollegeRoll    string         `json:"collegeRoll,omitempty"`
	Title          string         `json:"title,omitempty"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	Email          string         `json:"email,omitempty"`
	Phone          string         `json:"phone,omitempty"`
	DOB            string         `json:"dob,omitempty"`
	Gender         string         `json:"gender,omitempty"`
	Nationality    string         `json:"nationality,omitempty"`
	PassportNumber string         `json:"passportNumber,omitempty"`
	Applications   []Application  `json:"applications,omitempty"`
	Accounts       []Account      `json:"accounts,omitempty"`
	AgentPayments  []AgentPayment `json:"agentPayments,omitempty"`
}

func (s Student) FullName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// ApplicationFor returns the student's application to the given course
// relation, if any.
func (s Student) ApplicationFor(courseRelationID string) (Application, bool) {
	for _, app := range s.Applications {
		if app.CourseRelation.ID == courseRelationID {
			return app, true
		}
	}
	return Application{}, false
}

const (
	ChoiceLocal         = "Local"
	ChoiceInternational = "International"
)

// Application is a student's enrollment choice for a course relation.
type Application struct {
	ID             string            `json:"_id,omitempty"`
	CourseRelation CourseRelationRef `json:"courseRelationId"`
	Institution    Ref               `json:"institution"`
	Course         Ref               `json:"course"`
	Term           Ref               `json:"term"`
	Choice         string            `json:"choice"`
	Status         string            `json:"status,omitempty"`
	StatusLogs     []StatusLog       `json:"statusLogs,omitempty"`
}

type StatusLog struct {
	PrevStatus string `json:"prev_status,omitempty"`
	ChangedTo  string `json:"changed_to"`
	ChangedBy  Ref    `json:"changed_by"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// Account is the per-course financial record used for customer invoicing.
type Account struct {
	CourseRelation CourseRelationRef `json:"courseRelationId"`
	Years          []PaymentYear     `json:"years,omitempty"`
}

// AgentPayment is the per-course record used for agent remits. Its course
// relation is always sent as a bare id.
type AgentPayment struct {
	CourseRelationID string        `json:"courseRelationId"`
	Years            []PaymentYear `json:"years,omitempty"`
}

type PaymentYear struct {
	Year     string           `json:"year"`
	Sessions []PaymentSession `json:"sessions,omitempty"`
}

type PaymentSession struct {
	SessionName string `json:"sessionName"`
	Invoice     bool   `json:"invoice,omitempty"`
	Remit       bool   `json:"remit,omitempty"`
	Status      string `json:"status,omitempty"`
}

// PeriodMatcher reports whether a payment session within a year qualifies.
type PeriodMatcher func(year PaymentYear, session PaymentSession) bool

// AnyPeriod walks years and sessions, honoring the optional year/session
// filters, and reports whether match holds for some period.
func AnyPeriod(years []PaymentYear, year, session string, match PeriodMatcher) bool {
	for _, y := range years {
		if year != "" && y.Year != year {
			continue
		}
		if match == nil && session == "" {
			return true
		}
		for _, s := range y.Sessions {
			if session != "" && s.SessionName != session {
				continue
			}
			if match == nil || match(y, s) {
				return true
			}
		}
	}
	return false
}
