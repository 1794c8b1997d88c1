package agencyapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"agency-workers/internal/models"
)

// StudentFilter is the query accepted by GET /students. Invoice listings use
// the payment fields, remit listings the agent ones.
type StudentFilter struct {
	SearchQuery       string
	PaymentStatus     string
	ApplicationCourse string
	Year              string
	Session           string

	AgentID               string
	AgentCourseRelationID string
	AgentPaymentStatus    string
	AgentYear             string
	AgentSession          string

	Status string
	Limit  int
}

// Values encodes the filter, omitting empty fields.
func (f StudentFilter) Values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("searchQuery", f.SearchQuery)
	set("paymentStatus", f.PaymentStatus)
	set("applicationCourse", f.ApplicationCourse)
	set("year", f.Year)
	set("session", f.Session)
	set("agentid", f.AgentID)
	set("agentCourseRelationId", f.AgentCourseRelationID)
	set("agentPaymentStatus", f.AgentPaymentStatus)
	set("agentYear", f.AgentYear)
	set("agentSession", f.AgentSession)
	set("status", f.Status)
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	return v
}

func (c *Client) ListStudents(ctx context.Context, f StudentFilter) ([]models.Student, Page, error) {
	if f.Limit <= 0 {
		f.Limit = c.pageLimit
	}
	return getList[models.Student](ctx, c, "/students", f.Values(), studentListSchema)
}

func (c *Client) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	return getItem[models.Student](ctx, c, "/students/"+url.PathEscape(id), studentSchema)
}

// UpdateStudent patches the given fields, e.g. {"collegeRoll": "..."}.
func (c *Client) UpdateStudent(ctx context.Context, id string, fields map[string]interface{}) error {
	return c.send(ctx, http.MethodPatch, "/students/"+url.PathEscape(id), fields)
}
