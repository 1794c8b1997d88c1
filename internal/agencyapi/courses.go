package agencyapi

import (
	"context"
	"net/url"

	"agency-workers/internal/common/errors"
	"agency-workers/internal/models"
)

func allQuery() url.Values {
	return url.Values{"limit": {"all"}}
}

func (c *Client) ListCourseRelations(ctx context.Context) ([]models.CourseRelation, error) {
	items, _, err := getList[models.CourseRelation](ctx, c, "/course-relations", allQuery(), courseRelationListSchema)
	return items, err
}

func (c *Client) GetCourseRelation(ctx context.Context, id string) (*models.CourseRelation, error) {
	return getItem[models.CourseRelation](ctx, c, "/course-relations/"+url.PathEscape(id), courseRelationSchema)
}

// GetAgentCourse returns the agent's rate configuration for a course
// relation. An empty result is reported as RESOURCE_NOT_FOUND.
func (c *Client) GetAgentCourse(ctx context.Context, agentID, courseRelationID string) (*models.AgentCourse, error) {
	q := url.Values{}
	q.Set("agentId", agentID)
	q.Set("courseRelationId", courseRelationID)

	items, _, err := getList[models.AgentCourse](ctx, c, "/agent-courses", q, agentCourseListSchema)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.NewResourceNotFoundError("agent course", "agentId="+agentID+" courseRelationId="+courseRelationID)
	}
	return &items[0], nil
}

func (c *Client) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	items, _, err := getList[models.Customer](ctx, c, "/customer", allQuery(), namedListSchema)
	return items, err
}

func (c *Client) ListBanks(ctx context.Context) ([]models.Bank, error) {
	items, _, err := getList[models.Bank](ctx, c, "/bank", allQuery(), namedListSchema)
	return items, err
}

func (c *Client) ListAgents(ctx context.Context) ([]models.Agent, error) {
	q := allQuery()
	q.Set("role", "agent")
	q.Set("fields", "name")
	items, _, err := getList[models.Agent](ctx, c, "/users", q, namedListSchema)
	return items, err
}
