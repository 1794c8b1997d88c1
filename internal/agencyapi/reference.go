package agencyapi

import (
	"context"
	"net/url"

	"golang.org/x/sync/errgroup"

	"agency-workers/internal/common/validation"
	"agency-workers/internal/models"
)

// Reference resources loaded together.
const (
	ResourceInstitutes    = "institutions"
	ResourceTerms         = "terms"
	ResourceCourses       = "courses"
	ResourceAcademicYears = "academic-years"
)

// ReferenceData is the lookup data behind the invoice and student filters.
type ReferenceData struct {
	Institutes    []models.Institute    `json:"institutes"`
	Terms         []models.Term         `json:"terms"`
	Courses       []models.Course       `json:"courses"`
	AcademicYears []models.AcademicYear `json:"academicYears"`
}

func activeQuery() url.Values {
	return url.Values{"limit": {"all"}, "status": {"1"}}
}

// fetchActive loads one active-only resource, going through the cache.
func fetchActive[T any](ctx context.Context, c *Client, cache *Cache, resource string, schema *validation.Schema) ([]T, error) {
	var items []T
	if cache.get(ctx, resource, &items) {
		return items, nil
	}
	items, _, err := getList[T](ctx, c, "/"+resource, activeQuery(), schema)
	if err != nil {
		return nil, err
	}
	cache.set(ctx, resource, items)
	return items, nil
}

// LoadReferenceData fetches all reference resources concurrently. The first
// failure cancels the remaining requests.
func (c *Client) LoadReferenceData(ctx context.Context, cache *Cache) (*ReferenceData, error) {
	var data ReferenceData
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := fetchActive[models.Institute](gctx, c, cache, ResourceInstitutes, namedListSchema)
		data.Institutes = items
		return err
	})
	g.Go(func() error {
		items, err := fetchActive[models.Term](gctx, c, cache, ResourceTerms, termListSchema)
		data.Terms = items
		return err
	})
	g.Go(func() error {
		items, err := fetchActive[models.Course](gctx, c, cache, ResourceCourses, namedListSchema)
		data.Courses = items
		return err
	})
	g.Go(func() error {
		items, err := fetchActive[models.AcademicYear](gctx, c, cache, ResourceAcademicYears, academicYearListSchema)
		data.AcademicYears = items
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}
