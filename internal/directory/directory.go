// Package directory resolves roll CSV records to students. Students are
// looked up in the Elasticsearch student index by phone and email; a miss
// falls back to the agency API and the hit is written back to the index.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"agency-workers/internal/agencyapi"
	"agency-workers/internal/common/errors"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/models"
	"agency-workers/internal/rollimport"
)

const DefaultIndex = "students"

// StudentSearcher is the API fallback.
type StudentSearcher interface {
	ListStudents(ctx context.Context, f agencyapi.StudentFilter) ([]models.Student, agencyapi.Page, error)
}

// Document is what the student index stores.
type Document struct {
	ID          string `json:"id"`
	RefID       string `json:"refId,omitempty"`
	CollegeRoll string `json:"collegeRoll,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`
}

func DocumentOf(st models.Student) Document {
	return Document{
		ID:          st.ID,
		RefID:       st.RefID,
		CollegeRoll: st.CollegeRoll,
		FirstName:   st.FirstName,
		LastName:    st.LastName,
		Phone:       normalizePhone(st.Phone),
		Email:       normalizeEmail(st.Email),
	}
}

type Directory struct {
	es    *elasticsearch.Client
	index string
	api   StudentSearcher
	log   logger.Logger
}

// New builds a Directory. Either backend may be nil, but not both.
func New(es *elasticsearch.Client, index string, api StudentSearcher, log logger.Logger) *Directory {
	if index == "" {
		index = DefaultIndex
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Directory{es: es, index: index, api: api, log: log}
}

// Find returns the id of the student with the record's phone, or failing
// that its email.
func (d *Directory) Find(ctx context.Context, rec rollimport.Record) (string, bool, error) {
	if d.es != nil {
		id, ok, err := d.search(ctx, rec)
		if err == nil && ok {
			return id, true, nil
		}
		if err != nil {
			d.log.Warn("Student index search failed, falling back to API", map[string]interface{}{
				"line":  rec.Line,
				"error": err.Error(),
			})
		}
	}
	if d.api == nil {
		return "", false, nil
	}

	st, ok, err := d.searchAPI(ctx, rec)
	if err != nil || !ok {
		return "", false, err
	}
	if d.es != nil {
		if err := d.Index(ctx, st); err != nil {
			d.log.Warn("Failed to index student", map[string]interface{}{
				"studentId": st.ID,
				"error":     err.Error(),
			})
		}
	}
	return st.ID, true, nil
}

// Resolve looks up every non-duplicate record up front and returns a Lookup
// over the results, keyed by line. Lookups that fail count as not found.
func (d *Directory) Resolve(ctx context.Context, records []rollimport.Record) (rollimport.Lookup, error) {
	dups := rollimport.DetectDuplicates(records, rollimport.PhoneKey, rollimport.EmailKey)
	found := make(map[int]string, len(records))
	for i, rec := range records {
		if dups[i].Duplicate {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, ok, err := d.Find(ctx, rec)
		if err != nil {
			d.log.Warn("Student lookup failed", map[string]interface{}{
				"line":  rec.Line,
				"error": err.Error(),
			})
			continue
		}
		if ok {
			found[rec.Line] = id
		}
	}
	return func(rec rollimport.Record) (string, bool) {
		id, ok := found[rec.Line]
		return id, ok
	}, nil
}

func (d *Directory) search(ctx context.Context, rec rollimport.Record) (string, bool, error) {
	var should []interface{}
	if phone := normalizePhone(rec.Phone); phone != "" {
		should = append(should, map[string]interface{}{
			"term": map[string]interface{}{"phone": map[string]interface{}{"value": phone, "boost": 2}},
		})
	}
	if email := normalizeEmail(rec.Email); email != "" {
		should = append(should, map[string]interface{}{
			"term": map[string]interface{}{"email": map[string]interface{}{"value": email}},
		})
	}
	if len(should) == 0 {
		return "", false, nil
	}

	body, err := json.Marshal(map[string]interface{}{
		"size": 1,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		},
	})
	if err != nil {
		return "", false, err
	}

	size := 1
	req := esapi.SearchRequest{
		Index: []string{d.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}
	res, err := req.Do(ctx, d.es)
	if err != nil {
		return "", false, errors.NewSearchQueryFailedError(d.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return "", false, errors.NewSearchQueryFailedError(d.index, fmt.Errorf("%s: %s", res.Status(), raw))
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID     string   `json:"_id"`
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return "", false, errors.NewSearchQueryFailedError(d.index, err)
	}
	if len(r.Hits.Hits) == 0 {
		return "", false, nil
	}
	hit := r.Hits.Hits[0]
	if hit.Source.ID != "" {
		return hit.Source.ID, true, nil
	}
	return hit.ID, hit.ID != "", nil
}

// searchAPI asks the API for the phone, then the email, and keeps only exact
// matches since searchQuery is fuzzy on the backend.
func (d *Directory) searchAPI(ctx context.Context, rec rollimport.Record) (models.Student, bool, error) {
	for _, q := range []struct {
		value string
		same  func(models.Student) bool
	}{
		{normalizePhone(rec.Phone), func(st models.Student) bool { return normalizePhone(st.Phone) == normalizePhone(rec.Phone) }},
		{normalizeEmail(rec.Email), func(st models.Student) bool { return normalizeEmail(st.Email) == normalizeEmail(rec.Email) }},
	} {
		if q.value == "" {
			continue
		}
		students, _, err := d.api.ListStudents(ctx, agencyapi.StudentFilter{SearchQuery: q.value, Limit: 20})
		if err != nil {
			return models.Student{}, false, err
		}
		for _, st := range students {
			if q.same(st) {
				return st, true, nil
			}
		}
	}
	return models.Student{}, false, nil
}

// Index upserts one student into the index.
func (d *Directory) Index(ctx context.Context, st models.Student) error {
	body, err := json.Marshal(DocumentOf(st))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      d.index,
		DocumentID: st.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, d.es)
	if err != nil {
		return errors.NewSearchQueryFailedError(d.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.NewSearchQueryFailedError(d.index, fmt.Errorf("index %s: %s", st.ID, res.Status()))
	}
	return nil
}

func normalizePhone(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
