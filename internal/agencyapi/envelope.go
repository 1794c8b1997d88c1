package agencyapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"agency-workers/internal/common/errors"
	"agency-workers/internal/common/validation"
)

// Page is the pagination state reported in meta.
type Page struct {
	Page      int `json:"page,omitempty"`
	Limit     int `json:"limit,omitempty"`
	TotalPage int `json:"totalPage"`
	Total     int `json:"total"`
}

type listEnvelope[T any] struct {
	Data struct {
		Result []T  `json:"result"`
		Meta   Page `json:"meta"`
	} `json:"data"`
}

type itemEnvelope[T any] struct {
	Data T `json:"data"`
}

type messageEnvelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

func apiMessage(body []byte) string {
	var m messageEnvelope
	if err := json.Unmarshal(body, &m); err == nil && m.Message != "" {
		return m.Message
	}
	if len(body) > 300 {
		return string(body[:300])
	}
	return string(body)
}

var metaSchema = validation.Object(nil, map[string]interface{}{
	"totalPage": validation.Type("integer", "null"),
	"total":     validation.Type("integer", "null"),
})

// listSchema wraps an item schema in {data:{result:[item], meta}}.
func listSchema(name string, item map[string]interface{}) *validation.Schema {
	return validation.MustCompile(name+".list", validation.Object([]string{"data"}, map[string]interface{}{
		"data": validation.Object([]string{"result"}, map[string]interface{}{
			"result": validation.ArrayOf(item),
			"meta":   metaSchema,
		}),
	}))
}

// itemSchema wraps an item schema in {data:item}.
func itemSchema(name string, item map[string]interface{}) *validation.Schema {
	return validation.MustCompile(name+".item", validation.Object([]string{"data"}, map[string]interface{}{
		"data": item,
	}))
}

func checkSchema(path string, schema *validation.Schema, body []byte) error {
	if schema == nil {
		return nil
	}
	res := schema.Validate(body)
	if !res.Valid {
		return errors.NewResponseSchemaMismatchError(path, res.GetErrorMessages())
	}
	return nil
}

func decode(path string, body []byte, into interface{}) error {
	if err := json.Unmarshal(body, into); err != nil {
		return errors.NewResponseSchemaMismatchError(path, []string{err.Error()})
	}
	return nil
}

func getList[T any](ctx context.Context, c *Client, path string, query url.Values, schema *validation.Schema) ([]T, Page, error) {
	body, err := c.call(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, Page{}, err
	}
	if err := checkSchema(path, schema, body); err != nil {
		return nil, Page{}, err
	}
	var env listEnvelope[T]
	if err := decode(path, body, &env); err != nil {
		return nil, Page{}, err
	}
	return env.Data.Result, env.Data.Meta, nil
}

func sendItem[T any](ctx context.Context, c *Client, method, path string, payload interface{}, schema *validation.Schema) (*T, error) {
	body, err := c.call(ctx, method, path, nil, payload)
	if err != nil {
		return nil, err
	}
	if err := checkSchema(path, schema, body); err != nil {
		return nil, err
	}
	var env itemEnvelope[T]
	if err := decode(path, body, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func getItem[T any](ctx context.Context, c *Client, path string, schema *validation.Schema) (*T, error) {
	return sendItem[T](ctx, c, http.MethodGet, path, nil, schema)
}

// send issues a write whose response body is not needed.
func (c *Client) send(ctx context.Context, method, path string, payload interface{}) error {
	_, err := c.call(ctx, method, path, nil, payload)
	return err
}
