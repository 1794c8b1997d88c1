package agencyapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"agency-workers/internal/common/validation"
	"agency-workers/internal/models"
)

// Created is what POST /invoice and POST /remit-invoice echo back. The
// stored document is not populated at that point.
type Created struct {
	ID        string `json:"_id"`
	Reference string `json:"reference"`
}

var createdSchema = itemSchema("created", validation.Object([]string{"_id"}, map[string]interface{}{
	"_id":       idString,
	"reference": optString,
}))

func invoiceValues(f models.InvoiceFilter) url.Values {
	v := url.Values{}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	for key, value := range map[string]string{
		"status":     f.Status,
		"customer":   f.Customer,
		"searchTerm": f.SearchTerm,
		"fromDate":   f.FromDate,
		"toDate":     f.ToDate,
	} {
		if value != "" {
			v.Set(key, value)
		}
	}
	return v
}

func (c *Client) CreateInvoice(ctx context.Context, draft *models.InvoiceDraft) (*Created, error) {
	return sendItem[Created](ctx, c, http.MethodPost, "/invoice", draft, createdSchema)
}

func (c *Client) ListInvoices(ctx context.Context, f models.InvoiceFilter) ([]models.Invoice, Page, error) {
	items, page, err := getList[models.Invoice](ctx, c, "/invoice", invoiceValues(f), invoiceListSchema)
	if err != nil {
		return nil, Page{}, err
	}
	page.Page, page.Limit = f.Page, f.Limit
	return items, page, nil
}

func (c *Client) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	return getItem[models.Invoice](ctx, c, "/invoice/"+url.PathEscape(id), invoiceSchema)
}

func (c *Client) UpdateInvoice(ctx context.Context, id string, fields map[string]interface{}) error {
	return c.send(ctx, http.MethodPatch, "/invoice/"+url.PathEscape(id), fields)
}

func (c *Client) CreateRemit(ctx context.Context, draft *models.RemitDraft) (*Created, error) {
	return sendItem[Created](ctx, c, http.MethodPost, "/remit-invoice", draft, createdSchema)
}

func (c *Client) GetRemit(ctx context.Context, id string) (*models.RemitInvoice, error) {
	return getItem[models.RemitInvoice](ctx, c, "/remit-invoice/"+url.PathEscape(id), remitSchema)
}

func (c *Client) UpdateRemit(ctx context.Context, id string, fields map[string]interface{}) error {
	return c.send(ctx, http.MethodPatch, "/remit-invoice/"+url.PathEscape(id), fields)
}
