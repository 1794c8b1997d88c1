package accounting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agency-workers/internal/models"
)

const TransactionInflow = "inflow"

// Client posts paid invoices to the company's accounting ledger.
type Client struct {
	url          string
	companyToken string
	httpClient   *http.Client
	now          func() time.Time
}

type Transaction struct {
	TransactionType string        `json:"transactionType"`
	TransactionDate string        `json:"transactionDate"`
	InvoiceDate     string        `json:"invoiceDate"`
	InvoiceNumber   string        `json:"invoiceNumber"`
	Description     string        `json:"description"`
	Amount          models.Amount `json:"amount"`
}

func NewClient(url, companyToken string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url:          url,
		companyToken: companyToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// Describe builds the ledger description: one "Label: value |" line per
// field, then the discount note if there is one.
func Describe(inv *models.Invoice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Students: %s |\n", strings.Join(inv.StudentRefs(), ", "))
	fmt.Fprintf(&b, "Year: %s |\n", inv.Year)
	fmt.Fprintf(&b, "Session: %s |\n", inv.Session)
	fmt.Fprintf(&b, "Term: %s |\n", inv.Semester)
	fmt.Fprintf(&b, "Institute: %s |\n", inv.CourseRelation.Institute.Name)
	fmt.Fprintf(&b, "Course: %s |\n", inv.CourseRelation.Course.Name)
	if inv.DiscountMsg != "" {
		b.WriteString("Additional Note: " + inv.DiscountMsg)
	}
	return b.String()
}

// TransactionFor maps an invoice onto a ledger inflow dated now.
func (c *Client) TransactionFor(inv *models.Invoice) Transaction {
	return Transaction{
		TransactionType: TransactionInflow,
		TransactionDate: c.now().UTC().Format("2006-01-02T15:04:05.000Z"),
		InvoiceDate:     inv.CreatedAt,
		InvoiceNumber:   inv.Reference,
		Description:     Describe(inv),
		Amount:          inv.TotalAmount,
	}
}

// Export posts the invoice and returns the transaction that was sent.
func (c *Client) Export(ctx context.Context, inv *models.Invoice) (*Transaction, error) {
	if c.url == "" {
		return nil, fmt.Errorf("accounting url is not configured")
	}
	tx := c.TransactionFor(inv)

	jsonData, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-company-token", c.companyToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("failed to export invoice (status %d): %s", resp.StatusCode, string(body))
	}
	return &tx, nil
}
