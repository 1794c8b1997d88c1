package accounting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-workers/internal/models"
)

func testInvoice() *models.Invoice {
	return &models.Invoice{
		ID:        "inv1",
		Reference: "INV-0042",
		Year:      "Year 1",
		Session:   "Session 2",
		Semester:  "Autumn",
		CourseRelation: models.CourseRelationRef{
			ID:        "cr1",
			Institute: models.Ref{ID: "i1", Name: "North College"},
			Course:    models.Ref{ID: "c1", Name: "BSc Computing"},
		},
		Students: []models.InvoiceLine{
			{RefID: "STU-1"},
			{RefID: "STU-2"},
		},
		TotalAmount: models.AmountFromInt(390),
		CreatedAt:   "2024-09-01T10:00:00.000Z",
	}
}

func TestDescribe(t *testing.T) {
	inv := testInvoice()
	want := "Students: STU-1, STU-2 |\n" +
		"Year: Year 1 |\n" +
		"Session: Session 2 |\n" +
		"Term: Autumn |\n" +
		"Institute: North College |\n" +
		"Course: BSc Computing |\n"
	assert.Equal(t, want, Describe(inv))

	inv.DiscountMsg = "Early payment"
	assert.Equal(t, want+"Additional Note: Early payment", Describe(inv))
}

func TestExport(t *testing.T) {
	var got map[string]interface{}
	var token string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = r.Header.Get("x-company-token")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "company-1", time.Second)
	c.now = func() time.Time { return time.Date(2024, 10, 2, 8, 30, 0, 0, time.UTC) }

	tx, err := c.Export(context.Background(), testInvoice())
	require.NoError(t, err)
	assert.Equal(t, "company-1", token)
	assert.Equal(t, "inflow", got["transactionType"])
	assert.Equal(t, "2024-10-02T08:30:00.000Z", got["transactionDate"])
	assert.Equal(t, "2024-09-01T10:00:00.000Z", got["invoiceDate"])
	assert.Equal(t, "INV-0042", got["invoiceNumber"])
	assert.Equal(t, float64(390), got["amount"])
	assert.Equal(t, tx.Description, got["description"])
}

func TestExport_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("bad token"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "x", time.Second).Export(context.Background(), testInvoice())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "bad token")

	_, err = NewClient("", "x", 0).Export(context.Background(), testInvoice())
	assert.Error(t, err)
}
