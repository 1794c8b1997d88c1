package agencyapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-workers/internal/common/auth"
	"agency-workers/internal/common/errors"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/models"
)

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	body   string
}

// apiServer answers each path with a canned body and records every request.
func apiServer(t *testing.T, routes map[string]string) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
			body:   string(body),
		})
		resp, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"message":"no route"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)

	c := New(Options{
		BaseURL: srv.URL + "/",
		Tokens:  auth.StaticToken("secret"),
		Logger:  logger.NewTestLogger(t),
	})
	return c, &calls
}

func list(items string, totalPage, total int) string {
	b, _ := json.Marshal(map[string]interface{}{"totalPage": totalPage, "total": total})
	return `{"success":true,"message":"ok","data":{"result":` + items + `,"meta":` + string(b) + `}}`
}

func item(obj string) string {
	return `{"success":true,"message":"ok","data":` + obj + `}`
}

func TestListStudents_EncodesFilterAndReadsEnvelope(t *testing.T) {
	c, calls := apiServer(t, map[string]string{
		"GET /students": list(`[{"_id":"s1","firstName":"Ada","lastName":"Lovelace","collegeRoll":"CR1"}]`, 3, 21),
	})

	students, page, err := c.ListStudents(context.Background(), StudentFilter{
		PaymentStatus:     "due",
		ApplicationCourse: "cr1",
		Year:              "Year 1",
	})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Ada Lovelace", students[0].FullName())
	assert.Equal(t, 3, page.TotalPage)
	assert.Equal(t, 21, page.Total)

	require.Len(t, *calls, 1)
	got := (*calls)[0]
	assert.Equal(t, "Bearer secret", got.auth)
	assert.Contains(t, got.query, "paymentStatus=due")
	assert.Contains(t, got.query, "applicationCourse=cr1")
	assert.Contains(t, got.query, "year=Year+1")
	assert.Contains(t, got.query, "limit=10000")
	assert.NotContains(t, got.query, "session=")
}

func TestStudentFilter_ValuesOmitsEmpty(t *testing.T) {
	v := StudentFilter{AgentID: "a1", AgentPaymentStatus: "available"}.Values()
	assert.Equal(t, "agentPaymentStatus=available&agentid=a1", v.Encode())
}

func TestSchemaMismatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing data", `{"success":true}`},
		{"result not an array", `{"data":{"result":{"_id":"x"}}}`},
		{"item without id", list(`[{"firstName":"x"}]`, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := apiServer(t, map[string]string{"GET /students": tt.body})
			_, _, err := c.ListStudents(context.Background(), StudentFilter{})
			require.Error(t, err)
			assert.Equal(t, string(errors.ErrCodeResponseSchemaMismatch), errors.Code(err))
		})
	}
}

func TestErrorStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/invoice/broken":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"success":false,"message":"boom"}`))
		case "/invoice/denied":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	c := New(Options{BaseURL: srv.URL})

	_, err := c.GetInvoice(context.Background(), "broken")
	require.Error(t, err)
	assert.Equal(t, string(errors.ErrCodeAPIRequestFailed), errors.Code(err))
	assert.Contains(t, err.Error(), "boom")

	_, err = c.GetInvoice(context.Background(), "denied")
	assert.Equal(t, string(errors.ErrCodeAuthenticationFailed), errors.Code(err))

	_, err = c.GetInvoice(context.Background(), "missing")
	assert.True(t, IsNotFound(err))
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	_, err := c.GetStudent(context.Background(), "s1")
	require.Error(t, err)
	assert.Equal(t, string(errors.ErrCodeAPITimeout), errors.Code(err))
}

func TestGetAgentCourse(t *testing.T) {
	c, calls := apiServer(t, map[string]string{
		"GET /agent-courses": list(`[{"_id":"ac1","agentId":"a1","courseRelationId":{"_id":"cr1"},"year":[{"sessionName":"Session 1","rate":10,"type":"percentage"}]}]`, 1, 1),
	})

	ac, err := c.GetAgentCourse(context.Background(), "a1", "cr1")
	require.NoError(t, err)
	assert.Equal(t, "a1", ac.AgentID.ID)
	s, ok := ac.FindSession("Session 1")
	require.True(t, ok)
	assert.Equal(t, models.RatePercentage, s.Type)
	assert.Contains(t, (*calls)[0].query, "agentId=a1")
	assert.Contains(t, (*calls)[0].query, "courseRelationId=cr1")
}

func TestGetAgentCourse_EmptyIsNotFound(t *testing.T) {
	c, _ := apiServer(t, map[string]string{"GET /agent-courses": list(`[]`, 0, 0)})
	_, err := c.GetAgentCourse(context.Background(), "a1", "cr1")
	assert.True(t, IsNotFound(err))
}

func TestListAgentsAndCustomers(t *testing.T) {
	c, calls := apiServer(t, map[string]string{
		"GET /users":    list(`[{"_id":"a1","name":"Agent Smith"}]`, 1, 1),
		"GET /customer": list(`[{"_id":"c1","name":"Uni"}]`, 1, 1),
		"GET /bank":     list(`[{"_id":"b1","name":"Bank"}]`, 1, 1),
	})
	agents, err := c.ListAgents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Agent Smith", agents[0].Name)
	assert.Contains(t, (*calls)[0].query, "role=agent")
	assert.Contains(t, (*calls)[0].query, "fields=name")

	customers, err := c.ListCustomers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "c1", customers[0].ID)

	banks, err := c.ListBanks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b1", banks[0].ID)
}

func TestInvoiceLifecycle(t *testing.T) {
	c, calls := apiServer(t, map[string]string{
		"POST /invoice":       item(`{"_id":"inv1","reference":"INV-0001","customer":"c1"}`),
		"GET /invoice/inv1":   item(`{"_id":"inv1","reference":"INV-0001","status":"due","customer":{"_id":"c1","name":"Uni"},"createdBy":"u1","totalAmount":"390","students":[]}`),
		"PATCH /invoice/inv1": item(`{}`),
		"GET /invoice":        list(`[{"_id":"inv1","status":"paid","totalAmount":390}]`, 2, 11),
	})
	ctx := context.Background()

	created, err := c.CreateInvoice(ctx, &models.InvoiceDraft{Customer: "c1", TotalAmount: models.AmountFromInt(390)})
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", created.Reference)
	assert.Contains(t, (*calls)[0].body, `"totalAmount":390`)

	inv, err := c.GetInvoice(ctx, "inv1")
	require.NoError(t, err)
	assert.Equal(t, "Uni", inv.Customer.Name)
	assert.Equal(t, "u1", inv.CreatedBy.ID)
	assert.Equal(t, "390", inv.TotalAmount.String())

	require.NoError(t, c.UpdateInvoice(ctx, "inv1", map[string]interface{}{"status": "paid"}))
	assert.Equal(t, http.MethodPatch, (*calls)[2].method)
	assert.JSONEq(t, `{"status":"paid"}`, (*calls)[2].body)

	invoices, page, err := c.ListInvoices(ctx, models.InvoiceFilter{Page: 2, Limit: 10, Status: "paid"})
	require.NoError(t, err)
	assert.Len(t, invoices, 1)
	assert.Equal(t, Page{Page: 2, Limit: 10, TotalPage: 2, Total: 11}, page)
	assert.Contains(t, (*calls)[3].query, "status=paid")
	assert.Contains(t, (*calls)[3].query, "page=2")
}

func TestRemitCalls(t *testing.T) {
	c, calls := apiServer(t, map[string]string{
		"POST /remit-invoice":     item(`{"_id":"r1","reference":"REM-1"}`),
		"GET /remit-invoice/r1":   item(`{"_id":"r1","status":"due","remitTo":{"_id":"a1","name":"Agent"},"totalAmount":40}`),
		"PATCH /remit-invoice/r1": item(`{}`),
	})
	ctx := context.Background()

	created, err := c.CreateRemit(ctx, &models.RemitDraft{RemitTo: "a1"})
	require.NoError(t, err)
	assert.Equal(t, "r1", created.ID)

	r, err := c.GetRemit(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Agent", r.RemitTo.Name)

	require.NoError(t, c.UpdateRemit(ctx, "r1", map[string]interface{}{"status": "paid"}))
	assert.Len(t, *calls, 3)
}

func TestRollUploadCalls(t *testing.T) {
	c, calls := apiServer(t, map[string]string{
		"POST /csv":      item(`{"_id":"u1","studentData":[{"tempId":"t1","studentId":"s1"},{"tempId":"t2","studentId":null}]}`),
		"GET /csv":       list(`[{"_id":"u1","studentData":[{"tempId":"t1","studentId":{"_id":"s1","firstName":"Ada"}}]}]`, 1, 1),
		"PATCH /csv/u1":  item(`{}`),
		"DELETE /csv/u1": item(`{}`),
	})
	ctx := context.Background()

	rows := []models.RollRow{
		{TempID: "t1", RegNo: "R1", Name: "Ada", Phone: "1", StudentID: models.StudentRef{ID: "s1"}},
		{TempID: "t2", RegNo: "R2", Name: "Bob", Phone: "2"},
	}
	up, err := c.CreateRollUpload(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, "u1", up.ID)

	var sent struct {
		StudentData []map[string]interface{} `json:"studentData"`
	}
	require.NoError(t, json.Unmarshal([]byte((*calls)[0].body), &sent))
	require.Len(t, sent.StudentData, 2)
	assert.Equal(t, "s1", sent.StudentData[0]["studentId"])
	_, has := sent.StudentData[1]["studentId"]
	assert.False(t, has)

	active, err := c.GetActiveRollUpload(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	row, _, ok := active.Row("t1")
	require.True(t, ok)
	assert.Equal(t, "Ada", row.StudentID.Student.FirstName)

	require.NoError(t, c.RemoveRollRow(ctx, "u1", "t1"))
	assert.JSONEq(t, `{"tempId":"t1"}`, (*calls)[2].body)
	require.NoError(t, c.DeleteRollUpload(ctx, "u1"))
	assert.Equal(t, http.MethodDelete, (*calls)[3].method)
}

func TestGetActiveRollUpload_None(t *testing.T) {
	c, _ := apiServer(t, map[string]string{"GET /csv": list(`[]`, 0, 0)})
	up, err := c.GetActiveRollUpload(context.Background())
	require.NoError(t, err)
	assert.Nil(t, up)
}

func referenceRoutes() map[string]string {
	return map[string]string{
		"GET /institutions":   list(`[{"_id":"i1","name":"Uni","status":1}]`, 1, 1),
		"GET /terms":          list(`[{"_id":"t1","term":"Autumn"}]`, 1, 1),
		"GET /courses":        list(`[{"_id":"c1","name":"BSc"}]`, 1, 1),
		"GET /academic-years": list(`[{"id":"y1","academic_year":"2024/25"}]`, 1, 1),
	}
}

func TestLoadReferenceData_UsesCache(t *testing.T) {
	var hits int32
	routes := referenceRoutes()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "1", r.URL.Query().Get("status"))
		assert.Equal(t, "all", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(routes["GET "+r.URL.Path]))
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	c := New(Options{BaseURL: srv.URL})
	cache := NewCache(rdb, time.Minute, logger.NewTestLogger(t))

	data, err := c.LoadReferenceData(context.Background(), cache)
	require.NoError(t, err)
	assert.Equal(t, "Uni", data.Institutes[0].Name)
	assert.Equal(t, "Autumn", data.Terms[0].Term)
	assert.Equal(t, "BSc", data.Courses[0].Name)
	assert.Equal(t, "2024/25", data.AcademicYears[0].AcademicYear)
	assert.EqualValues(t, 4, atomic.LoadInt32(&hits))
	assert.True(t, mr.Exists("ref:terms"))
	assert.Equal(t, time.Minute, mr.TTL("ref:terms"))

	again, err := c.LoadReferenceData(context.Background(), cache)
	require.NoError(t, err)
	assert.Equal(t, data, again)
	assert.EqualValues(t, 4, atomic.LoadInt32(&hits))

	require.NoError(t, cache.Invalidate(context.Background(), ResourceTerms))
	assert.False(t, mr.Exists("ref:terms"))
}

func TestLoadReferenceData_FirstErrorWins(t *testing.T) {
	routes := referenceRoutes()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/terms") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(routes["GET "+r.URL.Path]))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	data, err := c.LoadReferenceData(context.Background(), nil)
	assert.Nil(t, data)
	require.Error(t, err)
	assert.Equal(t, string(errors.ErrCodeAPIRequestFailed), errors.Code(err))
}

func TestCache_RedisFailureIsAMiss(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("ref:courses").SetErr(assert.AnError)
	mock.ExpectSet("ref:courses", []byte(`[{"_id":"c1","name":"BSc"}]`), time.Minute).SetErr(assert.AnError)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(referenceRoutes()["GET /courses"]))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	cache := NewCache(rdb, time.Minute, logger.NewTestLogger(t))

	items, err := fetchActive[models.Course](context.Background(), c, cache, ResourceCourses, namedListSchema)
	require.NoError(t, err)
	assert.Equal(t, "BSc", items[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
