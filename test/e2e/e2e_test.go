// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-workers/internal/agencyapi"
	"agency-workers/internal/common/auth"
	"agency-workers/internal/common/camunda"
	"agency-workers/internal/common/config"
	"agency-workers/internal/common/database"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/directory"
	"agency-workers/internal/models"
	"agency-workers/internal/reconciliation"
	"agency-workers/internal/rollimport"

	markinvoicepaid "agency-workers/internal/workers/invoicing/mark-invoice-paid"
)

// The suite talks to real Zeebe, PostgreSQL, Redis and Elasticsearch
// instances and only runs with AGENCY_E2E=1.

var zeebeClient zbc.Client

func TestMain(m *testing.M) {
	if os.Getenv("AGENCY_E2E") != "1" {
		fmt.Println("AGENCY_E2E not set, skipping e2e suite")
		os.Exit(0)
	}

	var err error
	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         envOr("ZEEBE_ADDRESS", "localhost:26500"),
		UsePlaintextConnection: true,
	})
	if err != nil {
		panic(fmt.Sprintf("❌ Failed to connect to Zeebe: %v", err))
	}

	code := m.Run()

	zeebeClient.Close()
	os.Exit(code)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func e2eConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Camunda.BrokerAddress = envOr("ZEEBE_ADDRESS", "localhost:26500")
	cfg.Camunda.MaxJobsActive = 5
	cfg.Camunda.Timeout = 30000
	cfg.Database.Postgres = config.PostgresConfig{
		Host:     envOr("DB_HOST", "localhost"),
		Port:     5432,
		Database: envOr("DB_NAME", "agency_workers"),
		User:     envOr("DB_USER", "postgres"),
		Password: envOr("DB_PASSWORD", "postgres"),
		SSLMode:  "disable",
	}
	cfg.Database.Redis.Address = envOr("REDIS_ADDRESS", "localhost:6379")
	cfg.Database.Elasticsearch.Addresses = []string{envOr("ES_ADDRESS", "http://localhost:9200")}
	cfg.Database.Elasticsearch.StudentIndex = "students-e2e-" + uuid.NewString()[:8]
	cfg.Workers = map[string]config.WorkerConfig{
		markinvoicepaid.TaskType: {Enabled: true, MaxJobsActive: 1, Timeout: 10000},
	}
	return cfg
}

func TestFullE2E(t *testing.T) {
	cfg := e2eConfig()

	t.Log("🚀 Starting E2E suite with real services...")

	t.Run("connectivity", func(t *testing.T) { assertAllServicesConnectivity(t, cfg) })
	t.Run("totals audit", func(t *testing.T) { testTotalsAudit(t, cfg) })
	t.Run("upload lock", func(t *testing.T) { testUploadLock(t, cfg) })
	t.Run("student directory", func(t *testing.T) { testStudentDirectory(t, cfg) })
	t.Run("mark invoice paid through zeebe", func(t *testing.T) { testMarkInvoicePaidProcess(t, cfg) })

	t.Log("✅ E2E suite finished")
}

func assertAllServicesConnectivity(t *testing.T, cfg *config.Config) {
	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "❌ PostgreSQL connection failed")
	assert.NoError(t, pg.Ping(ctx), "❌ PostgreSQL ping failed")
	pg.Close()
	t.Log("✅ PostgreSQL connected")

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "❌ Redis client creation failed")
	assert.NoError(t, rdb.Ping(ctx), "❌ Redis ping failed")
	rdb.Close()
	t.Log("✅ Redis connected")

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err, "❌ Elasticsearch client creation failed")
	assert.NoError(t, es.Ping(ctx), "❌ Elasticsearch ping failed")
	t.Log("✅ Elasticsearch connected")

	_, err = zeebeClient.NewTopologyCommand().Send(ctx)
	assert.NoError(t, err, "❌ Zeebe topology request failed")
	t.Log("✅ Zeebe connected")
}

func testTotalsAudit(t *testing.T, cfg *config.Config) {
	ctx := context.Background()
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer pg.Close()
	require.NoError(t, pg.Migrate(ctx))

	store := reconciliation.NewStore(pg.DB, logger.NewTestLogger(t))
	docID := "e2e-" + uuid.NewString()

	_, err = store.Record(ctx, reconciliation.Entry{
		Kind:       reconciliation.KindInvoice,
		DocumentID: docID,
		Reference:  "INV-E2E",
		Stage:      reconciliation.StageGenerated,
		Subtotal:   decimal.NewFromInt(300),
		Deduction:  decimal.NewFromInt(50),
		VATAmount:  decimal.NewFromInt(30),
		Total:      decimal.NewFromInt(280),
		RecordedBy: "e2e",
	})
	require.NoError(t, err)

	rendered, err := store.Record(ctx, reconciliation.Entry{
		Kind:       reconciliation.KindInvoice,
		DocumentID: docID,
		Reference:  "INV-E2E",
		Stage:      reconciliation.StageRendered,
		Subtotal:   decimal.NewFromInt(300),
		Deduction:  decimal.NewFromInt(50),
		VATAmount:  decimal.NewFromInt(30),
		Total:      decimal.NewFromInt(280),
	}.WithStored(decimal.NewFromInt(300)))
	require.NoError(t, err)
	assert.Equal(t, "-20.00", rendered.Drift.StringFixed(2))

	history, err := store.History(ctx, reconciliation.KindInvoice, docID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, reconciliation.StageGenerated, history[0].Stage)
	assert.Nil(t, history[0].StoredTotal)
	assert.Equal(t, "e2e", history[0].RecordedBy)
	require.NotNil(t, history[1].StoredTotal)
	assert.Equal(t, "300.00", history[1].StoredTotal.StringFixed(2))
	t.Log("✅ Totals audit round trip")
}

func testUploadLock(t *testing.T, cfg *config.Config) {
	ctx := context.Background()
	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdb.Close()

	key := "roll-upload:e2e:" + uuid.NewString()
	unlock, err := rdb.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)

	_, err = rdb.Lock(ctx, key, 5*time.Second)
	assert.ErrorIs(t, err, database.ErrLocked)

	require.NoError(t, unlock(ctx))
	unlock2, err := rdb.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
	t.Log("✅ Upload lock acquired, contended and released")
}

func testStudentDirectory(t *testing.T, cfg *config.Config) {
	ctx := context.Background()
	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err)
	index := cfg.Database.Elasticsearch.StudentIndex
	t.Cleanup(func() {
		res, err := esapi.IndicesDeleteRequest{Index: []string{index}}.Do(context.Background(), es.Client)
		if err == nil {
			res.Body.Close()
		}
	})

	dir := directory.New(es.Client, index, nil, logger.NewTestLogger(t))
	require.NoError(t, dir.Index(ctx, models.Student{ID: "st1", FirstName: "Ada", Phone: "07700 900001", Email: "Ada@Example.com"}))
	require.NoError(t, dir.Index(ctx, models.Student{ID: "st2", FirstName: "Bob", Phone: "07700900002"}))

	res, err := esapi.IndicesRefreshRequest{Index: []string{index}}.Do(ctx, es.Client)
	require.NoError(t, err)
	res.Body.Close()

	records, err := rollimport.ParseCSV(strings.NewReader(
		"Reg No,Name,Mobile,Email\n" +
			"R1,Ada,07700900001,\n" +
			"R2,Bob,,\n" +
			"R3,Cat,07700900009,ada@example.com\n" +
			"R4,Dan,07700900004,\n"))
	require.NoError(t, err)

	lookup, err := dir.Resolve(ctx, records)
	require.NoError(t, err)
	rows := rollimport.Classify(records, lookup)
	require.Len(t, rows, 4)

	id, ok := lookup(records[0])
	assert.True(t, ok)
	assert.Equal(t, "st1", id)
	_, ok = lookup(records[3])
	assert.False(t, ok)
	t.Logf("✅ Directory resolved rows: %v", rollimport.Summary(rows))
}

const markPaidProcess = `<?xml version="1.0" encoding="UTF-8"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL" xmlns:zeebe="http://camunda.org/schema/zeebe/1.0" id="defs-mark-paid-e2e" targetNamespace="http://bpmn.io/schema/bpmn">
  <bpmn:process id="mark-invoice-paid-e2e" isExecutable="true">
    <bpmn:startEvent id="start"><bpmn:outgoing>f1</bpmn:outgoing></bpmn:startEvent>
    <bpmn:serviceTask id="mark-paid" name="Mark invoice paid">
      <bpmn:extensionElements><zeebe:taskDefinition type="mark-invoice-paid" /></bpmn:extensionElements>
      <bpmn:incoming>f1</bpmn:incoming><bpmn:outgoing>f2</bpmn:outgoing>
    </bpmn:serviceTask>
    <bpmn:endEvent id="end"><bpmn:incoming>f2</bpmn:incoming></bpmn:endEvent>
    <bpmn:sequenceFlow id="f1" sourceRef="start" targetRef="mark-paid" />
    <bpmn:sequenceFlow id="f2" sourceRef="mark-paid" targetRef="end" />
  </bpmn:process>
</bpmn:definitions>`

func testMarkInvoicePaidProcess(t *testing.T, cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var mu sync.Mutex
	var patched map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method + " " + r.URL.Path {
		case "GET /invoice/inv-e2e":
			_, _ = w.Write([]byte(`{"data":{"_id":"inv-e2e","reference":"INV-E2E","status":"due","customer":{"_id":"c1","name":"Uni"},"totalAmount":"280","students":[]}}`))
		case "PATCH /invoice/inv-e2e":
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			_ = json.Unmarshal(body, &patched)
			mu.Unlock()
			_, _ = w.Write([]byte(`{"data":{}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"message":"no route"}`))
		}
	}))
	defer srv.Close()

	log := logger.NewTestLogger(t)
	api := agencyapi.New(agencyapi.Options{BaseURL: srv.URL, Tokens: auth.StaticToken("e2e"), Logger: log})

	workers := camunda.NewWorkers(zeebeClient, log)
	h := markinvoicepaid.NewHandler(markinvoicepaid.LoadConfig(cfg), api, log)
	workers.Start(markinvoicepaid.TaskType, cfg.GetWorkerConfig(markinvoicepaid.TaskType), h.Handle)
	defer workers.Stop()

	_, err := zeebeClient.NewDeployResourceCommand().
		AddResource([]byte(markPaidProcess), "mark-invoice-paid-e2e.bpmn").
		Send(ctx)
	require.NoError(t, err, "❌ Deploy failed")

	cmd, err := zeebeClient.NewCreateInstanceCommand().
		BPMNProcessId("mark-invoice-paid-e2e").
		LatestVersion().
		VariablesFromMap(map[string]interface{}{
			"session":   map[string]interface{}{"userId": "u1", "role": "staff", "privileges": []string{models.PrivilegeInvoiceUpdate}},
			"invoiceId": "inv-e2e",
		})
	require.NoError(t, err)

	res, err := cmd.WithResult().Send(ctx)
	require.NoError(t, err, "❌ Process did not complete")

	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(res.GetVariables()), &vars))
	assert.Equal(t, "INV-E2E", vars["invoiceReference"])
	assert.Equal(t, models.StatusPaid, vars["invoiceStatus"])

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, models.StatusPaid, patched["status"])
	t.Log("✅ mark-invoice-paid completed through Zeebe")
}
