package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/config"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	customerrepo "github.com/smallbiznis/faktura/internal/customer/repository"
	customerservice "github.com/smallbiznis/faktura/internal/customer/service"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/faktura/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/faktura/internal/invoice/service"
	"github.com/smallbiznis/faktura/internal/providers/email"
	"github.com/smallbiznis/faktura/internal/providers/pdf"
	reminderdomain "github.com/smallbiznis/faktura/internal/reminder/domain"
	reminderrepo "github.com/smallbiznis/faktura/internal/reminder/repository"
	reminderservice "github.com/smallbiznis/faktura/internal/reminder/service"
	"github.com/smallbiznis/faktura/internal/scheduler"
	"github.com/smallbiznis/faktura/internal/server"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	clock   *clock.FakeClock
	sched   *scheduler.Scheduler
	httpSrv *httptest.Server
	orgID   snowflake.ID
}

func startEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&reminderdomain.ReminderSettings{},
	))

	node, err := snowflake.NewNode(9)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	orgID := node.Generate()

	log := zap.NewNop()
	notifier := &email.NoOpProvider{}
	renderer := &pdf.NoOpRenderer{}

	customerSvc := customerservice.New(customerservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fakeClock,
		Repo:  customerrepo.Provide(),
	})
	invoiceSvc := invoiceservice.New(invoiceservice.Params{
		DB:           db,
		Log:          log,
		GenID:        node,
		Clock:        fakeClock,
		Repo:         invoicerepo.Provide(),
		CustomerRepo: customerrepo.Provide(),
		Email:        notifier,
		PDF:          renderer,
	})
	reminderSvc := reminderservice.New(reminderservice.Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       fakeClock,
		Repo:        reminderrepo.Provide(),
		InvoiceRepo: invoicerepo.Provide(),
		Email:       notifier,
		PDF:         renderer,
	})

	sched, err := scheduler.New(scheduler.Params{
		DB:          db,
		Log:         log,
		InvoiceSvc:  invoiceSvc,
		ReminderSvc: reminderSvc,
		Clock:       fakeClock,
	})
	require.NoError(t, err)

	srv := server.NewServer(server.ServerParams{
		Gin:         server.NewEngine(log),
		Cfg:         config.Config{DefaultOrgID: int64(orgID)},
		DB:          db,
		CustomerSvc: customerSvc,
		InvoiceSvc:  invoiceSvc,
		ReminderSvc: reminderSvc,
	})

	httpSrv := httptest.NewServer(srv.Engine())
	t.Cleanup(httpSrv.Close)

	return &testEnv{
		db:      db,
		clock:   fakeClock,
		sched:   sched,
		httpSrv: httpSrv,
		orgID:   orgID,
	}
}

func (env *testEnv) doJSON(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, env.httpSrv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Org-ID", strconv.FormatInt(int64(env.orgID), 10))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp.StatusCode, decoded
}

func dataField(t *testing.T, payload map[string]any, key string) any {
	t.Helper()
	data, ok := payload["data"].(map[string]any)
	require.True(t, ok, "payload %v has no data object", payload)
	return data[key]
}

func TestE2E_HealthCheck(t *testing.T) {
	env := startEnv(t)

	resp, err := http.Get(env.httpSrv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestE2E_InvoiceLifecycle(t *testing.T) {
	env := startEnv(t)

	status, body := env.doJSON(t, http.MethodPost, "/api/customers", map[string]any{
		"name":  "Acme Corp",
		"email": "billing@acme.test",
	})
	require.Equal(t, http.StatusCreated, status, "body: %v", body)
	customerID, _ := dataField(t, body, "id").(string)
	require.NotEmpty(t, customerID)

	status, body = env.doJSON(t, http.MethodPost, "/api/invoices", map[string]any{
		"customer_id":      customerID,
		"discount_percent": "10",
		"tax_rate":         "20",
		"items": []map[string]any{
			{"description": "Design", "quantity": "2", "unit_price": "10.00"},
			{"description": "Hosting", "quantity": "1", "unit_price": "5.00"},
		},
	})
	require.Equal(t, http.StatusCreated, status, "body: %v", body)
	invoiceID, _ := dataField(t, body, "id").(string)
	require.NotEmpty(t, invoiceID)
	require.Equal(t, "DRAFT", dataField(t, body, "status"))
	require.Equal(t, "27", fmt.Sprint(dataField(t, body, "total")))

	status, body = env.doJSON(t, http.MethodPost, "/api/invoices/"+invoiceID+"/send", nil)
	require.Equal(t, http.StatusOK, status, "body: %v", body)
	require.Equal(t, "SENT", dataField(t, body, "status"))

	// Sending twice conflicts.
	status, _ = env.doJSON(t, http.MethodPost, "/api/invoices/"+invoiceID+"/send", nil)
	require.Equal(t, http.StatusConflict, status)

	status, body = env.doJSON(t, http.MethodPost, "/api/invoices/"+invoiceID+"/pay", nil)
	require.Equal(t, http.StatusOK, status, "body: %v", body)
	require.Equal(t, "PAID", dataField(t, body, "status"))
}

func TestE2E_OverdueAndReminderSweep(t *testing.T) {
	env := startEnv(t)

	status, body := env.doJSON(t, http.MethodPost, "/api/customers", map[string]any{
		"name":  "Acme Corp",
		"email": "billing@acme.test",
	})
	require.Equal(t, http.StatusCreated, status)
	customerID, _ := dataField(t, body, "id").(string)

	status, body = env.doJSON(t, http.MethodPost, "/api/invoices", map[string]any{
		"customer_id": customerID,
		"due_date":    env.clock.Now().AddDate(0, 0, 7).Format(time.RFC3339),
		"items": []map[string]any{
			{"description": "Consulting", "quantity": "1", "unit_price": "100.00"},
		},
	})
	require.Equal(t, http.StatusCreated, status, "body: %v", body)
	invoiceID, _ := dataField(t, body, "id").(string)

	status, _ = env.doJSON(t, http.MethodPost, "/api/invoices/"+invoiceID+"/send", nil)
	require.Equal(t, http.StatusOK, status)

	// Past due plus past the first reminder threshold.
	env.clock.Advance(11 * 24 * time.Hour)
	require.NoError(t, env.sched.RunOnce(t.Context()))

	var invoice invoicedomain.Invoice
	require.NoError(t, env.db.First(&invoice, "id = ?", invoiceID).Error)
	require.Equal(t, invoicedomain.InvoiceStatusReminderSent, invoice.Status)
	require.Equal(t, 1, invoice.RemindersSent())

	status, body = env.doJSON(t, http.MethodGet, "/api/reminders/settings", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, dataField(t, body, "last_run"))
}
