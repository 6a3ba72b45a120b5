package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/storefront/backend/internal/application/conversion"
	"github.com/storefront/backend/internal/domain/affiliate"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

type testEnv struct {
	engine *gin.Engine
	db     *gorm.DB
	dedup  *cache.InMemoryIdempotencyStore
}

// setupTestEnv wires the full HTTP stack over an in-memory database
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.AffiliateModel{},
		&models.AffiliateClickModel{},
		&models.OrderModel{},
	))

	logger := zap.NewNop()
	affiliates := persistence.NewGormAffiliateRepository(db)
	clicks := persistence.NewGormClickRepository(db)
	orders := persistence.NewGormOrderRepository(db)
	ledger := persistence.NewGormCommissionLedger(db)

	service := conversion.NewConversionService(orders, affiliates, clicks, ledger, logger)
	recorder := conversion.NewClickRecorder(affiliates, clicks, logger)
	dedup := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = dedup.Close() })

	engine := gin.New()
	engine.Use(middleware.RequestID())

	router.NewRouter(engine).
		Register(NewClickHandler(recorder)).
		Register(NewOrderHandler(service)).
		Register(NewWebhookHandler(service, dedup, 0, logger)).
		Register(NewAffiliateHandler(affiliates, clicks, nil)).
		Setup()

	return &testEnv{engine: engine, db: db, dedup: dedup}
}

func (e *testEnv) request(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	e.engine.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func (e *testEnv) seedActiveAffiliate(t *testing.T, code string, rate int64) string {
	t.Helper()
	a, err := affiliate.NewAffiliate("Erik", "erik@example.com", code, decimal.NewFromInt(rate))
	require.NoError(t, err)
	require.NoError(t, a.Activate())
	require.NoError(t, e.db.Create(models.AffiliateModelFromDomain(a)).Error)
	return a.ID.String()
}

func data(body map[string]any) map[string]any {
	d, _ := body["data"].(map[string]any)
	return d
}

// assertDecimal compares a JSON-decoded decimal field numerically, so exact
// string form does not matter
func assertDecimal(t *testing.T, expected string, actual any) {
	t.Helper()
	s, ok := actual.(string)
	require.True(t, ok, "expected decimal string, got %T", actual)
	got, err := decimal.NewFromString(s)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString(expected).Equal(got),
		"expected %s, got %s", expected, got)
}

func TestConversionFlow(t *testing.T) {
	env := setupTestEnv(t)
	env.seedActiveAffiliate(t, "ERIK-482", 15)

	// Record a click for the affiliate
	w, body := env.request(t, http.MethodPost, "/api/v1/affiliate/clicks",
		`{"code": "ERIK-482", "landing_page": "/products/widget"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	clickID := data(body)["click_id"].(string)
	require.NotEmpty(t, clickID)

	// Create an order that carries the click id
	orderPayload := fmt.Sprintf(
		`{"number": "SO-1001", "channel": "b2c", "subtotal": "1000", "total": "1100", "click_id": %q}`,
		clickID)
	w, body = env.request(t, http.MethodPost, "/api/v1/orders", orderPayload)
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := data(body)["id"].(string)

	// Settle the conversion
	w, body = env.request(t, http.MethodPost, "/api/v1/orders/"+orderID+"/conversion", "")
	require.Equal(t, http.StatusOK, w.Code)
	result := data(body)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "server", result["attribution_method"])
	assertDecimal(t, "150", result["commission_amount"])

	// Replays return the prior outcome instead of double crediting
	w, body = env.request(t, http.MethodPost, "/api/v1/orders/"+orderID+"/conversion", "")
	require.Equal(t, http.StatusOK, w.Code)
	result = data(body)
	assert.Equal(t, true, result["already_processed"])
	assertDecimal(t, "150", result["commission_amount"])

	// The order reflects the settlement
	w, body = env.request(t, http.MethodGet, "/api/v1/orders/"+orderID, "")
	require.Equal(t, http.StatusOK, w.Code)
	o := data(body)
	assert.Equal(t, true, o["conversion_processed"])
	assertDecimal(t, "150", o["affiliate_commission"])
}

func TestConversionFlow_NoAttribution(t *testing.T) {
	env := setupTestEnv(t)

	w, body := env.request(t, http.MethodPost, "/api/v1/orders",
		`{"number": "SO-2001", "channel": "b2b", "total": "500"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := data(body)["id"].(string)

	w, body = env.request(t, http.MethodPost, "/api/v1/orders/"+orderID+"/conversion", "")
	require.Equal(t, http.StatusOK, w.Code)
	result := data(body)
	assert.Equal(t, true, result["success"])
	assertDecimal(t, "0", result["commission_amount"])
	assert.Nil(t, result["affiliate_id"])
}

func TestRecordClick_UnknownCode(t *testing.T) {
	env := setupTestEnv(t)

	w, _ := env.request(t, http.MethodPost, "/api/v1/affiliate/clicks",
		`{"code": "GHOST-999"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordClick_MalformedCode(t *testing.T) {
	env := setupTestEnv(t)

	w, _ := env.request(t, http.MethodPost, "/api/v1/affiliate/clicks",
		`{"code": "not a code"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentWebhook(t *testing.T) {
	env := setupTestEnv(t)
	env.seedActiveAffiliate(t, "ERIK-482", 10)

	evt := `{
		"event_id": "evt_001",
		"transaction_id": "txn_abc",
		"order": {
			"number": "SO-3001",
			"channel": "b2c",
			"totalAmount": "200",
			"affiliate": {"code": "erik-482"}
		}
	}`

	// First delivery registers the recovered order and settles it
	w, body := env.request(t, http.MethodPost, "/api/v1/webhooks/payment", evt)
	require.Equal(t, http.StatusOK, w.Code)
	result := data(body)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "cookie", result["attribution_method"])
	assertDecimal(t, "20", result["commission_amount"])

	// Redelivery of the same event is acknowledged without reprocessing
	w, body = env.request(t, http.MethodPost, "/api/v1/webhooks/payment", evt)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "duplicate", data(body)["status"])

	// A different event for the same transaction hits the ledger guard
	evt2 := strings.Replace(evt, "evt_001", "evt_002", 1)
	w, body = env.request(t, http.MethodPost, "/api/v1/webhooks/payment", evt2)
	require.Equal(t, http.StatusOK, w.Code)
	result = data(body)
	assert.Equal(t, true, result["already_processed"])
}

func TestAffiliateAdmin(t *testing.T) {
	env := setupTestEnv(t)

	// Create starts pending
	w, body := env.request(t, http.MethodPost, "/api/v1/admin/affiliates",
		`{"name": "Maria", "email": "maria@example.com", "code": "MARIA-201", "commission_rate": "12.5"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	a := data(body)
	assert.Equal(t, "pending", a["status"])
	id := a["id"].(string)

	// Pending codes are invisible to the public lookup
	w, _ = env.request(t, http.MethodGet, "/api/v1/affiliate/affiliates/MARIA-201", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Activate, then the public lookup resolves
	w, body = env.request(t, http.MethodPost, "/api/v1/admin/affiliates/"+id+"/activate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "active", data(body)["status"])

	w, body = env.request(t, http.MethodGet, "/api/v1/affiliate/affiliates/MARIA-201", "")
	require.Equal(t, http.StatusOK, w.Code)
	public := data(body)
	assert.Equal(t, "MARIA-201", public["code"])
	assert.Equal(t, "Maria", public["name"])
	assert.NotContains(t, public, "balance")

	// Suspend hides it again
	w, _ = env.request(t, http.MethodPost, "/api/v1/admin/affiliates/"+id+"/suspend", "")
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = env.request(t, http.MethodGet, "/api/v1/affiliate/affiliates/MARIA-201", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Map a discount code
	w, body = env.request(t, http.MethodPut, "/api/v1/admin/affiliates/"+id+"/discount-code",
		`{"discount_code": "summer20"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SUMMER20", data(body)["discount_code"])

	// Listing includes it
	w, body = env.request(t, http.MethodGet, "/api/v1/admin/affiliates?page=1&page_size=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	meta, _ := body["meta"].(map[string]any)
	assert.Equal(t, float64(1), meta["total"])
}
