package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaguard/internal/platform/config"
	"pharmaguard/internal/platform/logger"
	"pharmaguard/internal/verification/handler"
	"pharmaguard/pkg/platform/audit"
	"pharmaguard/pkg/testutil"
)

const contract = "0xfeedbeef"

// upstream fakes the openFDA NDC directory and the ledger gateway.
func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /drug/ndc.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"brand_name":"Ibuprofen","labeler_name":"Pfizer Laboratories","product_ndc":"68180-518"}]}`))
	})
	mux.HandleFunc("GET /contracts/"+contract, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("POST /contracts/"+contract+"/verify_authenticity", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"authenticated":true,"proof":{"block":42}}`))
	})
	mux.HandleFunc("POST /contracts/"+contract+"/register_batch", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"transactionId":"0xtx1"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(url string) config.Config {
	cfg := config.Default()
	cfg.Registry.URL = url
	cfg.Ledger.GatewayURL = url
	cfg.Ledger.ContractAddress = contract
	cfg.Auth.JWTSigningKey = "app-test-key"
	cfg.RateLimit.PerMinute = 100
	return cfg
}

func TestApp_EndToEnd(t *testing.T) {
	srv := upstream(t)
	ctx := context.Background()

	a, err := New(ctx, testConfig(srv.URL), WithLogger(logger.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	rr := testutil.DoRequest(a.Router, testutil.NewRequest(t, http.MethodGet, "/readyz"))
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)

	state := a.Init(ctx)
	require.True(t, state.Ready())
	require.True(t, state.LedgerConnected)

	rr = testutil.DoRequest(a.Router, testutil.NewRequest(t, http.MethodGet, "/readyz"))
	testutil.AssertStatusOK(t, rr)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/verify", handler.VerifyRequest{Identifier: "68180-518-01"})
	rr = testutil.DoRequest(a.Router, req)
	testutil.AssertStatusOK(t, rr)
	report := testutil.UnmarshalResponse[handler.ReportResponse](t, rr)
	assert.Equal(t, "SAFE", report.Verdict)
	assert.InDelta(t, 0.935, report.OverallScore, 1e-9)
	assert.False(t, report.Degraded)

	tok, err := a.Tokens.GenerateToken("Pfizer Laboratories", "manufacturer", time.Hour)
	require.NoError(t, err)
	req = testutil.NewJSONRequest(t, http.MethodPost, "/v1/batches", handler.RegisterBatchRequest{
		BatchID:           "PFIZER_2025_0042",
		DrugName:          "Ibuprofen",
		Manufacturer:      "Pfizer Laboratories",
		NDCCode:           "68180-518-01",
		ManufacturingDate: "2025-01-15",
		ExpiryDate:        "2027-01-15",
	})
	req.Header.Set("Authorization", "Bearer "+tok)
	rr = testutil.DoRequest(a.Router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	testutil.AssertJSONContains(t, rr, "transaction_id", "0xtx1")

	registered, err := a.AuditStore.ListByAction(ctx, audit.EventBatchRegistered)
	require.NoError(t, err)
	assert.Len(t, registered, 1)
}

func TestApp_DegradedWithoutContract(t *testing.T) {
	srv := upstream(t)
	cfg := testConfig(srv.URL)
	cfg.Ledger.ContractAddress = ""
	cfg.Auth.JWTSigningKey = ""

	a, err := New(context.Background(), cfg, WithLogger(logger.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	state := a.Init(context.Background())
	assert.True(t, state.Ready())
	assert.True(t, state.Degraded())
	assert.Nil(t, a.Tokens)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/batches", handler.RegisterBatchRequest{BatchID: "X"})
	rr := testutil.DoRequest(a.Router, req)
	assert.Equal(t, http.StatusNotFound, rr.Code, "batch endpoint is not mounted without a signing key")
}

func TestApp_RedisUnreachable(t *testing.T) {
	cfg := config.Default()
	cfg.Redis.URL = "redis://127.0.0.1:1/0"
	cfg.Redis.DialTimeout = 100 * time.Millisecond

	_, err := New(context.Background(), cfg, WithLogger(logger.Discard()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect redis")
}

func TestApp_RegistryCache(t *testing.T) {
	var lookups atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /drug/ndc.json", func(w http.ResponseWriter, _ *http.Request) {
		lookups.Add(1)
		_, _ = w.Write([]byte(`{"results":[{"brand_name":"Ibuprofen","labeler_name":"Pfizer Laboratories","product_ndc":"68180-518"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.Ledger.ContractAddress = ""
	cfg.Registry.CacheTTL = time.Minute

	a, err := New(context.Background(), cfg, WithLogger(logger.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	a.Init(context.Background())

	for range 3 {
		report, err := a.Service.Verify(context.Background(), "68180-518-01")
		require.NoError(t, err)
		assert.Equal(t, "primary", string(report.Registry().Source))
	}
	assert.Equal(t, int32(1), lookups.Load())
}
