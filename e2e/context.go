package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"pharmaguard/internal/app"
	jwttoken "pharmaguard/internal/jwt_token"
	"pharmaguard/internal/platform/config"
	"pharmaguard/internal/platform/logger"
	"pharmaguard/pkg/platform/audit"
)

const (
	contractAddress = "0xe2e"
	signingKey      = "e2e-signing-key"
)

// TestContext holds per-scenario state: the fake upstreams, the running
// server and the last response.
type TestContext struct {
	upstream *httptest.Server
	server   *httptest.Server
	app      *app.App

	ledgerConfigured bool
	perMinute        int
	clientIP         string
	accessToken      string

	lastStatus  int
	lastHeaders http.Header
	lastBody    []byte
}

func newTestContext() *TestContext {
	return &TestContext{ledgerConfigured: true, perMinute: 100, clientIP: "203.0.113.10"}
}

// Start builds the app against the fake upstreams. initialize controls
// whether the engine runs Init before the first request.
func (tc *TestContext) Start(ctx context.Context, initialize bool) error {
	tc.upstream = httptest.NewServer(fakeUpstream())

	cfg := config.Default()
	cfg.Registry.URL = tc.upstream.URL
	cfg.Ledger.GatewayURL = tc.upstream.URL
	if tc.ledgerConfigured {
		cfg.Ledger.ContractAddress = contractAddress
	}
	cfg.Auth.JWTSigningKey = signingKey
	cfg.RateLimit.PerMinute = tc.perMinute
	cfg.Server.TrustProxy = true

	a, err := app.New(ctx, cfg, app.WithLogger(logger.Discard()))
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	tc.app = a
	if initialize {
		a.Init(ctx)
	}
	tc.server = httptest.NewServer(a.Router)
	return nil
}

// Stop tears down everything Start created.
func (tc *TestContext) Stop() {
	if tc.server != nil {
		tc.server.Close()
	}
	if tc.app != nil {
		_ = tc.app.Close()
	}
	if tc.upstream != nil {
		tc.upstream.Close()
	}
}

func (tc *TestContext) SetLedgerConfigured(v bool) { tc.ledgerConfigured = v }
func (tc *TestContext) SetRateLimit(perMinute int) { tc.perMinute = perMinute }
func (tc *TestContext) SetClientIP(ip string)      { tc.clientIP = ip }
func (tc *TestContext) SetAccessToken(t string)    { tc.accessToken = t }

// IssueToken mints a manufacturer token signed with the server's key.
func (tc *TestContext) IssueToken(subject, role string) (string, error) {
	return jwttoken.NewJWTService(signingKey, tc.app.Config.Auth.Issuer, tc.app.Config.Auth.Audience).
		GenerateToken(subject, role, time.Hour)
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) POST(path string, body any) error {
	return tc.do(http.MethodPost, path, body)
}

func (tc *TestContext) do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, tc.server.URL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.clientIP != "" {
		req.Header.Set("X-Forwarded-For", tc.clientIP)
	}
	if tc.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}

	resp, err := tc.server.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastHeaders = resp.Header
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) GetLastResponseStatus() int    { return tc.lastStatus }
func (tc *TestContext) GetLastResponseBody() []byte   { return tc.lastBody }
func (tc *TestContext) GetLastHeader(k string) string { return tc.lastHeaders.Get(k) }

// GetResponseField returns a top-level or dotted field of the last JSON body.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var body map[string]any
	if err := json.Unmarshal(tc.lastBody, &body); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	var cur any = body
	for part := range strings.SplitSeq(field, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, part)
		}
		if cur, ok = m[part]; !ok {
			return nil, fmt.Errorf("field %q not found in response: %s", field, tc.lastBody)
		}
	}
	return cur, nil
}

// AuditEvents lists recorded events for action.
func (tc *TestContext) AuditEvents(ctx context.Context, action string) ([]audit.Event, error) {
	if tc.app.AuditStore == nil {
		return nil, fmt.Errorf("audit store not in memory")
	}
	return tc.app.AuditStore.ListByAction(ctx, audit.AuditEvent(action))
}

// fakeUpstream answers as openFDA and the ledger gateway. Only the
// 68180-518 product is known to either.
func fakeUpstream() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /drug/ndc.json", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "68180-518") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"brand_name":"Ibuprofen","labeler_name":"Pfizer Laboratories","product_ndc":"68180-518"}]}`))
	})
	mux.HandleFunc("GET /contracts/"+contractAddress, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("POST /contracts/"+contractAddress+"/verify_authenticity", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fmt.Fprintf(w, `{"authenticated":%t,"proof":{"block":7}}`, bytes.Contains(body, []byte("68180-518")))
	})
	mux.HandleFunc("POST /contracts/"+contractAddress+"/register_batch", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"transactionId":"0xe2e-tx"}`))
	})
	return mux
}
