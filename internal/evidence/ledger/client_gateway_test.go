package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaguard/pkg/platform/sentinel"
)

func newGateway(t *testing.T, handler http.HandlerFunc) (*GatewayClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGatewayClient(srv.URL, "0xCONTRACT", nil, time.Second), srv
}

func TestGatewayClient(t *testing.T) {
	t.Run("ping hits the contract resource", func(t *testing.T) {
		var gotPath, gotMethod string
		client, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath, gotMethod = r.URL.Path, r.Method
			w.WriteHeader(http.StatusOK)
		})

		require.NoError(t, client.Ping(context.Background()))
		assert.Equal(t, "/contracts/0xCONTRACT", gotPath)
		assert.Equal(t, http.MethodGet, gotMethod)
	})

	t.Run("verify sends witness and passes proof through", func(t *testing.T) {
		var got Witness
		client, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/contracts/0xCONTRACT/verify_authenticity", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"authenticated":true,"proof":{"pi_a":["1","2"]}}`))
		})

		auth, err := client.VerifyAuthenticity(context.Background(), Witness{BatchID: "PFIZER_2025", Timestamp: 42})
		require.NoError(t, err)
		assert.Equal(t, Witness{BatchID: "PFIZER_2025", Timestamp: 42}, got)
		assert.True(t, auth.Authenticated)
		assert.JSONEq(t, `{"pi_a":["1","2"]}`, string(auth.Proof))
	})

	t.Run("register returns transaction id", func(t *testing.T) {
		client, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/contracts/0xCONTRACT/register_batch", r.URL.Path)
			var got BatchWitness
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Equal(t, "PFIZER-ASP-2025-001", got.BatchID)
			_, _ = w.Write([]byte(`{"transactionId":"tx-123"}`))
		})

		sub, err := client.RegisterBatch(context.Background(), BatchWitness{BatchID: "PFIZER-ASP-2025-001"})
		require.NoError(t, err)
		assert.Equal(t, "tx-123", sub.TransactionID)
	})

	t.Run("register without transaction id is a bad response", func(t *testing.T) {
		client, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})

		_, err := client.RegisterBatch(context.Background(), BatchWitness{BatchID: "B"})
		assert.ErrorIs(t, err, sentinel.ErrBadResponse)
	})

	t.Run("server error is unavailable", func(t *testing.T) {
		client, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.VerifyAuthenticity(context.Background(), Witness{BatchID: "X"})
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	})

	t.Run("missing contract address is not configured", func(t *testing.T) {
		client := NewGatewayClient("http://ledger.invalid", "", nil, time.Second)
		assert.ErrorIs(t, client.Ping(context.Background()), sentinel.ErrNotConfigured)
	})
}
