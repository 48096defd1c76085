package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pharmaguard/pkg/platform/sentinel"
)

const maxResponseBytes = 1 << 20

// GatewayClient talks to a ledger contract through an HTTP JSON gateway:
//
//	GET  {base}/contracts/{address}
//	POST {base}/contracts/{address}/verify_authenticity
//	POST {base}/contracts/{address}/register_batch
type GatewayClient struct {
	baseURL         string
	contractAddress string
	httpClient      *http.Client
}

// NewGatewayClient builds a gateway client. Calls fail with
// sentinel.ErrNotConfigured when baseURL or contractAddress is empty.
func NewGatewayClient(baseURL, contractAddress string, httpClient *http.Client, timeout time.Duration) *GatewayClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &GatewayClient{
		baseURL:         strings.TrimRight(baseURL, "/"),
		contractAddress: contractAddress,
		httpClient:      httpClient,
	}
}

// Ping checks that the contract is reachable.
func (c *GatewayClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "", nil, nil)
}

// VerifyAuthenticity asks the contract whether the witness batch is authentic.
func (c *GatewayClient) VerifyAuthenticity(ctx context.Context, w Witness) (Authenticity, error) {
	var out Authenticity
	if err := c.do(ctx, http.MethodPost, "verify_authenticity", w, &out); err != nil {
		return Authenticity{}, err
	}
	return out, nil
}

// RegisterBatch submits a batch witness to the contract.
func (c *GatewayClient) RegisterBatch(ctx context.Context, w BatchWitness) (Submission, error) {
	var out Submission
	if err := c.do(ctx, http.MethodPost, "register_batch", w, &out); err != nil {
		return Submission{}, err
	}
	if out.TransactionID == "" {
		return Submission{}, fmt.Errorf("register_batch: missing transaction id: %w", sentinel.ErrBadResponse)
	}
	return out, nil
}

func (c *GatewayClient) endpoint(operation string) string {
	u := c.baseURL + "/contracts/" + url.PathEscape(c.contractAddress)
	if operation != "" {
		u += "/" + operation
	}
	return u
}

func (c *GatewayClient) do(ctx context.Context, method, operation string, in, out any) error {
	if c.baseURL == "" || c.contractAddress == "" {
		return fmt.Errorf("ledger gateway: %w", sentinel.ErrNotConfigured)
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", operation, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(operation), body)
	if err != nil {
		return fmt.Errorf("build ledger request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("ledger request: %w", ctxErr)
		}
		return fmt.Errorf("ledger request: %w: %v", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read ledger response: %w: %v", sentinel.ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("ledger %s: %w", c.endpoint(operation), sentinel.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("ledger status %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode ledger response: %w: %v", sentinel.ErrBadResponse, err)
	}
	return nil
}
