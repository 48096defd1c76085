package registry

import (
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

// DefaultFDABaseURL is the public openFDA endpoint.
const DefaultFDABaseURL = "https://api.fda.gov"

// maxResponseBytes bounds how much of a registry response is read.
const maxResponseBytes = 1 << 20

// DrugRecord is one product entry returned by the drug registry.
type DrugRecord struct {
	BrandName   string `json:"brand_name"`
	GenericName string `json:"generic_name"`
	LabelerName string `json:"labeler_name"`
	ProductNDC  string `json:"product_ndc"`
}

// DisplayName prefers the brand name and falls back to the generic name.
func (d DrugRecord) DisplayName() string {
	if d.BrandName != "" {
		return d.BrandName
	}
	return d.GenericName
}

// Client queries a drug registry by NDC. A definitive absence is reported
// as sentinel.ErrNotFound; every other failure wraps sentinel.ErrUnavailable
// or sentinel.ErrBadResponse.
type Client interface {
	LookupNDC(ctx context.Context, code string) ([]DrugRecord, error)
}

type ndcResponse struct {
	Results []DrugRecord `json:"results"`
}

// FDAClient looks up package NDCs in the openFDA NDC directory.
type FDAClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewFDAClient builds a client for baseURL. A nil httpClient gets a client
// with the given timeout.
func NewFDAClient(baseURL string, httpClient *http.Client, timeout time.Duration) *FDAClient {
	if baseURL == "" {
		baseURL = DefaultFDABaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &FDAClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// LookupNDC returns the registry records for a package NDC.
func (c *FDAClient) LookupNDC(ctx context.Context, code string) ([]DrugRecord, error) {
	q := url.Values{}
	q.Set("search", fmt.Sprintf("package_ndc:%q", code))
	q.Set("limit", "1")
	endpoint := c.baseURL + "/drug/ndc.json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("registry request: %w", ctxErr)
		}
		return nil, fmt.Errorf("registry request: %w: %v", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read registry response: %w: %v", sentinel.ErrUnavailable, err)
	}

	return parseNDCResponse(resp.StatusCode, body)
}

func parseNDCResponse(status int, body []byte) ([]DrugRecord, error) {
	switch {
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("ndc lookup: %w", sentinel.ErrNotFound)
	case status != http.StatusOK:
		return nil, fmt.Errorf("ndc lookup status %d: %w", status, sentinel.ErrUnavailable)
	}

	var parsed ndcResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode ndc response: %w: %v", sentinel.ErrBadResponse, err)
	}
	return parsed.Results, nil
}
