// Package backend is the HTTP client for the drug inference service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/giygas/druginfo/entities"
	"github.com/giygas/druginfo/interfaces"
	"github.com/giygas/druginfo/logging"
	"github.com/giygas/druginfo/metrics"
	"golang.org/x/text/encoding/charmap"
)

// Backend endpoints
const (
	DrugInfoPath     = "/drug-info"
	MedicineInfoPath = "/medicine-info"

	// UploadField is the multipart field carrying the photo
	UploadField = "file"

	maxResponseBytes = 4 << 20
)

var _ interfaces.Backend = (*Client)(nil)

// Client talks to the inference backend. It does not retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for baseURL. timeout bounds each call,
// including reading the body.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the backend root the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LookupDrug posts {"drug_name": name} to the backend.
func (c *Client) LookupDrug(ctx context.Context, drugName string) (*entities.DrugInfoResult, error) {
	data, err := json.Marshal(entities.DrugInfoRequest{DrugName: drugName})
	if err != nil {
		return nil, fmt.Errorf("marshal drug info request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+DrugInfoPath, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build drug info request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, DrugInfoPath)
}

// IdentifyMedicine uploads a photo as multipart field "file".
func (c *Client) IdentifyMedicine(ctx context.Context, filename string, image io.Reader) (*entities.DrugInfoResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile(UploadField, filename)
	if err != nil {
		return nil, fmt.Errorf("create upload part: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("copy upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+MedicineInfoPath, &body)
	if err != nil {
		return nil, fmt.Errorf("build medicine info request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.do(req, MedicineInfoPath)
}

// Ping reports whether the backend answers HTTP. Any status counts, the
// backend has no route on its root.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping backend: %w", err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
	return nil
}

func (c *Client) do(req *http.Request, endpoint string) (result *entities.DrugInfoResult, err error) {
	start := time.Now()
	outcome := metrics.OutcomeSuccess
	defer func() {
		metrics.ObserveBackend(endpoint, outcome, time.Since(start))
		if err != nil {
			logging.Warn("Backend call failed", "endpoint", endpoint, "outcome", outcome,
				"duration_ms", time.Since(start).Milliseconds(), "error", err)
			return
		}
		logging.Debug("Backend call succeeded", "endpoint", endpoint,
			"duration_ms", time.Since(start).Milliseconds())
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = metrics.OutcomeTransportError
		return nil, fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logging.Warn("Failed to close backend response body", "error", cerr)
		}
	}()

	body, err := readBody(resp.Body)
	if err != nil {
		outcome = metrics.OutcomeTransportError
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = metrics.OutcomeBackendError
		var payload entities.ErrorResponse
		_ = json.Unmarshal(body, &payload)
		return nil, &Error{StatusCode: resp.StatusCode, Message: payload.Error}
	}

	var raw struct {
		DrugName *string `json:"drug_name"`
		Response *string `json:"response"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		outcome = metrics.OutcomeInvalidBody
		return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	if raw.Response == nil {
		outcome = metrics.OutcomeInvalidBody
		return nil, fmt.Errorf("decode %s response: %w", endpoint, ErrMissingFields)
	}

	result = &entities.DrugInfoResult{Response: *raw.Response}
	if raw.DrugName != nil {
		result.DrugName = *raw.DrugName
	}
	return result, nil
}

// readBody reads at most maxResponseBytes and decodes ISO-8859-1 bodies to
// UTF-8 so JSON parsing never sees invalid sequences.
func readBody(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxResponseBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxResponseBytes {
		return nil, errors.New("response body too large")
	}

	if utf8.Valid(body) {
		return body, nil
	}
	return charmap.ISO8859_1.NewDecoder().Bytes(body)
}
