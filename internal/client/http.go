package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alfredjeanlab/leadboard/internal/model"
)

// Action names understood by the sheet API's ?type=update endpoint.
const (
	ActionUpdateRow         = "updateRow"
	ActionTriggerLeadUpdate = "triggerLeadUpdate"
	ActionDismissAlert      = "dismissAlert"
	ActionOpenCallForm      = "openCallForm"
)

// DefaultUserAgent is sent on every request.
const DefaultUserAgent = "leadboard/1.0"

// HTTPClient implements SheetClient against the spreadsheet web app.
type HTTPClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) { c.userAgent = ua }
}

// NewHTTPClient creates a client for the sheet API at baseURL
// (e.g. "https://script.google.com/macros/s/XYZ/exec").
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Reads ---

func (c *HTTPClient) FetchData(ctx context.Context) (*model.SheetData, error) {
	var data model.SheetData
	if err := c.doJSON(ctx, url.Values{"type": {"data"}}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *HTTPClient) FetchColumns(ctx context.Context) (*model.ColumnDefs, error) {
	var defs model.ColumnDefs
	if err := c.doJSON(ctx, url.Values{"type": {"columns"}}, &defs); err != nil {
		return nil, err
	}
	return &defs, nil
}

// FetchAlerts accepts either a bare array or an {"alerts": [...]} object.
func (c *HTTPClient) FetchAlerts(ctx context.Context) ([]model.Alert, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, url.Values{"type": {"alerts"}}, &raw); err != nil {
		return nil, err
	}
	var alerts []model.Alert
	if err := json.Unmarshal(raw, &alerts); err == nil {
		return alerts, nil
	}
	var wrapped struct {
		Alerts []model.Alert `json:"alerts"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, newDecodeError(raw, err)
	}
	return wrapped.Alerts, nil
}

func (c *HTTPClient) FetchSnapshot(ctx context.Context) (*Snapshot, error) {
	return fetchSnapshot(ctx, c)
}

// --- Actions ---

// actionResult is the common envelope of ?type=update responses.
type actionResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

func (c *HTTPClient) UpdateCell(ctx context.Context, row, col int, value string) error {
	_, err := c.doAction(ctx, ActionUpdateRow, url.Values{
		"rowIndex":    {strconv.Itoa(row)},
		"columnIndex": {strconv.Itoa(col)},
		"value":       {value},
	})
	return err
}

func (c *HTTPClient) TriggerLeadUpdate(ctx context.Context, row int) (string, error) {
	res, err := c.doAction(ctx, ActionTriggerLeadUpdate, url.Values{
		"rowIndex": {strconv.Itoa(row)},
	})
	if err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *HTTPClient) DismissAlert(ctx context.Context, id string) error {
	_, err := c.doAction(ctx, ActionDismissAlert, url.Values{
		"alertId": {id},
	})
	return err
}

func (c *HTTPClient) OpenCallForm(ctx context.Context, row int) (string, error) {
	res, err := c.doAction(ctx, ActionOpenCallForm, url.Values{
		"rowIndex": {strconv.Itoa(row)},
	})
	if err != nil {
		return "", err
	}
	return res.URL, nil
}

// --- internal helpers ---

func (c *HTTPClient) doAction(ctx context.Context, action string, params url.Values) (*actionResult, error) {
	params.Set("type", "update")
	params.Set("action", action)

	var res actionResult
	if err := c.doJSON(ctx, params, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = defaultActionMessages[action]
		}
		return nil, &ActionError{Action: action, Message: msg}
	}
	return &res, nil
}

// doJSON performs a GET with the given query and decodes the JSON response.
func (c *HTTPClient) doJSON(ctx context.Context, params url.Values, result any) error {
	u := c.baseURL
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	u += sep + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return newDecodeError(respBody, err)
	}
	return nil
}
