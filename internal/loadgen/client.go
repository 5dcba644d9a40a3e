package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/fieldtrace/internal/adapters/http/api"
	"github.com/okian/fieldtrace/internal/domain/types"
)

// ErrStatus is wrapped when the service answers with an unexpected status.
var ErrStatus = errors.New("unexpected response status")

// Outcome classifies a submission response.
type Outcome int

const (
	OutcomeAccepted Outcome = iota
	OutcomeDuplicate
	OutcomeRejected
)

// Client talks to the fieldtrace HTTP API.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: baseURL,
		http: &http.Client{Timeout: timeout},
	}
}

// Health checks /healthz.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	defer closeBody(resp)
	_, _ = io.Copy(io.Discard, resp.Body)
	return expect(resp, http.StatusOK)
}

// Submit posts one trace. Backpressure is reported as OutcomeRejected, not
// as an error.
func (c *Client) Submit(ctx context.Context, req api.SubmitRequest) (Outcome, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("marshal submission: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/traces", body)
	if err != nil {
		return 0, err
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, resp.Body)
		return OutcomeRejected, nil
	case http.StatusOK, http.StatusAccepted:
	default:
		return 0, statusError(resp)
	}
	var ack api.SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return 0, fmt.Errorf("decode submit response: %w", err)
	}
	if ack.Duplicate {
		return OutcomeDuplicate, nil
	}
	return OutcomeAccepted, nil
}

// Rankings fetches the top n teams.
func (c *Client) Rankings(ctx context.Context, n int) ([]types.Entry, error) {
	var out []types.Entry
	if err := c.getJSON(ctx, "/rankings?limit="+strconv.Itoa(n), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Team fetches one team's view.
func (c *Client) Team(ctx context.Context, team string) (types.TeamView, error) {
	var out types.TeamView
	if err := c.getJSON(ctx, "/teams/"+url.PathEscape(team), &out); err != nil {
		return types.TeamView{}, err
	}
	return out, nil
}

// Stats fetches the service's /stats map.
func (c *Client) Stats(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if err := c.getJSON(ctx, "/stats", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer closeBody(resp)
	if err := expect(resp, http.StatusOK); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, r)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func expect(resp *http.Response, code int) error {
	if resp.StatusCode != code {
		return statusError(resp)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var e struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&e)
	if e.Code != "" {
		return fmt.Errorf("%w: %d %s: %s", ErrStatus, resp.StatusCode, e.Code, e.Message)
	}
	return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
}

func closeBody(resp *http.Response) {
	_ = resp.Body.Close()
}
