package source

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

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/nps-cli/internal/model"
)

// APIError is returned when the data service responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("source: HTTP %d: %s", e.StatusCode, e.Body)
}

// RESTOption configures a REST source.
type RESTOption func(*REST)

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) RESTOption {
	return func(r *REST) {
		r.http = hc
	}
}

// WithTimeout sets the request timeout in seconds.
func WithTimeout(secs int) RESTOption {
	return func(r *REST) {
		r.http.Timeout = time.Duration(secs) * time.Second
	}
}

// WithTable overrides the submissions table name.
func WithTable(table string) RESTOption {
	return func(r *REST) {
		r.table = table
	}
}

// WithCompletedStatus overrides the status value that marks a finished survey.
func WithCompletedStatus(status string) RESTOption {
	return func(r *REST) {
		r.completed = status
	}
}

// WithWriteRateLimit throttles status updates to rps requests per second.
// A non-positive rps disables throttling.
func WithWriteRateLimit(rps float64) RESTOption {
	return func(r *REST) {
		if rps > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			r.limiter = nil
		}
	}
}

// REST reads and writes submissions through a Supabase PostgREST endpoint.
type REST struct {
	baseURL   string
	apiKey    string
	table     string
	completed string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewREST creates a REST source for the project at baseURL.
func NewREST(baseURL, apiKey string, opts ...RESTOption) *REST {
	r := &REST{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		table:     defaultTable,
		completed: defaultCompletedStatus,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch lists completed submissions, newest completion first.
func (r *REST) Fetch(ctx context.Context) ([]model.Submission, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("status", "eq."+r.completed)
	q.Set("order", "completed_at.desc")

	var rows []json.RawMessage
	if err := r.do(ctx, http.MethodGet, r.endpoint(q), nil, &rows); err != nil {
		return nil, eris.Wrap(err, "source: fetch submissions")
	}

	subs := make([]model.Submission, 0, len(rows))
	for _, raw := range rows {
		if sub, ok := decodeRow(raw, "rest"); ok {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

// UpdateStatus patches the ticket_status column of one submission.
func (r *REST) UpdateStatus(ctx context.Context, id string, status model.TicketStatus) error {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "source: rate limit")
		}
	}

	q := url.Values{}
	q.Set("id", "eq."+id)
	body := map[string]string{"ticket_status": string(status)}

	var updated []json.RawMessage
	if err := r.do(ctx, http.MethodPatch, r.endpoint(q), body, &updated); err != nil {
		return eris.Wrapf(err, "source: update status %s", id)
	}
	if len(updated) == 0 {
		return eris.Wrapf(ErrNotFound, "source: update status %s", id)
	}
	return nil
}

// Close releases idle connections.
func (r *REST) Close() error {
	r.http.CloseIdleConnections()
	return nil
}

func (r *REST) endpoint(q url.Values) string {
	return r.baseURL + "/rest/v1/" + r.table + "?" + q.Encode()
}

func (r *REST) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return eris.Wrap(err, "marshal request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "http request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return eris.Wrap(err, "decode response")
		}
	}
	return nil
}
