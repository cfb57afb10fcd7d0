package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"google.golang.org/api/idtoken"
)

const (
	defaultRunPath = "/run"
	defaultTimeout = 5 * time.Minute
)

// Option configures an HTTPRunner.
type Option func(*HTTPRunner)

// WithHTTPClient sets the HTTP client. Without it an ID-token client is built
// for the worker audience, falling back to a plain client.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *HTTPRunner) {
		r.client = hc
	}
}

// WithTimeout bounds a whole run, including the worker's browsing time.
func WithTimeout(d time.Duration) Option {
	return func(r *HTTPRunner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRunPath overrides the worker endpoint path.
func WithRunPath(path string) Option {
	return func(r *HTTPRunner) {
		if path != "" {
			r.runPath = "/" + strings.TrimLeft(path, "/")
		}
	}
}

// HTTPRunner posts tasks to the browser-automation worker.
type HTTPRunner struct {
	client  *http.Client
	baseURL string
	runPath string
	timeout time.Duration
}

// NewHTTPRunner builds a runner for the worker at baseURL.
func NewHTTPRunner(ctx context.Context, baseURL string, opts ...Option) (*HTTPRunner, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, eris.New("automation: base url must not be empty")
	}

	r := &HTTPRunner{baseURL: baseURL, runPath: defaultRunPath, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		if idc, err := idtoken.NewClient(ctx, baseURL); err == nil {
			r.client = idc
		} else {
			r.client = &http.Client{}
		}
	}
	return r, nil
}

// Run submits the task and waits for the worker to finish.
func (r *HTTPRunner) Run(ctx context.Context, task Task) (RunResult, error) {
	body, err := json.Marshal(task)
	if err != nil {
		return RunResult{}, eris.Wrap(err, "automation: marshal task")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+r.runPath, bytes.NewReader(body))
	if err != nil {
		return RunResult{}, eris.Wrap(err, "automation: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return RunResult{}, fmt.Errorf("automation: %w", ctxErr)
		}
		return RunResult{}, eris.Wrap(err, "automation: worker request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return RunResult{}, &WorkerError{StatusCode: resp.StatusCode, Message: extractWorkerError(resp.Body)}
	}

	var workerResp struct {
		Data  *RunResult `json:"data"`
		Error string     `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&workerResp); err != nil && err != io.EOF {
		return RunResult{}, eris.Wrap(err, "automation: decode worker response")
	}
	if workerResp.Error != "" {
		return RunResult{}, &WorkerError{Message: workerResp.Error}
	}
	if workerResp.Data == nil {
		return RunResult{}, nil
	}
	return *workerResp.Data, nil
}

func extractWorkerError(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(data) == 0 {
		return "worker returned an error"
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}

var _ Runner = (*HTTPRunner)(nil)
