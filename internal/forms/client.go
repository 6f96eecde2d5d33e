package forms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"autoform/internal/config"
	"autoform/internal/logging"
)

const maxResponseBody = 8 << 20

// HeaderSource supplies request headers for an authenticated caller. It must
// fail without network access when no valid token is held.
type HeaderSource interface {
	AuthorizedHeaders() (http.Header, error)
}

// Options are the resolved Forms API settings.
type Options struct {
	BaseURL          string
	BatchSize        int
	Cooldown         time.Duration
	RateLimitRetries int
	BackoffMin       time.Duration
	BackoffMax       time.Duration
	RequestTimeout   time.Duration
}

// OptionsFromConfig resolves the forms section of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BaseURL:          cfg.Forms.BaseURL,
		BatchSize:        cfg.Forms.BatchSize,
		Cooldown:         cfg.GetBatchCooldown(),
		RateLimitRetries: cfg.Forms.RateLimitRetries,
		BackoffMin:       cfg.GetBackoffMin(),
		BackoffMax:       cfg.GetBackoffMax(),
		RequestTimeout:   cfg.GetRequestTimeout(),
	}
}

// Form is the subset of the remote form resource autoform reads.
type Form struct {
	FormID       string            `json:"formId"`
	ResponderURI string            `json:"responderUri"`
	RevisionID   string            `json:"revisionId,omitempty"`
	Info         Info              `json:"info"`
	Items        []json.RawMessage `json:"items,omitempty"`
}

// Client talks to the Forms REST API. Only BatchUpdate retries, and only on
// 429 responses, with exponential backoff capped at Options.BackoffMax.
type Client struct {
	baseURL string
	auth    HeaderSource
	batch   *retryablehttp.Client
	single  *retryablehttp.Client
	log     *zap.Logger
}

// NewClient creates a client. A nil httpClient uses a fresh one with
// Options.RequestTimeout.
func NewClient(opts Options, auth HeaderSource, httpClient *http.Client) *Client {
	log := logging.Get(logging.CategoryForms)
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.RequestTimeout}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = config.DefaultConfig().Forms.BaseURL
	}

	newRetrying := func(retries int) *retryablehttp.Client {
		rc := retryablehttp.NewClient()
		rc.HTTPClient = httpClient
		rc.RetryMax = retries
		rc.RetryWaitMin = opts.BackoffMin
		rc.RetryWaitMax = opts.BackoffMax
		rc.CheckRetry = retryOnRateLimit
		rc.Backoff = cappedBackoff
		rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
		rc.Logger = zapLeveled{log.Sugar()}
		rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
			if attempt > 0 {
				log.Warn("rate limited, retrying",
					zap.String("path", req.URL.Path),
					zap.Int("attempt", attempt),
					zap.Int("max_retries", retries))
			}
		}
		return rc
	}

	return &Client{
		baseURL: opts.BaseURL,
		auth:    auth,
		batch:   newRetrying(max(opts.RateLimitRetries, 0)),
		single:  newRetrying(0),
		log:     log,
	}
}

// retryOnRateLimit retries 429 only. Transport errors and every other
// status are returned to the caller as they are.
func retryOnRateLimit(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil || resp == nil {
		return false, nil
	}
	return resp.StatusCode == http.StatusTooManyRequests, nil
}

// cappedBackoff is DefaultBackoff with a server Retry-After also held to max.
func cappedBackoff(lo, hi time.Duration, attempt int, resp *http.Response) time.Duration {
	return min(retryablehttp.DefaultBackoff(lo, hi, attempt, resp), hi)
}

// CreateForm creates an empty form with only a title.
func (c *Client) CreateForm(ctx context.Context, title string) (*Form, error) {
	if title == "" {
		title = "Untitled Form"
	}
	body := map[string]any{"info": map[string]string{"title": title}}
	var form Form
	if err := c.do(ctx, c.single, "create", http.MethodPost, "/forms", body, &form); err != nil {
		return nil, err
	}
	if form.FormID == "" {
		return nil, fmt.Errorf("forms: create returned no formId")
	}
	return &form, nil
}

// BatchUpdate applies requests in one call. Callers chunk to at most
// config.MaxBatchSize requests.
func (c *Client) BatchUpdate(ctx context.Context, formID string, requests []Request) error {
	body := batchUpdateBody{Requests: requests, IncludeFormInResponse: false}
	path := "/forms/" + url.PathEscape(formID) + ":batchUpdate"
	return c.do(ctx, c.batch, "batchUpdate", http.MethodPost, path, body, nil)
}

// GetForm fetches the form resource.
func (c *Client) GetForm(ctx context.Context, formID string) (*Form, error) {
	var form Form
	if err := c.do(ctx, c.single, "get", http.MethodGet, "/forms/"+url.PathEscape(formID), nil, &form); err != nil {
		return nil, err
	}
	return &form, nil
}

// DeleteForm always fails with ErrDeleteUnsupported.
func (c *Client) DeleteForm(_ context.Context, formID string) error {
	c.log.Warn("form deletion requested but not supported by the Forms API", zap.String("form_id", formID))
	return ErrDeleteUnsupported
}

func (c *Client) do(ctx context.Context, rc *retryablehttp.Client, op, method, path string, body, out any) error {
	headers, err := c.auth.AuthorizedHeaders()
	if err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("forms: encode %s request: %w", op, err)
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("forms: build %s request: %w", op, err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := rc.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return fmt.Errorf("forms: %s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("forms: read %s response: %w", op, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{Op: op, Attempts: rc.RetryMax + 1, RetryAfter: retryAfter(resp)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return parseRemoteError(op, resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("forms: decode %s response: %w", op, err)
	}
	return nil
}

func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return time.Until(at)
	}
	return 0
}

// zapLeveled adapts a sugared zap logger to retryablehttp.LeveledLogger.
type zapLeveled struct{ s *zap.SugaredLogger }

func (l zapLeveled) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l zapLeveled) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l zapLeveled) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l zapLeveled) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
