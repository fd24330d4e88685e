// Package batchexecute implements the wire protocol spoken by Google's
// batchexecute endpoints: form-encoded RPC envelopes going out, and
// ")]}'"-prefixed, optionally length-chunked JSON coming back.
package batchexecute

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrUnauthorized represent an unauthorized request.
var ErrUnauthorized = errors.New("unauthorized")

// RPC represents a single RPC call
type RPC struct {
	ID        string            // RPC endpoint ID
	Args      []interface{}     // Arguments for the call
	Index     string            // "generic" or numeric index
	URLParams map[string]string // Request-specific URL parameters
}

// Response represents a decoded RPC response
type Response struct {
	Index int             `json:"index"`
	ID    string          `json:"id"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
	// Code is the status code the server places in the envelope when it
	// returns no payload, e.g. [5] for a missing resource.
	Code int `json:"code,omitempty"`
}

// BatchExecuteError is returned for non-200 HTTP responses.
type BatchExecuteError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *BatchExecuteError) Error() string {
	return fmt.Sprintf("batchexecute error: %s (status: %d)", e.Message, e.StatusCode)
}

func (e *BatchExecuteError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// ErrorType classifies the HTTP status using the shared error dictionary.
func (e *BatchExecuteError) ErrorType() ErrorType {
	if ec, ok := GetErrorCode(e.StatusCode); ok {
		return ec.Type
	}
	return ErrorTypeUnknown
}

// Config holds the configuration for batch execute
type Config struct {
	Host      string
	App       string
	AuthToken string
	Cookies   string
	Headers   map[string]string
	URLParams map[string]string
	UseHTTP   bool

	// Retry configuration
	MaxRetries    int           // Maximum number of retry attempts (default: 3, negative disables)
	RetryDelay    time.Duration // Initial delay between retries (default: 1s)
	RetryMaxDelay time.Duration // Maximum delay between retries (default: 10s)
}

// Client handles batchexecute operations
type Client struct {
	config     Config
	httpClient *http.Client
	log        *zap.Logger
	limiter    *rate.Limiter
	reqid      *ReqIDGenerator
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger routes request tracing to l. Payloads are only logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRateLimit caps outgoing requests, retries included, at rps per second.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithHeaders adds additional headers
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		if c.config.Headers == nil {
			c.config.Headers = make(map[string]string)
		}
		for k, v := range headers {
			c.config.Headers[k] = v
		}
	}
}

// NewClient creates a new batchexecute client
func NewClient(config Config, opts ...Option) *Client {
	switch {
	case config.MaxRetries == 0:
		config.MaxRetries = 3
	case config.MaxRetries < 0:
		config.MaxRetries = 0
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 1 * time.Second
	}
	if config.RetryMaxDelay == 0 {
		config.RetryMaxDelay = 10 * time.Second
	}

	c := &Client{
		config:     config,
		httpClient: http.DefaultClient,
		log:        zap.NewNop(),
		reqid:      NewReqIDGenerator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CloseIdleConnections releases pooled connections held by the HTTP client.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// Do executes a single RPC and returns its decoded response. Server-reported
// errors are returned as *APIError. Transport failures, retryable HTTP
// statuses and retryable envelope codes are retried with exponential backoff.
func (c *Client) Do(ctx context.Context, rpc RPC) (*Response, error) {
	u, err := c.endpoint(rpc)
	if err != nil {
		return nil, err
	}
	reqBody, err := json.Marshal([]interface{}{[]interface{}{buildRPCData(rpc)}})
	if err != nil {
		return nil, errors.Wrap(err, "marshal request body")
	}

	form := url.Values{}
	form.Set("f.req", string(reqBody))
	form.Set("at", c.config.AuthToken)

	log := c.log.With(zap.String("rpc", rpc.ID))
	if ce := log.Check(zap.DebugLevel, "batchexecute request"); ce != nil {
		ce.Write(
			zap.String("url", u.String()),
			zap.String("auth_token", maskSensitiveValue(c.config.AuthToken)),
			zap.String("cookies", maskCookieValues(c.config.Cookies)),
			zap.ByteString("f.req", reqBody),
		)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			log.Debug("retrying request",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", c.config.MaxRetries),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			t := time.NewTimer(delay)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return nil, ctx.Err()
			}
		}

		resp, retry, err := c.exchange(ctx, log, u.String(), form.Encode())
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return nil, lastErr
}

// exchange performs one HTTP round trip and decodes the first response. The
// boolean reports whether a failure is worth another attempt.
func (c *Client) exchange(ctx context.Context, log *zap.Logger, endpoint, form string) (*Response, bool, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, false, ctxErr
			}
			// The next slot lies beyond the context deadline.
			return nil, false, errors.Mark(errors.Wrap(err, "rate limit wait"), context.DeadlineExceeded)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form))
	if err != nil {
		return nil, false, errors.Wrap(err, "create request")
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded;charset=UTF-8")
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("cookie", c.config.Cookies)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		return nil, isRetryableError(err), errors.Wrap(err, "execute request")
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, true, errors.Wrap(err, "read response")
	}
	log.Debug("batchexecute response", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(body)))

	if resp.StatusCode != http.StatusOK {
		return nil, isRetryableStatus(resp.StatusCode), &BatchExecuteError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("request failed: %s", http.StatusText(resp.StatusCode)),
			Body:       truncate(string(body), 512),
		}
	}

	responses, err := decodeResponse(string(body))
	if err != nil {
		var errorResp struct {
			Error string `json:"error"`
		}
		if jerr := json.Unmarshal(body, &errorResp); jerr == nil && errorResp.Error != "" {
			return nil, false, errors.Newf("server error: %s", errorResp.Error)
		}
		log.Debug("undecodable response", zap.String("body", truncate(string(body), 2048)))
		return nil, false, errors.Wrap(err, "decode response")
	}

	first := &responses[0]
	if apiErr, isErr := IsErrorResponse(first); isErr {
		log.Debug("api error", zap.Error(apiErr), zap.Bool("retryable", apiErr.IsRetryable()))
		return nil, apiErr.IsRetryable(), apiErr
	}
	return first, false, nil
}

func (c *Client) endpoint(rpc RPC) (*url.URL, error) {
	u, err := url.Parse(fmt.Sprintf("https://%s/_/%s/data/batchexecute", c.config.Host, c.config.App))
	if err != nil {
		return nil, errors.Wrap(err, "parse url")
	}
	if c.config.UseHTTP {
		u.Scheme = "http"
	}

	q := u.Query()
	q.Set("rpcids", rpc.ID)
	for k, v := range c.config.URLParams {
		q.Set(k, v)
	}
	for k, v := range rpc.URLParams {
		q.Set(k, v)
	}
	q.Set("_reqid", c.reqid.Next())
	u.RawQuery = q.Encode()
	return u, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := c.config.RetryDelay * time.Duration(1<<uint(attempt-1))
	if delay > c.config.RetryMaxDelay || delay <= 0 {
		delay = c.config.RetryMaxDelay
	}
	return delay
}

func buildRPCData(rpc RPC) []interface{} {
	argsJSON, _ := json.Marshal(rpc.Args)
	index := rpc.Index
	if index == "" {
		index = "generic"
	}
	return []interface{}{
		rpc.ID,
		string(argsJSON),
		nil,
		index,
	}
}

// maskSensitiveValue masks sensitive values like tokens for debug output
func maskSensitiveValue(value string) string {
	switch {
	case len(value) <= 8:
		return strings.Repeat("*", len(value))
	case len(value) <= 16:
		return value[:2] + strings.Repeat("*", len(value)-4) + value[len(value)-2:]
	default:
		return value[:3] + strings.Repeat("*", len(value)-6) + value[len(value)-3:]
	}
}

// maskCookieValues masks cookie values in cookie header for debug output
func maskCookieValues(cookies string) string {
	if cookies == "" {
		return ""
	}
	parts := strings.Split(cookies, ";")
	masked := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if name, value, found := strings.Cut(part, "="); found {
			masked = append(masked, name+"="+maskSensitiveValue(value))
		} else {
			masked = append(masked, part)
		}
	}
	return strings.Join(masked, "; ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ReqIDGenerator generates sequential request IDs
type ReqIDGenerator struct {
	mu       sync.Mutex
	base     int // Initial 4-digit number
	sequence int
}

// NewReqIDGenerator creates a new request ID generator
func NewReqIDGenerator() *ReqIDGenerator {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &ReqIDGenerator{base: r.Intn(9000) + 1000}
}

// Next returns the next request ID in sequence
func (g *ReqIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	reqid := g.base + (g.sequence * 100000)
	g.sequence++
	return strconv.Itoa(reqid)
}
