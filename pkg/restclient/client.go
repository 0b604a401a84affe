package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"golang.org/x/time/rate"
)

const maxErrorBody = 512

// StatusError 上游返回的非 2xx 响应
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("restclient: unexpected status %d: %s", e.Code, e.Body)
}

// IsStatus 判断 err 是否为指定状态码的 StatusError
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

type Options struct {
	Timeout       time.Duration
	MaxRetries    int
	RetryMin      time.Duration
	RetryMax      time.Duration
	RatePerSecond float64
	Burst         int
	Headers       map[string]string
	// Username/Password 非空时使用 basic auth
	Username string
	Password string
}

// Client 带重试与限流的 JSON HTTP 客户端
type Client struct {
	baseURL string
	opts    Options
	http    *http.Client
	limiter *rate.Limiter
}

func New(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryMin <= 0 {
		opts.RetryMin = 200 * time.Millisecond
	}
	if opts.RetryMax <= 0 {
		opts.RetryMax = 5 * time.Second
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    opts,
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, opts.Burst),
	}
}

// Get 发送 GET 请求并将响应解码到 out，out 为 *[]byte 时保存原始响应体
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) (http.Header, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// PostJSON 以 JSON 发送 body
func (c *Client) PostJSON(ctx context.Context, path string, body any, out any) (http.Header, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("restclient: encode body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, payload, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte, out any) (http.Header, error) {
	target := c.baseURL + path
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		target = path
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	b := &backoff.Backoff{
		Min:    c.opts.RetryMin,
		Max:    c.opts.RetryMax,
		Factor: 2,
		Jitter: true,
	}

	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(b.Duration())
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		header, body, err := c.send(ctx, method, target, payload)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !retryable(err) {
				return header, err
			}
			lastErr = err
			continue
		}

		if out != nil && len(body) > 0 {
			if raw, ok := out.(*[]byte); ok {
				*raw = body
			} else if err := json.Unmarshal(body, out); err != nil {
				return header, fmt.Errorf("restclient: decode %s %s: %w", method, path, err)
			}
		}
		return header, nil
	}
	return nil, fmt.Errorf("restclient: %s %s failed after %d attempts: %w", method, path, c.opts.MaxRetries+1, lastErr)
}

func (c *Client) send(ctx context.Context, method, target string, payload []byte) (http.Header, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, nil, &permanentError{err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.opts.Headers {
		req.Header.Set(k, v)
	}
	if c.opts.Username != "" || c.opts.Password != "" {
		req.SetBasicAuth(c.opts.Username, c.opts.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.Header, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return resp.Header, nil, &StatusError{Code: resp.StatusCode, Body: msg}
	}
	return resp.Header, body, nil
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var pe *permanentError
	if errors.As(err, &pe) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return true
}
