package apihttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RCDNC/swipedeck/internal/domain/rules"
	"github.com/RCDNC/swipedeck/internal/infra/httpclient"
)

const maxResponseBytes = 2 * 1024 * 1024

// Client talks to the remote dating API. It implements the candidate source,
// the action service and the metrics store of a swipe session.
type Client struct {
	baseURL    string
	pageSize   int
	limits     rules.Limits
	httpClient *http.Client
	newKey     func() string
}

type RequestError struct {
	Op         string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil && e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d", e.Op, e.StatusCode)
	default:
		return e.Op
	}
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsRetryable lets callers classify the failure without importing this package.
func (e *RequestError) IsRetryable() bool {
	return e != nil && e.Retryable
}

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	PageSize int

	// Limits fill the quota fields /v1/metrics leaves out.
	Limits rules.Limits
}

func NewClient(cfg Config) (*Client, error) {
	trimmed := strings.TrimSpace(cfg.BaseURL)
	if trimmed == "" {
		return nil, &RequestError{Op: "create api client", Err: errors.New("remote api base url is empty")}
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, &RequestError{Op: "parse remote api url", Err: err}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &RequestError{Op: "validate remote api url", Err: fmt.Errorf("invalid remote api url: %s", trimmed)}
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		pageSize:   pageSize,
		limits:     cfg.Limits,
		httpClient: httpclient.New(cfg.Timeout),
		newKey:     uuid.NewString,
	}, nil
}

type accessTokenContextKeyType struct{}

var accessTokenContextKey accessTokenContextKeyType

// WithAccessToken attaches the caller's bearer token to ctx. Every request made
// with that ctx forwards it upstream.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, accessTokenContextKey, strings.TrimSpace(token))
}

func AccessTokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	token, _ := ctx.Value(accessTokenContextKey).(string)
	return token
}

type requestOptions struct {
	userID     string
	idempotent bool
	query      url.Values
}

func (c *Client) doJSON(ctx context.Context, method, path string, opts requestOptions, requestBody, responseBody interface{}) error {
	if c == nil || c.httpClient == nil {
		return &RequestError{Op: "do json request", Err: errors.New("api client is not initialized")}
	}

	var payload []byte
	if requestBody != nil {
		raw, err := json.Marshal(requestBody)
		if err != nil {
			return &RequestError{Op: "marshal request body", Err: err}
		}
		payload = raw
	}

	statusCode, body, err := c.do(ctx, method, path, opts, payload)
	if err != nil {
		return err
	}
	if responseBody == nil || len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, responseBody); err != nil {
		return &RequestError{Op: "decode http response", StatusCode: statusCode, Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, opts requestOptions, body []byte) (int, []byte, error) {
	fullURL := c.baseURL + path
	if len(opts.query) > 0 {
		fullURL += "?" + opts.query.Encode()
	}

	var bodyReader io.Reader
	if len(body) > 0 {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return 0, nil, &RequestError{Op: "create http request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := AccessTokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if opts.userID != "" {
		req.Header.Set("X-User-Id", opts.userID)
	}
	if opts.idempotent {
		req.Header.Set("Idempotency-Key", c.newKey())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &RequestError{
			Op:        "execute http request",
			Retryable: isRetryableNetworkError(err),
			Err:       err,
		}
	}
	defer resp.Body.Close()

	responseBytes, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if readErr != nil {
		return resp.StatusCode, nil, &RequestError{Op: "read http response", StatusCode: resp.StatusCode, Err: readErr}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, responseBytes, &RequestError{
			Op:         "unexpected http status",
			StatusCode: resp.StatusCode,
			Retryable:  isRetryableStatus(resp.StatusCode),
			Err:        errors.New(errorMessage(resp.StatusCode, responseBytes)),
		}
	}

	return resp.StatusCode, responseBytes, nil
}

// errorMessage prefers the upstream {"error":{"message"}} or {"message"} body.
func errorMessage(statusCode int, body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		if msg := strings.TrimSpace(envelope.Error.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(envelope.Message); msg != "" {
			return msg
		}
	}
	if msg := strings.TrimSpace(string(body)); msg != "" && len(msg) <= 256 {
		return msg
	}
	return http.StatusText(statusCode)
}

func isRetryableNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}
