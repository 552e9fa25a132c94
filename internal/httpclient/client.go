package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"relayconsole/pkg/logger"
	"relayconsole/pkg/metrics"
	"relayconsole/pkg/trace"

	"go.uber.org/zap"
)

const (
	DefaultBasePath = "/api"
	DefaultTimeout  = 15 * time.Second
)

// TokenSource 提供当前 bearer token，空串表示未登录
type TokenSource interface {
	Token() string
}

type Config struct {
	BaseURL  string
	BasePath string
	Timeout  time.Duration
	// Transport 为空时使用 http.DefaultTransport
	Transport http.RoundTripper
}

// Client 所有管理 API 请求的唯一出口
// 每次请求前从 TokenSource 读取 token，不重试、不刷新、不排队
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg Config, tokens TokenSource, log *zap.Logger) *Client {
	if cfg.BasePath == "" {
		cfg.BasePath = DefaultBasePath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if p := strings.Trim(cfg.BasePath, "/"); p != "" {
		base += "/" + p
	}

	return &Client{
		baseURL: base,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		logger: log,
	}
}

func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do 发送请求；body 非 nil 时编码为 JSON，out 非 nil 时解码 2xx 响应体
// 所有失败都以 *APIError 返回
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	ctx, traceID := trace.Ensure(ctx)
	log := logger.WithTrace(ctx, c.logger)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{Kind: KindRequest, Method: method, Path: path, Message: "failed to encode body", Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &APIError{Kind: KindRequest, Method: method, Path: path, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(trace.HeaderName, traceID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPIRequestDuration(method, routeLabel(path), "error", time.Since(start))
		kind := Classify(err)
		log.Debug("Admin API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return &APIError{Kind: kind, Method: method, Path: path, Message: transportMessage(err), Err: err}
	}
	defer resp.Body.Close()

	duration := time.Since(start)
	metrics.RecordAPIRequestDuration(method, routeLabel(path), strconv.Itoa(resp.StatusCode), duration)
	log.Debug("Admin API request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &APIError{
			Kind:    KindStatus,
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: errorMessage(respBody, resp.Status),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: Classify(err), Method: method, Path: path, Status: resp.StatusCode, Message: "failed to read response", Err: err}
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &APIError{Kind: KindDecode, Method: method, Path: path, Status: resp.StatusCode, Message: "failed to decode response", Err: err}
	}
	return nil
}

func transportMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request canceled"
	}
	if Classify(err) == KindTimeout {
		return "request timed out"
	}
	return "backend unreachable"
}

var idSegment = regexp.MustCompile(`/\d+(/|$)`)

// routeLabel 把数字 id 折叠成 :id，避免指标标签基数膨胀
func routeLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return idSegment.ReplaceAllString(path, "/:id$1")
}
