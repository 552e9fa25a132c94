package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Kind 错误分类，对应传输失败、非 2xx 状态、超时三类，外加本地解码/取消
type Kind string

const (
	KindNetwork  Kind = "network"
	KindStatus   Kind = "status"
	KindTimeout  Kind = "timeout"
	KindDecode   Kind = "decode"
	KindCanceled Kind = "canceled"
	KindRequest  Kind = "request"
	KindUnknown  Kind = "unknown"
)

// APIError 所有请求失败的统一表示，组件本身不做任何恢复
type APIError struct {
	Kind    Kind
	Method  string
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Method, e.Path, e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Unauthorized reports whether the backend rejected the bearer token.
func (e *APIError) Unauthorized() bool {
	return e.Kind == KindStatus && e.Status == 401
}

// Classify 返回错误的分类；非 APIError 按底层错误类型推断
func Classify(err error) Kind {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}

	// Context 先判断，url.Error 也会包装它
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return KindDecode
	}

	return KindUnknown
}

// errorMessage 从后端错误响应中取出可读信息
// FastAPI: {"detail": "..."} 或 {"detail": [...]}；gin: {"error": "..."}
func errorMessage(body []byte, status string) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return status
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"detail", "error", "message"} {
			raw, ok := payload[key]
			if !ok {
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				return s
			}
			return string(raw)
		}
	}

	if len(trimmed) > maxErrorBody {
		return trimmed[:maxErrorBody] + "..."
	}
	return trimmed
}

const maxErrorBody = 512
