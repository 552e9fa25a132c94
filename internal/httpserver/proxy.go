package httpserver

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"relayconsole/pkg/logger"
	"relayconsole/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// proxiedKey 标记请求已交给后端，用于区分代理指标
const proxiedKey = "proxied"

// ProxyHandler 把 /api 前缀的请求去掉前缀后转发给后端，并把 Host 改写为后端地址
type ProxyHandler struct {
	target *url.URL
	prefix string
	proxy  *httputil.ReverseProxy
	logger *zap.Logger
}

func NewProxyHandler(target, stripPrefix string, log *zap.Logger) (*ProxyHandler, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy target %q: %w", target, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid proxy target %q: scheme and host are required", target)
	}
	if log == nil {
		log = zap.NewNop()
	}

	h := &ProxyHandler{
		target: u,
		prefix: normalizePrefix(stripPrefix),
		logger: log,
	}
	h.proxy = &httputil.ReverseProxy{
		Rewrite:      h.rewrite,
		ErrorHandler: h.upstreamError,
	}
	return h, nil
}

func (h *ProxyHandler) Prefix() string {
	return h.prefix
}

// Handle gin 入口
func (h *ProxyHandler) Handle(c *gin.Context) {
	c.Set(proxiedKey, true)
	h.proxy.ServeHTTP(c.Writer, c.Request)
}

func (h *ProxyHandler) rewrite(pr *httputil.ProxyRequest) {
	// 在转义形式上去前缀，保留 %2F 这类编码
	escaped := StripPrefix(pr.In.URL.EscapedPath(), h.prefix)
	if path, err := url.PathUnescape(escaped); err == nil {
		pr.Out.URL.Path = path
		pr.Out.URL.RawPath = escaped
	} else {
		pr.Out.URL.Path = StripPrefix(pr.In.URL.Path, h.prefix)
		pr.Out.URL.RawPath = ""
	}
	// SetURL 同时把出站 Host 改写为 target 的 host
	pr.SetURL(h.target)
	pr.SetXForwarded()
}

func (h *ProxyHandler) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	metrics.IncrementProxyUpstreamErrors()
	logger.WithTrace(r.Context(), h.logger).Warn("Backend unreachable",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("target", h.target.String()),
		zap.Error(err),
	)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusBadGateway)
	w.Write([]byte(`{"error":"backend unreachable"}`))
}

// StripPrefix 去掉路径前缀，只匹配完整的路径段
// StripPrefix("/api/login", "/api") = "/login"；StripPrefix("/apix", "/api") = "/apix"
func StripPrefix(path, prefix string) string {
	if prefix == "" {
		return path
	}
	if path == prefix {
		return "/"
	}
	if strings.HasPrefix(path, prefix+"/") {
		return path[len(prefix):]
	}
	return path
}

func normalizePrefix(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
