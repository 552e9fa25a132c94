package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"relayconsole/pkg/logger"
	"relayconsole/pkg/metrics"
	"relayconsole/pkg/trace"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Options 开发代理路由配置
type Options struct {
	// Target 后端地址，例如 http://backend:8000
	Target string
	// StripPrefix 转发前去掉的前缀；为空时所有未命中路由都转发
	StripPrefix string
	// StaticDir 前端构建产物目录，为空时不托管静态文件
	StaticDir string
	Metrics   bool
}

type Router struct {
	Engine *gin.Engine
}

func NewRouter(opts Options, log *zap.Logger) (*Router, error) {
	if log == nil {
		log = zap.NewNop()
	}

	proxy, err := NewProxyHandler(opts.Target, opts.StripPrefix, log)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	if opts.Metrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	prefix := proxy.Prefix()
	if prefix == "" {
		r.NoRoute(proxy.Handle)
		return &Router{Engine: r}, nil
	}

	r.Any(prefix, proxy.Handle)
	r.Any(prefix+"/*path", proxy.Handle)

	if opts.StaticDir != "" {
		r.NoRoute(NewStaticHandler(opts.StaticDir).Handle)
	} else {
		r.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		})
	}

	return &Router{Engine: r}, nil
}

// requestLogger 记录每个请求并补全 trace id
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(trace.HeaderName)
		if traceID == "" {
			traceID = trace.GenerateTraceID()
			c.Request.Header.Set(trace.HeaderName, traceID)
		}
		ctx := trace.WithContext(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(trace.HeaderName, traceID)

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		status := c.Writer.Status()
		if c.GetBool(proxiedKey) {
			metrics.RecordProxyRequestDuration(c.Request.Method, strconv.Itoa(status), duration)
		}

		logger.WithTrace(ctx, log).Debug("Dev proxy request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		)
	}
}
