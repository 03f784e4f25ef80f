package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	appcache "github.com/atichat/workfolio/pkg/cache"
)

const (
	cacheMaxBodyBytes = 1 << 20 // 1MB
	cacheDefaultTTL   = 30 * time.Second
	cacheBypassHeader = "X-Cache-Bypass"
)

// CacheConfig 响应缓存中间件配置，只缓存 GET 200.
type CacheConfig struct {
	Cache *appcache.Cache // 必须: 业务注入的 Cache 实例
	TTL   time.Duration

	Skipper func(*gin.Context) bool // 返回 true 跳过缓存
}

// CacheMiddleware 公共读路径的响应缓存：
//   - 键为方法 + 路径 + 排序 query 的 xxhash
//   - 支持 ETag / If-None-Match 与 X-Cache 命中标记
//   - 任何缓存失败不影响主流程.
func CacheMiddleware(cfg CacheConfig) gin.HandlerFunc {
	if cfg.Cache == nil {
		panic("CacheMiddleware: Cache cannot be nil")
	}

	if cfg.TTL <= 0 {
		cfg.TTL = cacheDefaultTTL
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet ||
			c.GetHeader(cacheBypassHeader) != "" ||
			(cfg.Skipper != nil && cfg.Skipper(c)) {
			c.Next()
			return
		}

		key := buildCacheKey(c)
		if serveFromCache(c, cfg, key) {
			return
		}

		bw := &bodyCaptureWriter{ResponseWriter: c.Writer, max: cacheMaxBodyBytes}
		c.Writer = bw
		c.Next()
		storeResponse(c, cfg, key, bw)
	}
}

// responseCacheEntry 序列化存储结构.
type responseCacheEntry struct {
	Status   int    `json:"s"`
	Type     string `json:"ct,omitempty"`
	Body     []byte `json:"b,omitempty"`
	ETag     string `json:"e,omitempty"`
	StoredAt int64  `json:"t"` // unix nano, 用于 Age
}

func buildCacheKey(c *gin.Context) string {
	var b strings.Builder

	b.WriteString(c.Request.Method)
	b.WriteByte(':')
	b.WriteString(c.Request.URL.Path)

	if q := c.Request.URL.Query(); len(q) > 0 {
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}

		sort.Strings(keys)
		b.WriteByte('?')

		for i, k := range keys {
			if i > 0 {
				b.WriteByte('&')
			}

			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(strings.Join(q[k], ","))
		}
	}

	return fmt.Sprintf("rc:%x", xxhash.Sum64String(b.String()))
}

func serveFromCache(c *gin.Context, cfg CacheConfig, key string) bool {
	entry, err := appcache.Get[responseCacheEntry](c.Request.Context(), cfg.Cache, key)
	if err != nil {
		return false
	}

	h := c.Writer.Header()
	if entry.ETag != "" {
		h.Set("ETag", entry.ETag)
	}

	h.Set("Age", fmt.Sprintf("%.0f", time.Since(time.Unix(0, entry.StoredAt)).Seconds()))
	h.Set("X-Cache", "HIT")

	if entry.ETag != "" && c.GetHeader("If-None-Match") == entry.ETag {
		c.Status(http.StatusNotModified)
		c.Abort()

		return true
	}

	if entry.Type != "" {
		h.Set("Content-Type", entry.Type)
	}

	c.Status(entry.Status)
	_, _ = c.Writer.Write(entry.Body)
	c.Abort()

	return true
}

func storeResponse(c *gin.Context, cfg CacheConfig, key string, bw *bodyCaptureWriter) {
	if c.Writer.Status() != http.StatusOK || bw.truncated {
		return
	}

	body := bw.buf.Bytes()
	etag := fmt.Sprintf("%q", fmt.Sprintf("%x", xxhash.Sum64(body)))
	c.Writer.Header().Set("ETag", etag)
	c.Writer.Header().Set("X-Cache", "MISS")

	entry := responseCacheEntry{
		Status:   http.StatusOK,
		Type:     c.Writer.Header().Get("Content-Type"),
		Body:     body,
		ETag:     etag,
		StoredAt: time.Now().UnixNano(),
	}

	_ = appcache.Set(c.Request.Context(), cfg.Cache, key, entry, cfg.TTL)
}

// bodyCaptureWriter 包装响应写入用于捕获 body.
type bodyCaptureWriter struct {
	gin.ResponseWriter

	buf       bytes.Buffer
	max       int
	truncated bool
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	if w.truncated {
		return w.ResponseWriter.Write(b)
	}

	remain := w.max - w.buf.Len()
	if remain <= 0 {
		w.truncated = true
		return w.ResponseWriter.Write(b)
	}

	if len(b) > remain {
		w.buf.Write(b[:remain])
		w.truncated = true
	} else {
		w.buf.Write(b)
	}

	return w.ResponseWriter.Write(b)
}
