package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atichat/workfolio/pkg/configs"
	"github.com/atichat/workfolio/pkg/internal/types"
)

type identityKey struct{}

// AuthMiddleware 基于反向认证代理（oauth2-proxy 一类）注入的请求头做统一身份解析与校验。
//   - X-Auth-Request-User / X-Forwarded-User 为用户 ID
//   - X-Auth-Request-Email / X-Forwarded-Email 为邮箱
//   - X-Auth-Request-Preferred-Username、X-Auth-Request-Name、X-Auth-Request-Picture
//     进入身份元数据，供档案对账按候选顺序解析
//   - 支持通过配置跳过某些路径（如 /metrics、公共画廊）
//   - 开发模式可允许 query user 兜底（由 configs.auth.dev_allow_query 控制）.
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := identityFromHeaders(c)
		if !ok && conf.DevAllowQuery {
			ident, ok = identityFromQuery(c)
		}

		if ok {
			ctx := context.WithValue(c.Request.Context(), identityKey{}, ident)
			c.Request = c.Request.WithContext(ctx)
		}

		if !conf.Enabled || isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Next()
	}
}

// GetIdentity 取出认证代理解析出的身份.
func GetIdentity(c *gin.Context) (types.Identity, bool) {
	if v := c.Request.Context().Value(identityKey{}); v != nil {
		if ident, ok := v.(types.Identity); ok {
			return ident, true
		}
	}

	return types.Identity{}, false
}

func identityFromHeaders(c *gin.Context) (types.Identity, bool) {
	id := strings.TrimSpace(c.GetHeader("X-Auth-Request-User"))
	if id == "" {
		id = strings.TrimSpace(c.GetHeader("X-Forwarded-User"))
	}

	email := strings.TrimSpace(c.GetHeader("X-Auth-Request-Email"))
	if email == "" {
		email = strings.TrimSpace(c.GetHeader("X-Forwarded-Email"))
	}

	if id == "" && email == "" {
		return types.Identity{}, false
	}

	// 有邮箱没 ID 的代理配置下，用邮箱当稳定键.
	if id == "" {
		id = email
	}

	meta := map[string]string{}
	if v := strings.TrimSpace(c.GetHeader("X-Auth-Request-Name")); v != "" {
		meta["full_name"] = v
	}

	if v := strings.TrimSpace(c.GetHeader("X-Auth-Request-Preferred-Username")); v != "" {
		meta["name"] = v
	}

	if v := strings.TrimSpace(c.GetHeader("X-Auth-Request-Picture")); v != "" {
		meta["avatar_url"] = v
	}

	return types.Identity{ID: id, Email: email, Metadata: meta}, true
}

func identityFromQuery(c *gin.Context) (types.Identity, bool) {
	user := strings.TrimSpace(c.Query("user"))
	if user == "" {
		return types.Identity{}, false
	}

	return types.Identity{ID: user, Email: user, Metadata: map[string]string{}}, true
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
