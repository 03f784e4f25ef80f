// Package router 管理路由配置，用于设置HTTP服务的路由规则. router 包只负责将路径和
// 处理器绑定到 gin 引擎，处理器的实现由 pkg/internal/handle 提供.
package router

import (
	"time"

	"github.com/gin-gonic/gin"

	appcache "github.com/atichat/workfolio/pkg/cache"
	"github.com/atichat/workfolio/pkg/middleware"
)

const publicReadCacheTTL = 30 * time.Second

// Options 路由装配选项. Cache 为 nil 时公共读路径不启用响应缓存.
type Options struct {
	Cache *appcache.Cache
}

// Register 将所有 API 路由绑定到传入的 gin 引擎.
func Register(e *gin.Engine, opts Options) *gin.Engine {
	var cacheMW gin.HandlerFunc
	if opts.Cache != nil {
		cacheMW = middleware.CacheMiddleware(middleware.CacheConfig{
			Cache: opts.Cache,
			TTL:   publicReadCacheTTL,
		})
	}

	v1 := e.Group("/api/v1")
	{
		RegisterAuthRoutes(v1)
		RegisterProfileRoutes(v1)
		RegisterWorksRoutes(v1, cacheMW)
		RegisterTagsRoutes(v1, cacheMW)
		RegisterHealthCheckRoute(v1)
		RegisterSchedulerRoutes(v1)
	}

	RegisterSwaggerRoute(e)

	return e
}
