// Package api 定义 HTTP 服务的接口装配，将内部路由注册到 gin 引擎.
package api

import (
	"github.com/gin-gonic/gin"

	appcache "github.com/atichat/workfolio/pkg/cache"
	"github.com/atichat/workfolio/pkg/internal/router"
)

// RegisterGroup 注册全部业务路由组到传入的 gin 引擎. readCache 为 nil 时跳过响应缓存.
func RegisterGroup(e *gin.Engine, readCache *appcache.Cache) *gin.Engine {
	return router.Register(e, router.Options{Cache: readCache})
}
