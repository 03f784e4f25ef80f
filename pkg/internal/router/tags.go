package router

import (
	"github.com/gin-gonic/gin"

	"github.com/atichat/workfolio/pkg/internal/handle"
)

// RegisterTagsRoutes 注册标签相关路由.
func RegisterTagsRoutes(g *gin.RouterGroup, cacheMW gin.HandlerFunc) {
	if cacheMW != nil {
		g.GET("/tags", cacheMW, handle.SearchTags)
		return
	}

	g.GET("/tags", handle.SearchTags)
}
