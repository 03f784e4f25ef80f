package router

import (
	"github.com/gin-gonic/gin"

	"github.com/atichat/workfolio/pkg/internal/handle"
)

// RegisterWorksRoutes 注册作品相关路由. cacheMW 非 nil 时对公共读路径启用响应缓存.
func RegisterWorksRoutes(g *gin.RouterGroup, cacheMW gin.HandlerFunc) {
	worksRoutes := g.Group("/works")
	{
		// 创建作品
		worksRoutes.POST("", handle.CreateWork)
		// 当前用户的作品（含草稿）
		worksRoutes.GET("/mine", handle.ListMyWorks)

		// 公开画廊与详情
		if cacheMW != nil {
			worksRoutes.GET("", cacheMW, handle.ListWorks)
			worksRoutes.GET("/:id", cacheMW, handle.GetWork)
		} else {
			worksRoutes.GET("", handle.ListWorks)
			worksRoutes.GET("/:id", handle.GetWork)
		}
	}
}
