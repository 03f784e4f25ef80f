package router

import (
	"github.com/gin-gonic/gin"

	"github.com/atichat/workfolio/pkg/internal/handle"
)

// RegisterProfileRoutes 注册档案相关路由.
func RegisterProfileRoutes(g *gin.RouterGroup) {
	profileRoutes := g.Group("/profile")
	{
		profileRoutes.GET("", handle.GetProfile)
		profileRoutes.PATCH("", handle.UpdateProfile)
		// 公开档案无需认证
		profileRoutes.GET("/public/:userId", handle.GetPublicProfile)
	}
}
