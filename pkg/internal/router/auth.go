package router

import (
	"github.com/gin-gonic/gin"

	"github.com/atichat/workfolio/pkg/internal/handle"
)

// RegisterAuthRoutes 注册认证相关路由.
func RegisterAuthRoutes(g *gin.RouterGroup) {
	authRoutes := g.Group("/auth")
	{
		authRoutes.POST("/register", handle.Register)
		authRoutes.POST("/login", handle.Login)
		authRoutes.POST("/verify", handle.Verify)
		// 认证代理完成交换后的回跳入口
		authRoutes.GET("/callback", handle.Callback)
		authRoutes.GET("/me", handle.Me)
	}
}
