// Package handle 提供 HTTP 请求处理器的实现.
package handle

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/atichat/workfolio/pkg/internal/types"
	"github.com/atichat/workfolio/pkg/middleware"
	"github.com/atichat/workfolio/pkg/rule"
)

// currentIdentity 提取认证代理注入的身份：中间件解析结果优先，
// 非 Release 模式下缺省为测试身份（便于本地调试）.
func currentIdentity(c *gin.Context) (types.Identity, error) {
	if ident, ok := middleware.GetIdentity(c); ok {
		return ident, nil
	}

	if gin.Mode() != gin.ReleaseMode {
		return types.Identity{
			ID:       "test-user@example.com",
			Email:    "test-user@example.com",
			Metadata: map[string]string{},
		}, nil
	}

	return types.Identity{}, fmt.Errorf("missing identity")
}

// bindJSON 绑定并校验 JSON 请求体.
func bindJSON[T any](c *gin.Context, req *T) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return err
	}

	return rule.ValidateStruct(req)
}
