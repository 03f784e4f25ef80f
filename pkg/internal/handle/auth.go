package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atichat/workfolio/pkg/configs"
	"github.com/atichat/workfolio/pkg/internal/service"
	"github.com/atichat/workfolio/pkg/internal/types"
	"github.com/atichat/workfolio/pkg/log"
)

const sessionCookieName = "wf_session"

// Register 用户注册.
//
//	@Summary		注册
//	@Description	校验注册信息；身份由外部认证代理签发，注册成功后执行档案对账
//	@Tags			认证
//	@Accept			json
//	@Produce		json
//	@Param			body	body		types.RegisterRequest	true	"注册请求"
//	@Success		200		{object}	types.AuthResponse
//	@Failure		400		{object}	map[string]string	"请求参数错误"
//	@Router			/api/v1/auth/register [post]
func Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ident := identityForCredentials(c, req.Email)
	if req.Name != "" {
		ident.Metadata["full_name"] = req.Name
	}

	finishAuth(c, ident)
}

// Login 用户登录.
//
//	@Summary		登录
//	@Description	校验登录信息；登录成功后执行档案对账并下发会话 cookie
//	@Tags			认证
//	@Accept			json
//	@Produce		json
//	@Param			body	body		types.LoginRequest	true	"登录请求"
//	@Success		200		{object}	types.AuthResponse
//	@Failure		400		{object}	map[string]string	"请求参数错误"
//	@Router			/api/v1/auth/login [post]
func Login(c *gin.Context) {
	var req types.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	finishAuth(c, identityForCredentials(c, req.Email))
}

// Verify 令牌校验.
//
//	@Summary		校验令牌
//	@Description	校验认证代理下发的令牌；有效时刷新档案对账
//	@Tags			认证
//	@Accept			json
//	@Produce		json
//	@Param			body	body		types.VerifyRequest	true	"令牌"
//	@Success		200		{object}	types.AuthResponse
//	@Failure		400		{object}	map[string]string	"请求参数错误"
//	@Failure		401		{object}	map[string]string	"令牌无效"
//	@Router			/api/v1/auth/verify [post]
func Verify(c *gin.Context) {
	var req types.VerifyRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ident, err := currentIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	finishAuth(c, ident)
}

// Callback 认证代理回跳.
//
//	@Summary		登录回跳
//	@Description	认证代理完成交换后的回跳入口，成功后执行档案对账
//	@Tags			认证
//	@Produce		json
//	@Param			code	query		string	true	"交换码"
//	@Success		200		{object}	types.AuthResponse
//	@Failure		400		{object}	map[string]string	"缺少交换码"
//	@Router			/api/v1/auth/callback [get]
func Callback(c *gin.Context) {
	if c.Query("code") == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}

	ident, err := currentIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	finishAuth(c, ident)
}

// Me 当前身份.
//
//	@Summary	当前用户
//	@Tags		认证
//	@Produce	json
//	@Success	200	{object}	types.AuthResponse
//	@Failure	401	{object}	map[string]string
//	@Router		/api/v1/auth/me [get]
func Me(c *gin.Context) {
	ident, err := currentIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	svc := service.NewProfileService(c.Request.Context())

	resp := types.AuthResponse{UserID: ident.ID, Email: ident.Email}
	if profile, err := svc.GetProfile(c.Request.Context(), ident.ID); err == nil {
		resp.Profile = profile
	}

	c.JSON(http.StatusOK, resp)
}

// identityForCredentials 凭据流下的身份：代理头优先，缺失时以邮箱为稳定键.
func identityForCredentials(c *gin.Context, email string) types.Identity {
	if ident, err := currentIdentity(c); err == nil && ident.ID != "" {
		if ident.Metadata == nil {
			ident.Metadata = map[string]string{}
		}

		return ident
	}

	return types.Identity{ID: email, Email: email, Metadata: map[string]string{}}
}

// finishAuth 认证成功后的统一收尾：对账（绝不失败响应）、会话 cookie、带档案的响应.
func finishAuth(c *gin.Context, ident types.Identity) {
	svc := service.NewProfileService(c.Request.Context())
	svc.Reconcile(c.Request.Context(), ident)

	cfg := configs.GetConfig().Auth
	maxAge := cfg.SessionCookieMaxDays * 24 * 3600
	c.SetCookie(sessionCookieName, ident.ID, maxAge, "/", "", false, true)

	resp := types.AuthResponse{UserID: ident.ID, Email: ident.Email}
	if profile, err := svc.GetProfile(c.Request.Context(), ident.ID); err == nil {
		resp.Profile = profile
	} else {
		log.Logger().Warn().Err(err).Str("user_id", ident.ID).Msg("load profile after auth failed")
	}

	c.JSON(http.StatusOK, resp)
}
