package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atichat/workfolio/pkg/internal/service"
	"github.com/atichat/workfolio/pkg/internal/types"
	"github.com/atichat/workfolio/pkg/log"
)

// CreateWork 创建作品.
//
//	@Summary		创建作品
//	@Description	作品行、标签、链接、图片按序写入；图片以 data URL 内嵌提交
//	@Tags			作品
//	@Accept			json
//	@Produce		json
//	@Param			body	body		types.CreateWorkRequest	true	"创建作品请求"
//	@Success		201		{object}	types.CreateWorkResponse
//	@Failure		400		{object}	map[string]string	"请求参数错误"
//	@Failure		401		{object}	map[string]string
//	@Failure		500		{object}	map[string]string	"写入失败"
//	@Router			/api/v1/works [post]
func CreateWork(c *gin.Context) {
	ident, err := currentIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.CreateWorkRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := service.NewWorkService(c.Request.Context())

	resp, err := svc.CreateWork(c.Request.Context(), ident.ID, &req)
	if err != nil {
		log.Logger().Error().Err(err).Str("author_id", ident.ID).Msg("create work failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListWorks 公开画廊.
//
//	@Summary		作品画廊
//	@Description	已发布作品，新发布在前，附缩略图与标签
//	@Tags			作品
//	@Produce		json
//	@Success		200	{object}	types.ListWorksResponse
//	@Failure		500	{object}	map[string]string
//	@Router			/api/v1/works [get]
func ListWorks(c *gin.Context) {
	svc := service.NewWorkService(c.Request.Context())

	resp, err := svc.ListPublished(c.Request.Context())
	if err != nil {
		log.Logger().Error().Err(err).Msg("list published works failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListMyWorks 当前用户的作品.
//
//	@Summary		我的作品
//	@Description	含草稿，新创建在前
//	@Tags			作品
//	@Produce		json
//	@Success		200	{object}	types.ListWorksResponse
//	@Failure		401	{object}	map[string]string
//	@Failure		500	{object}	map[string]string
//	@Router			/api/v1/works/mine [get]
func ListMyWorks(c *gin.Context) {
	ident, err := currentIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	svc := service.NewWorkService(c.Request.Context())

	resp, err := svc.ListMine(c.Request.Context(), ident.ID)
	if err != nil {
		log.Logger().Error().Err(err).Str("author_id", ident.ID).Msg("list own works failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetWork 作品详情.
//
//	@Summary		作品详情
//	@Description	附完整签名图片列表与标签
//	@Tags			作品
//	@Produce		json
//	@Param			id	path		string	true	"作品 ID"
//	@Success		200	{object}	types.WorkView
//	@Failure		404	{object}	map[string]string
//	@Failure		500	{object}	map[string]string
//	@Router			/api/v1/works/{id} [get]
func GetWork(c *gin.Context) {
	svc := service.NewWorkService(c.Request.Context())

	view, err := svc.GetWork(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "work not found"})
			return
		}

		log.Logger().Error().Err(err).Str("work_id", c.Param("id")).Msg("load work failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, view)
}

// SearchTags 标签搜索.
//
//	@Summary		标签搜索
//	@Description	可选大小写不敏感包含过滤，按名字升序
//	@Tags			标签
//	@Produce		json
//	@Param			q	query		string	false	"过滤词"
//	@Success		200	{object}	types.SearchTagsResponse
//	@Failure		500	{object}	map[string]string
//	@Router			/api/v1/tags [get]
func SearchTags(c *gin.Context) {
	svc := service.NewWorkService(c.Request.Context())

	resp, err := svc.SearchTags(c.Request.Context(), c.Query("q"))
	if err != nil {
		log.Logger().Error().Err(err).Msg("search tags failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}
