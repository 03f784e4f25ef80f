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

// GetProfile 当前用户档案.
//
//	@Summary	获取档案
//	@Tags		档案
//	@Produce	json
//	@Success	200	{object}	types.ProfileResponse
//	@Failure	401	{object}	map[string]string
//	@Failure	404	{object}	map[string]string
//	@Router		/api/v1/profile [get]
func GetProfile(c *gin.Context) {
	ident, err := currentIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	respondProfile(c, ident.ID)
}

// GetPublicProfile 公开档案.
//
//	@Summary	公开档案
//	@Tags		档案
//	@Produce	json
//	@Param		userId	path		string	true	"用户 ID"
//	@Success	200		{object}	types.ProfileResponse
//	@Failure	404		{object}	map[string]string
//	@Router		/api/v1/profile/public/{userId} [get]
func GetPublicProfile(c *gin.Context) {
	respondProfile(c, c.Param("userId"))
}

// UpdateProfile 更新档案.
//
//	@Summary		更新档案
//	@Description	零值字段不更新；头像以 data URL 上传到头像桶，档案里只存对象引用
//	@Tags			档案
//	@Accept			json
//	@Produce		json
//	@Param			body	body		types.UpdateProfileRequest	true	"档案更新"
//	@Success		200		{object}	types.ProfileResponse
//	@Failure		400		{object}	map[string]string
//	@Failure		401		{object}	map[string]string
//	@Router			/api/v1/profile [patch]
func UpdateProfile(c *gin.Context) {
	ident, err := currentIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.UpdateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := service.NewProfileService(c.Request.Context())

	resp, err := svc.UpdateProfile(c.Request.Context(), ident.ID, &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}

		log.Logger().Error().Err(err).Str("user_id", ident.ID).Msg("update profile failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

func respondProfile(c *gin.Context, userID string) {
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user id"})
		return
	}

	svc := service.NewProfileService(c.Request.Context())

	resp, err := svc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}

		log.Logger().Error().Err(err).Str("user_id", userID).Msg("load profile failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}
