package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atichat/workfolio/pkg/configs"
	ctxPkg "github.com/atichat/workfolio/pkg/context"
	"github.com/atichat/workfolio/pkg/internal/model"
	"github.com/atichat/workfolio/pkg/internal/schema"
	mqc "github.com/atichat/workfolio/pkg/internal/storage/mq"
	"github.com/atichat/workfolio/pkg/internal/types"
	nlog "github.com/atichat/workfolio/pkg/log"
	"github.com/atichat/workfolio/pkg/metrics"
	"github.com/atichat/workfolio/pkg/queue"
)

// 对账结果，亦作 profile_reconciles_total 指标的 outcome 标签.
const (
	reconcileOutcomeUpdated  = "updated"
	reconcileOutcomeInserted = "inserted"
	reconcileOutcomeSkipped  = "skipped"
)

// profiles 表的列候选序列：部署历史里主键列和头像列名都发生过漂移，
// 按候选顺序逐个尝试，遇到"列不存在"错误就换下一个.
var (
	profileKeyColumns    = []string{"user_id", "id"}
	profileAvatarColumns = []string{"avatar_url", "avatarurl", "avater_url"}
)

// ProfileService 档案服务：登录对账与档案读写.
type ProfileService struct {
	db    *gorm.DB
	blobs BlobStore
	mq    *mqc.Client

	avatarBucket string
	signTTL      time.Duration
}

// NewProfileService 创建档案服务.
func NewProfileService(ctx context.Context) *ProfileService {
	s3cfg := configs.GetConfig().S3

	return &ProfileService{
		db:           ctxPkg.GetDBClient(ctx).GetDB(),
		blobs:        newS3Blob(ctxPkg.GetS3Client(ctx)),
		mq:           ctxPkg.GetMQClient(ctx),
		avatarBucket: s3cfg.AvatarBucket,
		signTTL:      time.Duration(s3cfg.SignTTLSeconds) * time.Second,
	}
}

// Reconcile 登录成功后把外部身份对齐到本地 users/profiles.
// 任何一步失败只记录日志，绝不影响登录响应.
func (ps *ProfileService) Reconcile(ctx context.Context, ident types.Identity) {
	logger := ctxPkg.WithTraceContext(ctx, *nlog.Logger()).With().Str("user_id", ident.ID).Logger()

	displayName := resolveDisplayName(ident)
	oauthAvatar := schema.FirstNonEmpty(ident.Metadata["avatar_url"], ident.Metadata["picture"])

	ps.upsertUser(ctx, ident, displayName, oauthAvatar, logger)

	row, keyCol := ps.findProfileRow(ctx, ident.ID, logger)

	// 档案里已有头像时保留，只有空缺才补 OAuth 头像.
	avatar := oauthAvatar
	if existing := avatarFromRow(row); existing != "" {
		avatar = ""
	}

	outcome := ps.writeProfile(ctx, ident.ID, keyCol, displayName, avatar, row != nil, logger)

	metrics.ProfileReconciles.WithLabelValues(outcome).Inc()

	if ps.mq != nil {
		msg, err := queue.NewWatermillMessage(queue.TopicProfileReconciled, queue.ProfileReconciledPayload{
			UserID:  ident.ID,
			Email:   ident.Email,
			Outcome: outcome,
		})
		if err == nil {
			err = ps.mq.Publish(ctx, queue.TopicProfileReconciled, msg)
		}

		if err != nil {
			logger.Warn().Err(err).Msg("publish profile reconciled event failed")
		}
	}
}

// resolveDisplayName 按 full_name、name、邮箱本地部分、"User" 的顺序解析显示名.
func resolveDisplayName(ident types.Identity) string {
	name := schema.FirstNonEmpty(ident.Metadata["full_name"], ident.Metadata["name"])
	if name != "" {
		return name
	}

	if ident.Email != "" {
		local := ident.Email
		for i, r := range local {
			if r == '@' {
				local = local[:i]
				break
			}
		}

		if local != "" {
			return local
		}
	}

	return "User"
}

// upsertUser 刷新身份提供方镜像行.
func (ps *ProfileService) upsertUser(ctx context.Context, ident types.Identity, displayName, avatar string, logger zerolog.Logger) {
	user := model.User{
		ID:          ident.ID,
		Email:       ident.Email,
		DisplayName: displayName,
		AvatarURL:   avatar,
	}

	err := ps.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "avatar_url", "updated_at"}),
	}).Create(&user).Error
	if err != nil {
		logger.Warn().Err(err).Msg("upsert user mirror row failed")
	}
}

// findProfileRow 按候选主键列查找档案行，返回行数据和命中的主键列名.
// 没有任何行时返回 nil 和首个可用的主键列名（供后续写入使用）.
func (ps *ProfileService) findProfileRow(ctx context.Context, userID string, logger zerolog.Logger) (map[string]any, string) {
	usableKey := ""

	for _, keyCol := range profileKeyColumns {
		var rows []map[string]any

		err := ps.db.WithContext(ctx).Table("profiles").
			Where(fmt.Sprintf("%s = ?", keyCol), userID).
			Limit(1).
			Find(&rows).Error
		if err != nil {
			if schema.IsUnknownColumn(err) {
				continue
			}

			logger.Warn().Err(err).Str("key_column", keyCol).Msg("profile lookup failed")

			continue
		}

		if usableKey == "" {
			usableKey = keyCol
		}

		if len(rows) > 0 {
			return rows[0], keyCol
		}
	}

	if usableKey == "" {
		usableKey = profileKeyColumns[0]
	}

	return nil, usableKey
}

// avatarFromRow 按候选头像列从行数据里取第一个非空值.
func avatarFromRow(row map[string]any) string {
	if row == nil {
		return ""
	}

	for _, col := range profileAvatarColumns {
		if v, ok := row[col]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}

	return ""
}

// writeProfile 先更新后插入，头像列按候选序列回退.
// avatar 为空字符串表示本次不写头像列.
func (ps *ProfileService) writeProfile(ctx context.Context, userID, keyCol, displayName, avatar string, exists bool, logger zerolog.Logger) string {
	now := time.Now().UTC()

	if exists {
		updates := map[string]any{"display_name": displayName, "updated_at": now}

		if avatar != "" {
			if !ps.updateWithAvatarFallback(ctx, userID, keyCol, updates, avatar, logger) {
				return reconcileOutcomeSkipped
			}

			return reconcileOutcomeUpdated
		}

		err := ps.db.WithContext(ctx).Table("profiles").
			Where(fmt.Sprintf("%s = ?", keyCol), userID).
			Updates(updates).Error
		if err != nil {
			logger.Warn().Err(err).Msg("profile update failed")
			return reconcileOutcomeSkipped
		}

		return reconcileOutcomeUpdated
	}

	for _, avatarCol := range profileAvatarColumns {
		rec := map[string]any{
			keyCol:         userID,
			"display_name": displayName,
			"updated_at":   now,
		}
		if avatar != "" {
			rec[avatarCol] = avatar
		}

		err := ps.db.WithContext(ctx).Table("profiles").Create(rec).Error
		if err == nil {
			return reconcileOutcomeInserted
		}

		// 并发登录时另一请求已插入，视为成功.
		if schema.IsDuplicateKey(err) {
			return reconcileOutcomeSkipped
		}

		if schema.IsUnknownColumn(err) && avatar != "" {
			continue
		}

		logger.Warn().Err(err).Msg("profile insert failed")

		return reconcileOutcomeSkipped
	}

	return reconcileOutcomeSkipped
}

// updateWithAvatarFallback 带头像列的更新，列不存在时换下一个候选列重试.
// 候选列全部不存在时只丢头像这一个字段，基础字段照常更新.
func (ps *ProfileService) updateWithAvatarFallback(ctx context.Context, userID, keyCol string, base map[string]any, avatar string, logger zerolog.Logger) bool {
	for _, avatarCol := range profileAvatarColumns {
		updates := make(map[string]any, len(base)+1)
		for k, v := range base {
			updates[k] = v
		}
		updates[avatarCol] = avatar

		err := ps.db.WithContext(ctx).Table("profiles").
			Where(fmt.Sprintf("%s = ?", keyCol), userID).
			Updates(updates).Error
		if err == nil {
			return true
		}

		if schema.IsUnknownColumn(err) {
			continue
		}

		logger.Warn().Err(err).Msg("profile update failed")

		return false
	}

	err := ps.db.WithContext(ctx).Table("profiles").
		Where(fmt.Sprintf("%s = ?", keyCol), userID).
		Updates(base).Error
	if err != nil {
		logger.Warn().Err(err).Msg("profile update failed")

		return false
	}

	logger.Warn().Str("user_id", userID).Msg("no usable avatar column, avatar dropped")

	return true
}

// GetProfile 读取档案并签名头像地址.
func (ps *ProfileService) GetProfile(ctx context.Context, userID string) (*types.ProfileResponse, error) {
	logger := ctxPkg.WithTraceContext(ctx, *nlog.Logger())

	row, _ := ps.findProfileRow(ctx, userID, logger)
	if row == nil {
		return nil, gorm.ErrRecordNotFound
	}

	return ps.profileFromRow(ctx, userID, row), nil
}

// UpdateProfile 更新档案：头像先落对象存储，档案里只存对象引用.
func (ps *ProfileService) UpdateProfile(ctx context.Context, userID string, req *types.UpdateProfileRequest) (*types.ProfileResponse, error) {
	logger := ctxPkg.WithTraceContext(ctx, *nlog.Logger())

	avatarRef := ""
	if req.AvatarDataURL != "" {
		data, mime, err := parseDataURL(req.AvatarDataURL)
		if err != nil {
			return nil, fmt.Errorf("parse avatar: %w", err)
		}

		key := fmt.Sprintf("%s/%d.%s", userID, time.Now().UnixMilli(), extFromMime(mime))
		if err := ps.blobs.Upload(ctx, ps.avatarBucket, key, data, mime); err != nil {
			return nil, fmt.Errorf("upload avatar: %w", err)
		}

		avatarRef = key
	}

	row, keyCol := ps.findProfileRow(ctx, userID, logger)
	if row == nil {
		return nil, gorm.ErrRecordNotFound
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	fields := make([]string, 0, 4)

	if req.DisplayName != "" {
		updates["display_name"] = req.DisplayName
		fields = append(fields, "display_name")
	}

	if req.Contact != "" {
		updates["contact"] = req.Contact
		fields = append(fields, "contact")
	}

	if req.Bio != "" {
		updates["bio"] = req.Bio
		fields = append(fields, "bio")
	}

	if avatarRef != "" {
		fields = append(fields, "avatar")

		if !ps.updateWithAvatarFallback(ctx, userID, keyCol, updates, avatarRef, logger) {
			return nil, fmt.Errorf("update profile avatar")
		}
	} else if err := ps.db.WithContext(ctx).Table("profiles").
		Where(fmt.Sprintf("%s = ?", keyCol), userID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if ps.mq != nil && len(fields) > 0 {
		msg, err := queue.NewWatermillMessage(queue.TopicProfileUpdated, queue.ProfileUpdatedPayload{
			UserID: userID,
			Fields: fields,
		})
		if err == nil {
			err = ps.mq.Publish(ctx, queue.TopicProfileUpdated, msg)
		}

		if err != nil {
			logger.Warn().Err(err).Msg("publish profile updated event failed")
		}
	}

	return ps.GetProfile(ctx, userID)
}

// profileFromRow 将列漂移后的原始行映射为响应.
func (ps *ProfileService) profileFromRow(ctx context.Context, userID string, row map[string]any) *types.ProfileResponse {
	resp := &types.ProfileResponse{
		UserID:      userID,
		DisplayName: stringField(row, "display_name"),
		Contact:     stringField(row, "contact"),
		Bio:         stringField(row, "bio"),
	}

	if v, ok := row["updated_at"].(time.Time); ok {
		resp.UpdatedAt = v
	}

	if ref := avatarFromRow(row); ref != "" {
		resp.AvatarURL = signedRef(ctx, ps.blobs, ps.avatarBucket, ref, ps.signTTL)
	}

	return resp
}

func stringField(row map[string]any, col string) string {
	if v, ok := row[col].(string); ok {
		return v
	}

	return ""
}
