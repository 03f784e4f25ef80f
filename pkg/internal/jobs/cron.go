// Package jobs 负责注册与实现业务定时任务（基于 scheduler）.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/atichat/workfolio/pkg/cache"
	ctxPkg "github.com/atichat/workfolio/pkg/context"
	"github.com/atichat/workfolio/pkg/internal/model"
	"github.com/atichat/workfolio/pkg/internal/storage"
	"github.com/atichat/workfolio/pkg/log"
	"github.com/atichat/workfolio/pkg/scheduler"
)

const tagCatalogCacheKey = "tags:catalog"

// RegisterCronJobs 配置业务定时任务：
//   - 每 5 分钟预热标签目录缓存（聚合器的整表查询走缓存）
//   - 每天 03:40 审计指向已消失作品的媒体行（只记录，不删除）.
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	_ = sched.AddCron(JobTagCatalogRefresh, CronTagCatalogRefresh, func(ctx context.Context) {
		runTagCatalogRefresh(ctx, mgr)
	}, baseCtx)

	_ = sched.AddCron(JobMediaOrphanAudit, CronMediaOrphanAudit, func(ctx context.Context) {
		runMediaOrphanAudit(ctx, mgr)
	}, baseCtx)

	return nil
}

// runTagCatalogRefresh 重新加载标签目录并写入缓存.
func runTagCatalogRefresh(ctx context.Context, mgr *storage.Manager) {
	l := log.Logger().With().Str("job", JobTagCatalogRefresh).Logger()

	kvClient := mgr.GetKVClient()
	if kvClient == nil {
		return
	}

	var tags []model.Tag
	if err := mgr.GetDBClient().GetDB().WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		l.Error().Err(err).Msg("load tag catalog failed")
		return
	}

	c := cache.NewCache(kvClient)
	if err := cache.Set(ctx, c, tagCatalogCacheKey, tags, 10*time.Minute); err != nil {
		l.Warn().Err(err).Msg("warm tag catalog cache failed")
		return
	}

	l.Debug().Int("tags", len(tags)).Msg("tag catalog cache warmed")
}

// runMediaOrphanAudit 统计没有对应作品的媒体行.
func runMediaOrphanAudit(ctx context.Context, mgr *storage.Manager) {
	l := log.Logger().With().Str("job", JobMediaOrphanAudit).Logger()

	db := mgr.GetDBClient().GetDB()
	workIDs := db.WithContext(ctx).Model(&model.Work{}).Select("id")

	var orphans int64
	err := db.WithContext(ctx).Model(&model.Media{}).
		Where("work_id NOT IN (?)", workIDs).
		Count(&orphans).Error
	if err != nil {
		l.Error().Err(err).Msg("media orphan audit failed")
		return
	}

	if orphans > 0 {
		l.Warn().Int64("orphans", orphans).Msg("media rows without a work")
	} else {
		l.Debug().Msg("no orphan media rows")
	}
}
