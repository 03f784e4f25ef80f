package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/atichat/workfolio/pkg/cache"
	"github.com/atichat/workfolio/pkg/internal/model"
	"github.com/atichat/workfolio/pkg/internal/types"
	nlog "github.com/atichat/workfolio/pkg/log"
	"github.com/atichat/workfolio/pkg/queue"
)

const (
	tagCatalogCacheKey = "tags:catalog"
	tagCatalogCacheTTL = time.Minute
)

// ListPublished 公开画廊：已发布作品，新发布在前.
func (ws *WorkService) ListPublished(ctx context.Context) (*types.ListWorksResponse, error) {
	var works []model.Work
	if err := ws.db.WithContext(ctx).
		Where("status = ?", model.WorkStatusPublished).
		Order("published_at DESC").
		Find(&works).Error; err != nil {
		return nil, fmt.Errorf("list published works: %w", err)
	}

	views, err := ws.aggregate(ctx, works)
	if err != nil {
		return nil, err
	}

	return &types.ListWorksResponse{Works: views, Total: len(views)}, nil
}

// ListMine 作者自己的作品，含草稿，新创建在前.
func (ws *WorkService) ListMine(ctx context.Context, authorID string) (*types.ListWorksResponse, error) {
	var works []model.Work
	if err := ws.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&works).Error; err != nil {
		return nil, fmt.Errorf("list own works: %w", err)
	}

	views, err := ws.aggregate(ctx, works)
	if err != nil {
		return nil, err
	}

	return &types.ListWorksResponse{Works: views, Total: len(views)}, nil
}

// GetWork 作品详情：完整签名图片列表 + 标签.
func (ws *WorkService) GetWork(ctx context.Context, id string) (*types.WorkView, error) {
	var work model.Work
	if err := ws.db.WithContext(ctx).Where("id = ?", id).Take(&work).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("load work: %w", err)
	}

	views, err := ws.aggregateFull(ctx, []model.Work{work})
	if err != nil {
		return nil, err
	}

	return &views[0], nil
}

// aggregate 列表视图聚合：批量作品配缩略图和标签，固定三条查询.
func (ws *WorkService) aggregate(ctx context.Context, works []model.Work) ([]types.WorkView, error) {
	return ws.aggregateWith(ctx, works, false)
}

// aggregateFull 详情视图聚合：附完整图片列表.
func (ws *WorkService) aggregateFull(ctx context.Context, works []model.Work) ([]types.WorkView, error) {
	return ws.aggregateWith(ctx, works, true)
}

// aggregateWith 三条并发查询拿齐媒体、链接与标签目录，再在内存中装配视图.
// 媒体缺失的作品缩略图为空，链接指向缺失标签的条目被丢弃，聚合本身不报错.
func (ws *WorkService) aggregateWith(ctx context.Context, works []model.Work, fullMedia bool) ([]types.WorkView, error) {
	if len(works) == 0 {
		return []types.WorkView{}, nil
	}

	ids := make([]string, 0, len(works))
	for _, w := range works {
		ids = append(ids, w.ID)
	}

	var (
		media []model.Media
		links []model.WorkTag
		tags  []model.Tag
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ws.db.WithContext(gctx).
			Where("work_id IN ?", ids).
			Order("created_at, id").
			Find(&media).Error
	})

	g.Go(func() error {
		return ws.db.WithContext(gctx).
			Where("work_id IN ?", ids).
			Find(&links).Error
	})

	g.Go(func() error {
		var err error
		tags, err = ws.tagCatalog(gctx)

		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("aggregate works: %w", err)
	}

	mediaByWork := make(map[string][]model.Media, len(works))
	for _, m := range media {
		mediaByWork[m.WorkID] = append(mediaByWork[m.WorkID], m)
	}

	tagByID := make(map[string]model.Tag, len(tags))
	for _, t := range tags {
		tagByID[t.ID] = t
	}

	tagsByWork := make(map[string][]types.TagView, len(works))
	for _, l := range links {
		t, ok := tagByID[l.TagID]
		if !ok {
			continue
		}

		tagsByWork[l.WorkID] = append(tagsByWork[l.WorkID], types.TagView{ID: t.ID, Name: t.Name})
	}

	views := make([]types.WorkView, len(works))

	var wg sync.WaitGroup

	for i, w := range works {
		view := types.WorkView{
			ID:          w.ID,
			AuthorID:    w.AuthorID,
			Title:       w.Title,
			Description: w.Description,
			Status:      w.Status,
			Views:       w.Views,
			Likes:       w.Likes,
			CreatedAt:   w.CreatedAt,
			UpdatedAt:   w.UpdatedAt,
			PublishedAt: w.PublishedAt,
			Tags:        []types.TagView{},
		}
		if tv, ok := tagsByWork[w.ID]; ok {
			view.Tags = tv
		}

		views[i] = view

		rows := mediaByWork[w.ID]
		if len(rows) == 0 {
			continue
		}

		if fullMedia {
			views[i].Media = make([]types.MediaView, len(rows))

			for j, row := range rows {
				wg.Add(1)

				go func(i, j int, row model.Media) {
					defer wg.Done()

					views[i].Media[j] = ws.mediaView(ctx, row)
				}(i, j, row)
			}

			continue
		}

		wg.Add(1)

		// 列表只签首图.
		go func(i int, row model.Media) {
			defer wg.Done()

			mv := ws.mediaView(ctx, row)
			views[i].Thumbnail = &mv
		}(i, rows[0])
	}

	wg.Wait()

	if fullMedia {
		for i := range views {
			if len(views[i].Media) > 0 {
				views[i].Thumbnail = &views[i].Media[0]
			}
		}

		// 详情页视为对象被签名访问，发热点统计事件.
		ws.publishObjectsAccessed(ctx, media)
	}

	return views, nil
}

// publishObjectsAccessed 尽力而为的对象访问事件，失败只记日志.
func (ws *WorkService) publishObjectsAccessed(ctx context.Context, media []model.Media) {
	if ws.mq == nil {
		return
	}

	for _, m := range media {
		msg, err := queue.NewWatermillMessage(queue.TopicObjectAccessed, queue.ObjectAccessedPayload{
			Object: queue.ObjectRef{
				Bucket:      ws.mediaBucket,
				ObjectKey:   m.FileRef,
				ContentType: m.MimeType,
			},
		})
		if err == nil {
			err = ws.mq.Publish(ctx, queue.TopicObjectAccessed, msg)
		}

		if err != nil {
			nlog.Logger().Warn().Err(err).Str("media_id", m.ID).Msg("publish object accessed event failed")
		}
	}
}

// mediaView 单条媒体行转视图，URL 尽力签名.
func (ws *WorkService) mediaView(ctx context.Context, m model.Media) types.MediaView {
	return types.MediaView{
		ID:        m.ID,
		URL:       signedRef(ctx, ws.blobs, ws.mediaBucket, m.FileRef, ws.signTTL),
		MimeType:  m.MimeType,
		SizeMB:    m.SizeMB,
		AltText:   m.AltText,
		CreatedAt: m.CreatedAt,
	}
}

// tagCatalog 整表标签目录，短 TTL 缓存（目录小、读多写少）.
func (ws *WorkService) tagCatalog(ctx context.Context) ([]model.Tag, error) {
	fetch := func() ([]model.Tag, error) {
		var tags []model.Tag
		if err := ws.db.WithContext(ctx).Find(&tags).Error; err != nil {
			return nil, err
		}

		return tags, nil
	}

	if ws.caches == nil {
		return fetch()
	}

	return cache.GetOrSet(ctx, ws.caches, tagCatalogCacheKey, fetch, tagCatalogCacheTTL)
}
