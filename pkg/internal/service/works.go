package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/atichat/workfolio/pkg/cache"
	"github.com/atichat/workfolio/pkg/configs"
	ctxPkg "github.com/atichat/workfolio/pkg/context"
	"github.com/atichat/workfolio/pkg/internal/model"
	mqc "github.com/atichat/workfolio/pkg/internal/storage/mq"
	"github.com/atichat/workfolio/pkg/internal/types"
	nlog "github.com/atichat/workfolio/pkg/log"
	"github.com/atichat/workfolio/pkg/metrics"
	"github.com/atichat/workfolio/pkg/queue"
)

// WorkService 作品服务：创建管线与读侧聚合.
type WorkService struct {
	db     *gorm.DB
	blobs  BlobStore
	mq     *mqc.Client
	caches *cache.Cache

	mediaBucket string
	signTTL     time.Duration
}

// NewWorkService 创建作品服务.
func NewWorkService(ctx context.Context) *WorkService {
	s3cfg := configs.GetConfig().S3

	ws := &WorkService{
		db:          ctxPkg.GetDBClient(ctx).GetDB(),
		blobs:       newS3Blob(ctxPkg.GetS3Client(ctx)),
		mq:          ctxPkg.GetMQClient(ctx),
		mediaBucket: s3cfg.MediaBucket,
		signTTL:     time.Duration(s3cfg.SignTTLSeconds) * time.Second,
	}

	if kvClient := ctxPkg.GetKVClient(ctx); kvClient != nil {
		ws.caches = cache.NewCache(kvClient)
	}

	return ws
}

// CreateWork 作品创建管线：作品行、标签、链接、图片，按序执行.
// 作品行失败整个请求失败；图片失败终止剩余图片并报错，已写入的行保留，
// 作品以残缺图集存在，可在后台补救.
func (ws *WorkService) CreateWork(ctx context.Context, authorID string, req *types.CreateWorkRequest) (*types.CreateWorkResponse, error) {
	logger := ctxPkg.WithTraceContext(ctx, *nlog.Logger()).With().Str("author_id", authorID).Logger()

	now := time.Now().UTC()

	status := req.Status
	if status == "" {
		status = model.WorkStatusDraft
	}

	work := model.Work{
		ID:          newWorkID(now),
		AuthorID:    authorID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
	}
	if status == model.WorkStatusPublished {
		work.PublishedAt = &now
	}

	if err := ws.db.WithContext(ctx).Create(&work).Error; err != nil {
		return nil, fmt.Errorf("create work: %w", err)
	}

	tagIDs, err := ws.resolveTags(ctx, req.TagIDs, req.NewTags)
	if err != nil {
		return nil, fmt.Errorf("resolve tags: %w", err)
	}

	if len(tagIDs) > 0 {
		links := make([]model.WorkTag, 0, len(tagIDs))
		for _, id := range tagIDs {
			links = append(links, model.WorkTag{WorkID: work.ID, TagID: id})
		}

		if err := ws.db.WithContext(ctx).Create(&links).Error; err != nil {
			return nil, fmt.Errorf("link tags: %w", err)
		}
	}

	for i, img := range req.Images {
		if err := ws.storeImage(ctx, work.ID, i, img, now); err != nil {
			logger.Error().Err(err).Int("position", i).Str("work_id", work.ID).Msg("store work image failed")

			ws.publishMediaFailed(ctx, work.ID, i, err, logger)

			return nil, fmt.Errorf("store image %d: %w", i, err)
		}
	}

	metrics.WorksCreated.WithLabelValues(status).Inc()

	if ws.mq != nil {
		if err := queue.PublishWorkCreated(mqPublisher{ctx: ctx, cli: ws.mq}, queue.WorkCreatedPayload{
			WorkID:     work.ID,
			UserID:     authorID,
			Title:      work.Title,
			Visibility: status,
			Tags:       tagIDs,
			MediaCount: len(req.Images),
		}); err != nil {
			logger.Warn().Err(err).Msg("publish work created event failed")
		}
	}

	return &types.CreateWorkResponse{
		ID:          work.ID,
		AuthorID:    work.AuthorID,
		Title:       work.Title,
		Description: work.Description,
		Status:      work.Status,
		CreatedAt:   work.CreatedAt,
		PublishedAt: work.PublishedAt,
	}, nil
}

// storeImage 单张图片：解码、上传对象存储、登记媒体行.
func (ws *WorkService) storeImage(ctx context.Context, workID string, ordinal int, img types.WorkImageItem, at time.Time) error {
	data, mime, err := parseDataURL(img.DataURL)
	if err != nil {
		return err
	}

	key := mediaObjectKey(workID, at, ordinal, extFromMime(mime))

	if err := ws.blobs.Upload(ctx, ws.mediaBucket, key, data, mime); err != nil {
		return fmt.Errorf("upload object: %w", err)
	}

	media := model.Media{
		ID:       uuid.NewString(),
		WorkID:   workID,
		FileRef:  key,
		MimeType: mime,
		SizeMB:   ceilMB(len(data)),
		AltText:  img.AltText,
	}

	if err := ws.db.WithContext(ctx).Create(&media).Error; err != nil {
		return fmt.Errorf("register media: %w", err)
	}

	if ws.mq != nil {
		err := queue.PublishMediaStored(mqPublisher{ctx: ctx, cli: ws.mq}, queue.MediaStoredPayload{
			MediaID: media.ID,
			WorkID:  workID,
			Object: queue.ObjectRef{
				Bucket:      ws.mediaBucket,
				ObjectKey:   key,
				Size:        int64(len(data)),
				ContentType: mime,
			},
			Position: ordinal,
		})
		if err != nil {
			nlog.Logger().Warn().Err(err).Str("work_id", workID).Msg("publish media stored event failed")
		}
	}

	return nil
}

func (ws *WorkService) publishMediaFailed(ctx context.Context, workID string, ordinal int, cause error, logger zerolog.Logger) {
	if ws.mq == nil {
		return
	}

	msg, err := queue.NewWatermillMessage(queue.TopicMediaStoreFailed, queue.MediaStoreFailedPayload{
		WorkID:   workID,
		Position: ordinal,
		Error:    cause.Error(),
	})
	if err == nil {
		err = ws.mq.Publish(ctx, queue.TopicMediaStoreFailed, msg)
	}

	if err != nil {
		logger.Warn().Err(err).Str("work_id", workID).Msg("publish media store failed event failed")
	}
}

// mqPublisher 把 mq.Client 适配成 watermill Publisher，供 queue 的发布助手使用.
type mqPublisher struct {
	ctx context.Context
	cli *mqc.Client
}

func (p mqPublisher) Publish(topic string, msgs ...*message.Message) error {
	return p.cli.Publish(p.ctx, topic, msgs...)
}

func (p mqPublisher) Close() error {
	return nil
}
