package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/atichat/workfolio/pkg/internal/model"
	"github.com/atichat/workfolio/pkg/internal/schema"
	"github.com/atichat/workfolio/pkg/internal/types"
	nlog "github.com/atichat/workfolio/pkg/log"
	"github.com/atichat/workfolio/pkg/queue"
)

// resolveTags 把已有标签 id 与新标签名合并为最终的 id 集合.
// 新标签名去空白、去空串、大小写不敏感去重；插入容忍唯一键冲突
// （并发请求同名先到先得），随后按名字集合回查权威 id，与已有 id 合并去重.
func (ws *WorkService) resolveTags(ctx context.Context, existingIDs, newNames []string) ([]string, error) {
	names := make([]string, 0, len(newNames))
	seen := make(map[string]struct{}, len(newNames))

	for _, raw := range newNames {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}

		lower := strings.ToLower(name)
		if _, ok := seen[lower]; ok {
			continue
		}

		seen[lower] = struct{}{}
		names = append(names, name)
	}

	resolved := make([]string, 0, len(existingIDs)+len(names))
	resolved = append(resolved, existingIDs...)

	if len(names) > 0 {
		lowered := make([]string, 0, len(names))
		for _, n := range names {
			lowered = append(lowered, strings.ToLower(n))
		}

		var existing []model.Tag
		if err := ws.db.WithContext(ctx).
			Where("LOWER(name) IN ?", lowered).
			Find(&existing).Error; err != nil {
			return nil, fmt.Errorf("query tags: %w", err)
		}

		present := make(map[string]struct{}, len(existing))
		for _, t := range existing {
			present[strings.ToLower(t.Name)] = struct{}{}
		}

		for _, name := range names {
			if _, ok := present[strings.ToLower(name)]; ok {
				continue
			}

			tag := model.Tag{ID: uuid.NewString(), Name: name}

			err := ws.db.WithContext(ctx).Create(&tag).Error
			switch {
			case err == nil:
				if ws.mq != nil {
					if perr := queue.PublishTagCreated(mqPublisher{ctx: ctx, cli: ws.mq}, queue.TagCreatedPayload{
						TagID: tag.ID,
						Name:  tag.Name,
					}); perr != nil {
						nlog.Logger().Warn().Err(perr).Str("tag", tag.Name).Msg("publish tag created event failed")
					}
				}
			case schema.IsDuplicateKey(err):
				// 并发请求抢先创建了同名标签，回查时拿到它的 id.
			default:
				return nil, fmt.Errorf("insert tag %q: %w", name, err)
			}
		}

		var authoritative []model.Tag
		if err := ws.db.WithContext(ctx).
			Where("LOWER(name) IN ?", lowered).
			Find(&authoritative).Error; err != nil {
			return nil, fmt.Errorf("requery tags: %w", err)
		}

		for _, t := range authoritative {
			resolved = append(resolved, t.ID)
		}
	}

	out := make([]string, 0, len(resolved))
	dedup := make(map[string]struct{}, len(resolved))

	for _, id := range resolved {
		if id == "" {
			continue
		}

		if _, ok := dedup[id]; ok {
			continue
		}

		dedup[id] = struct{}{}
		out = append(out, id)
	}

	return out, nil
}

// SearchTags 标签搜索：可选大小写不敏感包含过滤，按名字升序.
func (ws *WorkService) SearchTags(ctx context.Context, q string) (*types.SearchTagsResponse, error) {
	var tags []model.Tag

	tx := ws.db.WithContext(ctx).Order("name")
	if q = strings.TrimSpace(q); q != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	if err := tx.Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("search tags: %w", err)
	}

	resp := &types.SearchTagsResponse{Tags: make([]types.TagView, 0, len(tags))}
	for _, t := range tags {
		resp.Tags = append(resp.Tags, types.TagView{ID: t.ID, Name: t.Name})
	}

	return resp, nil
}
