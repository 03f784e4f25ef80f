package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/atichat/workfolio/pkg/internal/model"
	"github.com/atichat/workfolio/pkg/internal/types"
)

const pngDataURL = "data:image/png;base64,cG5nLWJ5dGVz" // "png-bytes"

func TestCreateWorkDefaultsToDraft(t *testing.T) {
	ws := newTestWorkService(t, newFakeBlob())

	resp, err := ws.CreateWork(context.Background(), "auth0|u1", &types.CreateWorkRequest{Title: "Poster"})
	if err != nil {
		t.Fatalf("CreateWork: %v", err)
	}

	if resp.Status != model.WorkStatusDraft {
		t.Errorf("Status = %q, want draft", resp.Status)
	}

	if resp.PublishedAt != nil {
		t.Errorf("PublishedAt = %v, want nil for draft", resp.PublishedAt)
	}

	if len(resp.ID) != 26 {
		t.Errorf("ID length = %d, want 26-char ulid", len(resp.ID))
	}
}

func TestCreateWorkPublishedSetsPublishedAt(t *testing.T) {
	ws := newTestWorkService(t, newFakeBlob())

	resp, err := ws.CreateWork(context.Background(), "auth0|u1", &types.CreateWorkRequest{
		Title:  "Poster",
		Status: model.WorkStatusPublished,
	})
	if err != nil {
		t.Fatalf("CreateWork: %v", err)
	}

	if resp.PublishedAt == nil {
		t.Fatal("PublishedAt = nil, want set for published work")
	}
}

func TestCreateWorkStoresImages(t *testing.T) {
	fb := newFakeBlob()
	ws := newTestWorkService(t, fb)

	resp, err := ws.CreateWork(context.Background(), "auth0|u1", &types.CreateWorkRequest{
		Title: "Poster",
		Images: []types.WorkImageItem{
			{DataURL: pngDataURL, AltText: "first"},
			{DataURL: pngDataURL, AltText: "second"},
		},
	})
	if err != nil {
		t.Fatalf("CreateWork: %v", err)
	}

	if len(fb.uploads) != 2 {
		t.Fatalf("got %d uploads, want 2", len(fb.uploads))
	}

	for key := range fb.uploads {
		if !strings.HasPrefix(key, "media/"+resp.ID+"/") || !strings.HasSuffix(key, ".png") {
			t.Errorf("object key = %q, want media/<work>/<ts>-<i>.png", key)
		}
	}

	var media []model.Media
	if err := ws.db.Where("work_id = ?", resp.ID).Find(&media).Error; err != nil {
		t.Fatalf("query media: %v", err)
	}

	if len(media) != 2 {
		t.Fatalf("got %d media rows, want 2", len(media))
	}

	for _, m := range media {
		if m.MimeType != "image/png" {
			t.Errorf("MimeType = %q, want image/png", m.MimeType)
		}

		if m.SizeMB != 1 {
			t.Errorf("SizeMB = %d, want 1 (ceil of a few bytes)", m.SizeMB)
		}

		if strings.Contains(m.FileRef, "://") {
			t.Errorf("FileRef = %q, want bare object key", m.FileRef)
		}
	}
}

// 图片失败终止剩余处理并报错，但已落库的行保留.
func TestCreateWorkImageFailureKeepsPriorRows(t *testing.T) {
	fb := newFakeBlob()
	fb.failUploadAfter = 1
	ws := newTestWorkService(t, fb)

	_, err := ws.CreateWork(context.Background(), "auth0|u1", &types.CreateWorkRequest{
		Title:   "Poster",
		NewTags: []string{"ml"},
		Images: []types.WorkImageItem{
			{DataURL: pngDataURL},
			{DataURL: pngDataURL},
			{DataURL: pngDataURL},
		},
	})
	if err == nil {
		t.Fatal("CreateWork = nil error, want image failure to surface")
	}

	var works []model.Work
	ws.db.Find(&works)
	if len(works) != 1 {
		t.Fatalf("got %d work rows, want work row to survive image failure", len(works))
	}

	var media []model.Media
	ws.db.Find(&media)
	if len(media) != 1 {
		t.Errorf("got %d media rows, want 1 (only the successful image)", len(media))
	}

	var links []model.WorkTag
	ws.db.Find(&links)
	if len(links) != 1 {
		t.Errorf("got %d tag links, want links to survive image failure", len(links))
	}
}

// 作品行写入失败是致命的：标签、链接、媒体行和上传一个都不产生.
func TestCreateWorkInsertFailureCreatesNothing(t *testing.T) {
	fb := newFakeBlob()
	ws := newTestWorkService(t, fb)

	if err := ws.db.Exec("DROP TABLE works").Error; err != nil {
		t.Fatalf("drop works: %v", err)
	}

	_, err := ws.CreateWork(context.Background(), "auth0|u1", &types.CreateWorkRequest{
		Title:   "Poster",
		NewTags: []string{"ml"},
		Images:  []types.WorkImageItem{{DataURL: pngDataURL}},
	})
	if err == nil {
		t.Fatal("CreateWork = nil error, want work insert failure to surface")
	}

	var tagCount int64
	ws.db.Model(&model.Tag{}).Count(&tagCount)
	if tagCount != 0 {
		t.Errorf("got %d tag rows, want none after work insert failure", tagCount)
	}

	var linkCount int64
	ws.db.Model(&model.WorkTag{}).Count(&linkCount)
	if linkCount != 0 {
		t.Errorf("got %d tag links, want none after work insert failure", linkCount)
	}

	var mediaCount int64
	ws.db.Model(&model.Media{}).Count(&mediaCount)
	if mediaCount != 0 {
		t.Errorf("got %d media rows, want none after work insert failure", mediaCount)
	}

	if len(fb.uploads) != 0 {
		t.Errorf("got %d uploads, want none after work insert failure", len(fb.uploads))
	}
}

func TestCreateWorkInvalidDataURLFails(t *testing.T) {
	ws := newTestWorkService(t, newFakeBlob())

	_, err := ws.CreateWork(context.Background(), "auth0|u1", &types.CreateWorkRequest{
		Title:  "Poster",
		Images: []types.WorkImageItem{{DataURL: "not a data url"}},
	})
	if err == nil {
		t.Fatal("CreateWork = nil error, want failure on malformed data url")
	}
}

func TestResolveTagsNormalizesNames(t *testing.T) {
	ws := newTestWorkService(t, newFakeBlob())

	ids, err := ws.resolveTags(context.Background(), nil, []string{" ML ", "ml", "", "  "})
	if err != nil {
		t.Fatalf("resolveTags: %v", err)
	}

	if len(ids) != 1 {
		t.Fatalf("got %d tag ids, want 1 after trim/case dedup", len(ids))
	}

	var tags []model.Tag
	ws.db.Find(&tags)
	if len(tags) != 1 {
		t.Fatalf("got %d tag rows, want 1", len(tags))
	}

	if tags[0].Name != "ML" {
		t.Errorf("tag name = %q, want first-seen trimmed form", tags[0].Name)
	}
}

func TestResolveTagsReusesExistingByName(t *testing.T) {
	ws := newTestWorkService(t, newFakeBlob())

	seeded := model.Tag{ID: uuid.NewString(), Name: "go"}
	if err := ws.db.Create(&seeded).Error; err != nil {
		t.Fatalf("seed tag: %v", err)
	}

	ids, err := ws.resolveTags(context.Background(), []string{seeded.ID}, []string{"Go"})
	if err != nil {
		t.Fatalf("resolveTags: %v", err)
	}

	if len(ids) != 1 || ids[0] != seeded.ID {
		t.Fatalf("ids = %v, want only the existing tag id", ids)
	}

	var count int64
	ws.db.Model(&model.Tag{}).Count(&count)
	if count != 1 {
		t.Errorf("got %d tag rows, want no new row for an existing name", count)
	}
}

func TestAggregateThumbnailIsFirstMedia(t *testing.T) {
	ws := newTestWorkService(t, newFakeBlob())
	ctx := context.Background()

	work := model.Work{ID: newWorkID(time.Now()), AuthorID: "auth0|u1", Title: "Poster", Status: model.WorkStatusDraft}
	if err := ws.db.Create(&work).Error; err != nil {
		t.Fatalf("seed work: %v", err)
	}

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	first := model.Media{ID: uuid.NewString(), WorkID: work.ID, FileRef: work.ID + "/a.png", CreatedAt: base}
	second := model.Media{ID: uuid.NewString(), WorkID: work.ID, FileRef: work.ID + "/b.png", CreatedAt: base.Add(time.Minute)}

	if err := ws.db.Create(&[]model.Media{second, first}).Error; err != nil {
		t.Fatalf("seed media: %v", err)
	}

	views, err := ws.aggregate(ctx, []model.Work{work})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	if views[0].Thumbnail == nil {
		t.Fatal("Thumbnail = nil, want earliest media")
	}

	if views[0].Thumbnail.ID != first.ID {
		t.Errorf("Thumbnail.ID = %s, want the earliest media row", views[0].Thumbnail.ID)
	}

	if len(views[0].Media) != 0 {
		t.Errorf("list view carries %d media, want thumbnail only", len(views[0].Media))
	}
}

func TestAggregateWithoutMediaOrTags(t *testing.T) {
	ws := newTestWorkService(t, newFakeBlob())

	work := model.Work{ID: newWorkID(time.Now()), AuthorID: "auth0|u1", Title: "Bare", Status: model.WorkStatusDraft}
	if err := ws.db.Create(&work).Error; err != nil {
		t.Fatalf("seed work: %v", err)
	}

	views, err := ws.aggregate(context.Background(), []model.Work{work})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	if views[0].Thumbnail != nil {
		t.Errorf("Thumbnail = %v, want nil without media", views[0].Thumbnail)
	}

	if views[0].Tags == nil || len(views[0].Tags) != 0 {
		t.Errorf("Tags = %v, want empty non-nil slice", views[0].Tags)
	}
}

// 链接指向已消失标签的条目被静默丢弃.
func TestAggregateDropsDanglingTagLinks(t *testing.T) {
	ws := newTestWorkService(t, newFakeBlob())

	work := model.Work{ID: newWorkID(time.Now()), AuthorID: "auth0|u1", Title: "Poster", Status: model.WorkStatusDraft}
	if err := ws.db.Create(&work).Error; err != nil {
		t.Fatalf("seed work: %v", err)
	}

	tag := model.Tag{ID: uuid.NewString(), Name: "ml"}
	if err := ws.db.Create(&tag).Error; err != nil {
		t.Fatalf("seed tag: %v", err)
	}

	links := []model.WorkTag{
		{WorkID: work.ID, TagID: tag.ID},
		{WorkID: work.ID, TagID: uuid.NewString()}, // 悬空链接
	}
	if err := ws.db.Create(&links).Error; err != nil {
		t.Fatalf("seed links: %v", err)
	}

	views, err := ws.aggregate(context.Background(), []model.Work{work})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	if len(views[0].Tags) != 1 || views[0].Tags[0].Name != "ml" {
		t.Errorf("Tags = %v, want only the surviving tag", views[0].Tags)
	}
}

func TestGetWorkSignsFullMediaList(t *testing.T) {
	ws := newTestWorkService(t, newFakeBlob())

	work := model.Work{ID: newWorkID(time.Now()), AuthorID: "auth0|u1", Title: "Poster", Status: model.WorkStatusPublished}
	if err := ws.db.Create(&work).Error; err != nil {
		t.Fatalf("seed work: %v", err)
	}

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	media := []model.Media{
		{ID: uuid.NewString(), WorkID: work.ID, FileRef: work.ID + "/a.png", CreatedAt: base},
		{ID: uuid.NewString(), WorkID: work.ID, FileRef: work.ID + "/b.png", CreatedAt: base.Add(time.Minute)},
	}
	if err := ws.db.Create(&media).Error; err != nil {
		t.Fatalf("seed media: %v", err)
	}

	view, err := ws.GetWork(context.Background(), work.ID)
	if err != nil {
		t.Fatalf("GetWork: %v", err)
	}

	if len(view.Media) != 2 {
		t.Fatalf("got %d media, want 2", len(view.Media))
	}

	for _, m := range view.Media {
		if !strings.HasPrefix(m.URL, "https://signed.test/media/") {
			t.Errorf("URL = %q, want signed url", m.URL)
		}
	}

	if view.Thumbnail == nil || view.Thumbnail.ID != media[0].ID {
		t.Error("Thumbnail must be the first media row")
	}
}

func TestAggregateSignFailureFallsBackToRawRef(t *testing.T) {
	fb := newFakeBlob()
	fb.failSign = true
	ws := newTestWorkService(t, fb)

	work := model.Work{ID: newWorkID(time.Now()), AuthorID: "auth0|u1", Title: "Poster", Status: model.WorkStatusDraft}
	if err := ws.db.Create(&work).Error; err != nil {
		t.Fatalf("seed work: %v", err)
	}

	ref := work.ID + "/a.png"
	if err := ws.db.Create(&model.Media{ID: uuid.NewString(), WorkID: work.ID, FileRef: ref}).Error; err != nil {
		t.Fatalf("seed media: %v", err)
	}

	views, err := ws.aggregate(context.Background(), []model.Work{work})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	if views[0].Thumbnail == nil || views[0].Thumbnail.URL != ref {
		t.Errorf("Thumbnail.URL = %v, want raw reference when signing fails", views[0].Thumbnail)
	}
}

func TestListPublishedOrdersByPublishedAt(t *testing.T) {
	ws := newTestWorkService(t, newFakeBlob())
	ctx := context.Background()

	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)

	seed := []model.Work{
		{ID: newWorkID(older), AuthorID: "a", Title: "old", Status: model.WorkStatusPublished, PublishedAt: &older},
		{ID: newWorkID(newer), AuthorID: "a", Title: "new", Status: model.WorkStatusPublished, PublishedAt: &newer},
		{ID: newWorkID(newer), AuthorID: "a", Title: "hidden", Status: model.WorkStatusDraft},
	}
	if err := ws.db.Create(&seed).Error; err != nil {
		t.Fatalf("seed works: %v", err)
	}

	resp, err := ws.ListPublished(ctx)
	if err != nil {
		t.Fatalf("ListPublished: %v", err)
	}

	if resp.Total != 2 {
		t.Fatalf("Total = %d, want drafts excluded", resp.Total)
	}

	if resp.Works[0].Title != "new" || resp.Works[1].Title != "old" {
		t.Errorf("order = [%s, %s], want newest published first", resp.Works[0].Title, resp.Works[1].Title)
	}
}

func TestListMineIncludesDrafts(t *testing.T) {
	ws := newTestWorkService(t, newFakeBlob())

	seed := []model.Work{
		{ID: newWorkID(time.Now()), AuthorID: "auth0|me", Title: "mine-draft", Status: model.WorkStatusDraft},
		{ID: newWorkID(time.Now()), AuthorID: "auth0|me", Title: "mine-pub", Status: model.WorkStatusPublished},
		{ID: newWorkID(time.Now()), AuthorID: "auth0|other", Title: "theirs", Status: model.WorkStatusPublished},
	}
	if err := ws.db.Create(&seed).Error; err != nil {
		t.Fatalf("seed works: %v", err)
	}

	resp, err := ws.ListMine(context.Background(), "auth0|me")
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}

	if resp.Total != 2 {
		t.Errorf("Total = %d, want own works only (drafts included)", resp.Total)
	}
}

func TestSearchTags(t *testing.T) {
	ws := newTestWorkService(t, newFakeBlob())

	seed := []model.Tag{
		{ID: uuid.NewString(), Name: "poster"},
		{ID: uuid.NewString(), Name: "ML"},
		{ID: uuid.NewString(), Name: "html"},
	}
	if err := ws.db.Create(&seed).Error; err != nil {
		t.Fatalf("seed tags: %v", err)
	}

	resp, err := ws.SearchTags(context.Background(), "ml")
	if err != nil {
		t.Fatalf("SearchTags: %v", err)
	}

	if len(resp.Tags) != 2 {
		t.Fatalf("got %d tags, want case-insensitive contains match", len(resp.Tags))
	}

	if resp.Tags[0].Name != "ML" || resp.Tags[1].Name != "html" {
		t.Errorf("order = %v, want name ascending", resp.Tags)
	}

	all, err := ws.SearchTags(context.Background(), "")
	if err != nil {
		t.Fatalf("SearchTags all: %v", err)
	}

	if len(all.Tags) != 3 {
		t.Errorf("got %d tags without filter, want all", len(all.Tags))
	}
}
